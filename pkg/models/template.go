package models

import "time"

// Template is a reusable configuration file starting point.
type Template struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	FileType    string    `db:"file_type" json:"file_type"`
	Content     string    `db:"content" json:"content"`
	IsPublic    bool      `db:"is_public" json:"is_public"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	UsageCount  int       `db:"usage_count" json:"usage_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type CreateTemplateRequest struct {
	Name        string  `json:"name" validate:"required,max=128"`
	Description *string `json:"description"`
	FileType    string  `json:"file_type" validate:"required,oneof=json yaml env properties toml"`
	Content     string  `json:"content" validate:"required"`
	IsPublic    bool    `json:"is_public"`
}

type UpdateTemplateRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	Description *string `json:"description"`
	FileType    *string `json:"file_type" validate:"omitempty,oneof=json yaml env properties toml"`
	Content     *string `json:"content"`
	IsPublic    *bool   `json:"is_public"`
}
