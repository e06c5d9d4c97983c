package models

import "time"

const (
	SharingPrivate = "private"
	SharingPublic  = "public"
	SharingShared  = "shared"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentStaging     = "staging"
	EnvironmentProduction  = "production"
)

type Configuration struct {
	ID          string    `db:"id" json:"id"`
	ProjectID   string    `db:"project_id" json:"project_id"`
	Name        string    `db:"name" json:"name"`
	FileType    string    `db:"file_type" json:"file_type"`
	FilePath    string    `db:"file_path" json:"file_path"`
	Content     *string   `db:"content" json:"content,omitempty"`
	SharingType string    `db:"sharing_type" json:"sharing_type"`
	ShareToken  *string   `db:"share_token" json:"share_token,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type ConfigurationDetail struct {
	ID              string    `db:"id" json:"id"`
	ConfigurationID string    `db:"configuration_id" json:"configuration_id"`
	Environment     string    `db:"environment" json:"environment"`
	Env             string    `db:"env" json:"env"`
	Code            string    `db:"code" json:"code"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateConfigurationRequest struct {
	ProjectID   string                           `json:"project_id" validate:"required"`
	Name        string                           `json:"name" validate:"required,max=128"`
	FileType    string                           `json:"file_type" validate:"omitempty,oneof=json yaml env properties toml"`
	FilePath    string                           `json:"file_path" validate:"required"`
	Content     *string                          `json:"content"`
	SharingType string                           `json:"sharing_type" validate:"omitempty,oneof=private public shared"`
	Detail      CreateConfigurationDetailPayload `json:"configuration_details" validate:"required"`
}

// CreateConfigurationDetailPayload is the detail block embedded in a
// composite configuration create; the configuration id is assigned by the
// service inside the transaction.
type CreateConfigurationDetailPayload struct {
	Environment string `json:"environment" validate:"required,oneof=development staging production"`
	Env         string `json:"env"`
	Code        string `json:"code"`
}

type UpdateConfigurationRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=128"`
	FileType    *string `json:"file_type" validate:"omitempty,oneof=json yaml env properties toml"`
	FilePath    *string `json:"file_path"`
	Content     *string `json:"content"`
	SharingType *string `json:"sharing_type" validate:"omitempty,oneof=private public shared"`
	IsActive    *bool   `json:"is_active"`
}

type CreateConfigurationDetailRequest struct {
	ConfigurationID string `json:"configuration_id" validate:"required"`
	Environment     string `json:"environment" validate:"required,oneof=development staging production"`
	Env             string `json:"env"`
	Code            string `json:"code"`
}

type UpdateConfigurationDetailRequest struct {
	Environment *string `json:"environment" validate:"omitempty,oneof=development staging production"`
	Env         *string `json:"env"`
	Code        *string `json:"code"`
}
