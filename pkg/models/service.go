package models

import "time"

const (
	ServiceStatusUnknown     = "unknown"
	ServiceStatusRunning     = "running"
	ServiceStatusStopped     = "stopped"
	ServiceStatusError       = "error"
	ServiceStatusMaintenance = "maintenance"
)

// Service is an infrastructure endpoint registered under a project.
type Service struct {
	ID              string     `db:"id" json:"id"`
	ProjectID       string     `db:"project_id" json:"project_id"`
	Name            string     `db:"name" json:"name"`
	Description     *string    `db:"description" json:"description,omitempty"`
	InternalIP      *string    `db:"internal_ip" json:"internal_ip,omitempty"`
	ExternalIP      *string    `db:"external_ip" json:"external_ip,omitempty"`
	Domain          *string    `db:"domain" json:"domain,omitempty"`
	Ports           *string    `db:"ports" json:"ports,omitempty"`
	Status          string     `db:"status" json:"status"`
	HealthCheckURL  *string    `db:"health_check_url" json:"health_check_url,omitempty"`
	LastHealthCheck *time.Time `db:"last_health_check" json:"last_health_check,omitempty"`
	Environment     string     `db:"environment" json:"environment"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateServiceRequest struct {
	ProjectID      string  `json:"project_id" validate:"required"`
	Name           string  `json:"name" validate:"required,max=128"`
	Description    *string `json:"description"`
	InternalIP     *string `json:"internal_ip" validate:"omitempty,ip"`
	ExternalIP     *string `json:"external_ip" validate:"omitempty,ip"`
	Domain         *string `json:"domain" validate:"omitempty,fqdn"`
	Ports          *string `json:"ports"`
	Status         string  `json:"status" validate:"omitempty,oneof=unknown running stopped error maintenance"`
	HealthCheckURL *string `json:"health_check_url" validate:"omitempty,url"`
	Environment    string  `json:"environment" validate:"omitempty,oneof=development staging production"`
}

type UpdateServiceRequest struct {
	Name           *string `json:"name" validate:"omitempty,max=128"`
	Description    *string `json:"description"`
	InternalIP     *string `json:"internal_ip" validate:"omitempty,ip"`
	ExternalIP     *string `json:"external_ip" validate:"omitempty,ip"`
	Domain         *string `json:"domain" validate:"omitempty,fqdn"`
	Ports          *string `json:"ports"`
	Status         *string `json:"status" validate:"omitempty,oneof=unknown running stopped error maintenance"`
	HealthCheckURL *string `json:"health_check_url" validate:"omitempty,url"`
	Environment    *string `json:"environment" validate:"omitempty,oneof=development staging production"`
}
