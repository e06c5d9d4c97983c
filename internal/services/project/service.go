// Package project implements project management.
package project

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/tracing"
)

type ProjectRepository interface {
	Create(ctx context.Context, item database.Fields) (*models.Project, error)
	FindByID(ctx context.Context, id string) (*models.Project, error)
	FindAll(ctx context.Context, limit, offset int) ([]models.Project, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, id string, item database.Fields) (*models.Project, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Service struct {
	logger   ectologger.Logger
	projects ProjectRepository
}

func NewService(logger ectologger.Logger, projects ProjectRepository) *Service {
	return &Service{logger: logger, projects: projects}
}

// Create stores a new project for the given owner.
func (s *Service) Create(ctx context.Context, userID string, req models.CreateProjectRequest) (*models.Project, error) {
	ctx, span := tracing.StartSpan(ctx, "project.Create")
	defer span.End()

	if userID == "" {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	fields := database.Fields{
		"user_id":   userID,
		"name":      req.Name,
		"is_active": true,
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	created, err := s.projects.Create(ctx, fields)
	if err != nil {
		if database.IsConstraintViolation(err) {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "user does not exist")
		}
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"project_id": created.ID,
		"user_id":    userID,
	}).Info("created project")
	return created, nil
}

// Get returns one project by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if project == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "project %s not found", id)
	}
	return project, nil
}

// List returns projects, optionally scoped to one owner.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]models.Project, error) {
	var (
		projects []models.Project
		err      error
	)
	if userID != "" {
		projects, err = s.projects.ListByUser(ctx, userID, limit, offset)
	} else {
		projects, err = s.projects.FindAll(ctx, limit, offset)
	}
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return projects, nil
}

// Update applies the supplied fields to the project.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	ctx, span := tracing.StartSpan(ctx, "project.Update")
	defer span.End()

	fields := database.Fields{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	existing, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "project %s not found", id)
	}

	updated, err := s.projects.Update(ctx, id, fields)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithField("project_id", id).Info("updated project")
	return updated, nil
}

// Delete removes the project and, through schema cascades, its
// configurations and services.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "project.Delete")
	defer span.End()

	deleted, err := s.projects.Delete(ctx, id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "project %s not found", id)
	}

	s.logger.WithContext(ctx).WithField("project_id", id).Info("deleted project")
	return nil
}
