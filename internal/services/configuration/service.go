// Package configuration implements configuration management: the composite
// create that writes a configuration together with its first environment
// detail, joined reads, detail CRUD, and share-token handling.
package configuration

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/tracing"
)

type ConfigurationRepository interface {
	Create(ctx context.Context, item database.Fields) (*models.Configuration, error)
	FindByID(ctx context.Context, id string) (*models.Configuration, error)
	Update(ctx context.Context, id string, item database.Fields) (*models.Configuration, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByProject(ctx context.Context, projectID string, limit, offset int) ([]models.Configuration, error)
	GetByShareToken(ctx context.Context, token string) (*models.Configuration, error)
	GetWithDetails(ctx context.Context, id string) (map[string]any, error)
	ListByProjectWithDetails(ctx context.Context, projectID string) ([]map[string]any, error)
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type DetailRepository interface {
	Create(ctx context.Context, item database.Fields) (*models.ConfigurationDetail, error)
	FindByID(ctx context.Context, id string) (*models.ConfigurationDetail, error)
	Update(ctx context.Context, id string, item database.Fields) (*models.ConfigurationDetail, error)
	Delete(ctx context.Context, id string) (bool, error)
	ListByConfiguration(ctx context.Context, configurationID string) ([]models.ConfigurationDetail, error)
	GetByEnvironment(ctx context.Context, configurationID, environment string) (*models.ConfigurationDetail, error)
}

type ProjectRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	logger   ectologger.Logger
	configs  ConfigurationRepository
	details  DetailRepository
	projects ProjectRepository
}

func NewService(logger ectologger.Logger, configs ConfigurationRepository, details DetailRepository, projects ProjectRepository) *Service {
	return &Service{
		logger:   logger,
		configs:  configs,
		details:  details,
		projects: projects,
	}
}

// Create writes the configuration and its first environment detail in one
// transaction; a failure on either write leaves nothing behind.
func (s *Service) Create(ctx context.Context, req models.CreateConfigurationRequest) (map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "configuration.Create")
	defer span.End()

	exists, err := s.projects.Exists(ctx, req.ProjectID)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !exists {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "project %s not found", req.ProjectID)
	}

	fields := database.Fields{
		"project_id": req.ProjectID,
		"name":       req.Name,
		"file_path":  req.FilePath,
		"is_active":  true,
	}
	if req.FileType != "" {
		fields["file_type"] = req.FileType
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	sharing := req.SharingType
	if sharing == "" {
		sharing = models.SharingPrivate
	}
	fields["sharing_type"] = sharing
	if sharing != models.SharingPrivate {
		fields["share_token"] = uuid.New().String()
	}

	var created *models.Configuration
	err = s.configs.WithTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.configs.Create(txCtx, fields)
		if txErr != nil {
			return txErr
		}

		_, txErr = s.details.Create(txCtx, database.Fields{
			"configuration_id": created.ID,
			"environment":      req.Detail.Environment,
			"env":              req.Detail.Env,
			"code":             req.Detail.Code,
		})
		return txErr
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("failed to create configuration")
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"configuration_id": created.ID,
		"project_id":       req.ProjectID,
	}).Info("created configuration")

	return s.getWithDetails(ctx, created.ID)
}

// Get returns one configuration with its environment details nested.
func (s *Service) Get(ctx context.Context, id string) (map[string]any, error) {
	return s.getWithDetails(ctx, id)
}

// ListByProject returns every configuration in the project with details
// nested.
func (s *Service) ListByProject(ctx context.Context, projectID string) ([]map[string]any, error) {
	results, err := s.configs.ListByProjectWithDetails(ctx, projectID)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return results, nil
}

// Update applies the supplied fields to the configuration. Switching the
// sharing type away from private mints a share token when the row has none;
// switching back to private clears it.
func (s *Service) Update(ctx context.Context, id string, req models.UpdateConfigurationRequest) (map[string]any, error) {
	ctx, span := tracing.StartSpan(ctx, "configuration.Update")
	defer span.End()

	existing, err := s.configs.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "configuration %s not found", id)
	}

	fields := database.Fields{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.FileType != nil {
		fields["file_type"] = *req.FileType
	}
	if req.FilePath != nil {
		fields["file_path"] = *req.FilePath
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if req.SharingType != nil {
		fields["sharing_type"] = *req.SharingType
		if *req.SharingType == models.SharingPrivate {
			fields["share_token"] = nil
		} else if existing.ShareToken == nil {
			fields["share_token"] = uuid.New().String()
		}
	}
	if len(fields) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	if _, err := s.configs.Update(ctx, id, fields); err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithField("configuration_id", id).Info("updated configuration")
	return s.getWithDetails(ctx, id)
}

// Delete removes the configuration; its detail rows go with it through the
// schema cascade.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "configuration.Delete")
	defer span.End()

	deleted, err := s.configs.Delete(ctx, id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "configuration %s not found", id)
	}

	s.logger.WithContext(ctx).WithField("configuration_id", id).Info("deleted configuration")
	return nil
}

// GetShared resolves a share token to its configuration. Private rows are
// never served this way even if a stale token still points at them.
func (s *Service) GetShared(ctx context.Context, token string) (map[string]any, error) {
	config, err := s.configs.GetByShareToken(ctx, token)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if config == nil || config.SharingType == models.SharingPrivate || !config.IsActive {
		return nil, httperror.NewHTTPError(http.StatusNotFound, "shared configuration not found")
	}
	return s.getWithDetails(ctx, config.ID)
}

// AddDetail creates an environment detail row for an existing
// configuration. One row per environment.
func (s *Service) AddDetail(ctx context.Context, req models.CreateConfigurationDetailRequest) (*models.ConfigurationDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "configuration.AddDetail")
	defer span.End()

	config, err := s.configs.FindByID(ctx, req.ConfigurationID)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if config == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "configuration %s not found", req.ConfigurationID)
	}

	existing, err := s.details.GetByEnvironment(ctx, req.ConfigurationID, req.Environment)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "environment %s already configured", req.Environment)
	}

	detail, err := s.details.Create(ctx, database.Fields{
		"configuration_id": req.ConfigurationID,
		"environment":      req.Environment,
		"env":              req.Env,
		"code":             req.Code,
	})
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"configuration_id": req.ConfigurationID,
		"environment":      req.Environment,
	}).Info("added configuration detail")
	return detail, nil
}

// ListDetails returns every environment detail of a configuration.
func (s *Service) ListDetails(ctx context.Context, configurationID string) ([]models.ConfigurationDetail, error) {
	details, err := s.details.ListByConfiguration(ctx, configurationID)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return details, nil
}

// UpdateDetail applies the supplied fields to one detail row.
func (s *Service) UpdateDetail(ctx context.Context, id string, req models.UpdateConfigurationDetailRequest) (*models.ConfigurationDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "configuration.UpdateDetail")
	defer span.End()

	existing, err := s.details.FindByID(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "configuration detail %s not found", id)
	}

	fields := database.Fields{}
	if req.Environment != nil {
		fields["environment"] = *req.Environment
	}
	if req.Env != nil {
		fields["env"] = *req.Env
	}
	if req.Code != nil {
		fields["code"] = *req.Code
	}
	if len(fields) == 0 {
		return nil, httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	updated, err := s.details.Update(ctx, id, fields)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	return updated, nil
}

// DeleteDetail removes one detail row.
func (s *Service) DeleteDetail(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "configuration.DeleteDetail")
	defer span.End()

	deleted, err := s.details.Delete(ctx, id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "configuration detail %s not found", id)
	}
	return nil
}

func (s *Service) getWithDetails(ctx context.Context, id string) (map[string]any, error) {
	result, err := s.configs.GetWithDetails(ctx, id)
	if err != nil {
		return nil, httperror.WrapError(http.StatusInternalServerError, err)
	}
	if result == nil {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "configuration %s not found", id)
	}
	return result, nil
}
