package handlers

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

type ConfigurationService interface {
	Create(ctx context.Context, req models.CreateConfigurationRequest) (map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, error)
	ListByProject(ctx context.Context, projectID string) ([]map[string]any, error)
	Update(ctx context.Context, id string, req models.UpdateConfigurationRequest) (map[string]any, error)
	Delete(ctx context.Context, id string) error
	GetShared(ctx context.Context, token string) (map[string]any, error)
	AddDetail(ctx context.Context, req models.CreateConfigurationDetailRequest) (*models.ConfigurationDetail, error)
	ListDetails(ctx context.Context, configurationID string) ([]models.ConfigurationDetail, error)
	UpdateDetail(ctx context.Context, id string, req models.UpdateConfigurationDetailRequest) (*models.ConfigurationDetail, error)
	DeleteDetail(ctx context.Context, id string) error
}

type ConfigurationHandler struct {
	service ConfigurationService
	logger  ectologger.Logger
}

func NewConfigurationHandler(service ConfigurationService, logger ectologger.Logger) *ConfigurationHandler {
	return &ConfigurationHandler{service: service, logger: logger}
}

// Create handles POST /api/configurations
func (h *ConfigurationHandler) Create(c echo.Context) error {
	req, err := utils.BindRequest[models.CreateConfigurationRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return Created(c, result)
}

// List handles GET /api/configurations?project_id=...
func (h *ConfigurationHandler) List(c echo.Context) error {
	projectID := c.QueryParam("project_id")
	if projectID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "project_id query parameter is required")
	}

	results, err := h.service.ListByProject(c.Request().Context(), projectID)
	if err != nil {
		return err
	}
	return OK(c, results)
}

// ListForProject handles GET /api/projects/:id/configurations
func (h *ConfigurationHandler) ListForProject(c echo.Context) error {
	projectID, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	results, err := h.service.ListByProject(c.Request().Context(), projectID)
	if err != nil {
		return err
	}
	return OK(c, results)
}

// Get handles GET /api/configurations/:id
func (h *ConfigurationHandler) Get(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	result, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return OK(c, result)
}

// Update handles PUT /api/configurations/:id
func (h *ConfigurationHandler) Update(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateConfigurationRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return OK(c, result)
}

// Delete handles DELETE /api/configurations/:id
func (h *ConfigurationHandler) Delete(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return OKMessage(c, "configuration deleted")
}

// GetShared handles GET /api/shared/:token, the unauthenticated share-link
// fetch.
func (h *ConfigurationHandler) GetShared(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "missing token")
	}

	result, err := h.service.GetShared(c.Request().Context(), token)
	if err != nil {
		return err
	}
	return OK(c, result)
}

// AddDetail handles POST /api/configuration-details
func (h *ConfigurationHandler) AddDetail(c echo.Context) error {
	req, err := utils.BindRequest[models.CreateConfigurationDetailRequest](c)
	if err != nil {
		return err
	}

	detail, err := h.service.AddDetail(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return Created(c, detail)
}

// ListDetails handles GET /api/configurations/:id/details
func (h *ConfigurationHandler) ListDetails(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	details, err := h.service.ListDetails(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return OK(c, details)
}

// UpdateDetail handles PUT /api/configuration-details/:id
func (h *ConfigurationHandler) UpdateDetail(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateConfigurationDetailRequest](c)
	if err != nil {
		return err
	}

	detail, err := h.service.UpdateDetail(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return OK(c, detail)
}

// DeleteDetail handles DELETE /api/configuration-details/:id
func (h *ConfigurationHandler) DeleteDetail(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteDetail(c.Request().Context(), id); err != nil {
		return err
	}
	return OKMessage(c, "configuration detail deleted")
}
