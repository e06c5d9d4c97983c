package handlers

import (
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/internal/repositories/service"
	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

// ServiceHandler manages the infrastructure service registry. The entity is
// thin enough that the handler talks to the repository directly.
type ServiceHandler struct {
	repo   *service.Repository
	logger ectologger.Logger
}

func NewServiceHandler(repo *service.Repository, logger ectologger.Logger) *ServiceHandler {
	return &ServiceHandler{repo: repo, logger: logger}
}

// Create handles POST /api/services
func (h *ServiceHandler) Create(c echo.Context) error {
	req, err := utils.BindRequest[models.CreateServiceRequest](c)
	if err != nil {
		return err
	}

	fields := database.Fields{
		"project_id": req.ProjectID,
		"name":       req.Name,
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.InternalIP != nil {
		fields["internal_ip"] = *req.InternalIP
	}
	if req.ExternalIP != nil {
		fields["external_ip"] = *req.ExternalIP
	}
	if req.Domain != nil {
		fields["domain"] = *req.Domain
	}
	if req.Ports != nil {
		fields["ports"] = *req.Ports
	}
	if req.HealthCheckURL != nil {
		fields["health_check_url"] = *req.HealthCheckURL
	}
	if req.Status != "" {
		fields["status"] = req.Status
	}
	if req.Environment != "" {
		fields["environment"] = req.Environment
	}

	created, err := h.repo.Create(c.Request().Context(), fields)
	if err != nil {
		if database.IsConstraintViolation(err) {
			return httperror.NewHTTPError(http.StatusBadRequest, "project does not exist")
		}
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return Created(c, created)
}

// List handles GET /api/services?project_id=...&environment=...
func (h *ServiceHandler) List(c echo.Context) error {
	projectID := c.QueryParam("project_id")
	if projectID == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "project_id query parameter is required")
	}

	if environment := c.QueryParam("environment"); environment != "" {
		services, err := h.repo.ListByEnvironment(c.Request().Context(), projectID, environment)
		if err != nil {
			return httperror.WrapError(http.StatusInternalServerError, err)
		}
		return OK(c, services)
	}

	limit, offset := ParsePagination(c)
	services, err := h.repo.ListByProject(c.Request().Context(), projectID, limit, offset)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return OK(c, services)
}

// Get handles GET /api/services/:id
func (h *ServiceHandler) Get(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	svc, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if svc == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "service %s not found", id)
	}
	return OK(c, svc)
}

// Update handles PUT /api/services/:id
func (h *ServiceHandler) Update(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateServiceRequest](c)
	if err != nil {
		return err
	}

	fields := database.Fields{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.InternalIP != nil {
		fields["internal_ip"] = *req.InternalIP
	}
	if req.ExternalIP != nil {
		fields["external_ip"] = *req.ExternalIP
	}
	if req.Domain != nil {
		fields["domain"] = *req.Domain
	}
	if req.Ports != nil {
		fields["ports"] = *req.Ports
	}
	if req.HealthCheckURL != nil {
		fields["health_check_url"] = *req.HealthCheckURL
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Environment != nil {
		fields["environment"] = *req.Environment
	}
	if len(fields) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	existing, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "service %s not found", id)
	}

	updated, err := h.repo.Update(c.Request().Context(), id, fields)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return OK(c, updated)
}

// RecordHealthCheck handles POST /api/services/:id/health
func (h *ServiceHandler) RecordHealthCheck(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status" validate:"required,oneof=unknown running stopped error maintenance"`
	}
	if err := c.Bind(&body); err != nil {
		return httperror.WrapError(http.StatusBadRequest, err)
	}
	if _, err := utils.Validate(body); err != nil {
		return httperror.WrapError(http.StatusBadRequest, err)
	}

	updated, err := h.repo.UpdateStatus(c.Request().Context(), id, body.Status, time.Now())
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return OK(c, updated)
}

// Delete handles DELETE /api/services/:id
func (h *ServiceHandler) Delete(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.repo.Delete(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "service %s not found", id)
	}
	return OKMessage(c, "service deleted")
}
