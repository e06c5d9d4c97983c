package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/middleware"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

type ProjectService interface {
	Create(ctx context.Context, userID string, req models.CreateProjectRequest) (*models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Project, error)
	Update(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectHandler struct {
	service ProjectService
	logger  ectologger.Logger
}

func NewProjectHandler(service ProjectService, logger ectologger.Logger) *ProjectHandler {
	return &ProjectHandler{service: service, logger: logger}
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(c echo.Context) error {
	req, err := utils.BindRequest[models.CreateProjectRequest](c)
	if err != nil {
		return err
	}

	userID := ""
	if user := middleware.CurrentUser(c); user != nil {
		userID = user.ID
	}

	project, err := h.service.Create(c.Request().Context(), userID, req)
	if err != nil {
		return err
	}
	return Created(c, project)
}

// List handles GET /api/projects. The optional user_id query parameter
// scopes the list to one owner; authenticated calls default to the caller.
func (h *ProjectHandler) List(c echo.Context) error {
	limit, offset := ParsePagination(c)

	userID := c.QueryParam("user_id")
	if userID == "" {
		if user := middleware.CurrentUser(c); user != nil {
			userID = user.ID
		}
	}

	projects, err := h.service.List(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return err
	}
	return OK(c, projects)
}

// Get handles GET /api/projects/:id
func (h *ProjectHandler) Get(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	project, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return OK(c, project)
}

// Update handles PUT /api/projects/:id
func (h *ProjectHandler) Update(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateProjectRequest](c)
	if err != nil {
		return err
	}

	project, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return OK(c, project)
}

// Delete handles DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return OKMessage(c, "project deleted")
}
