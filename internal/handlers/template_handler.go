package handlers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/internal/repositories/template"
	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/middleware"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

type TemplateHandler struct {
	repo   *template.Repository
	logger ectologger.Logger
}

func NewTemplateHandler(repo *template.Repository, logger ectologger.Logger) *TemplateHandler {
	return &TemplateHandler{repo: repo, logger: logger}
}

func currentUserID(c echo.Context) string {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return ""
}

// Create handles POST /api/templates
func (h *TemplateHandler) Create(c echo.Context) error {
	req, err := utils.BindRequest[models.CreateTemplateRequest](c)
	if err != nil {
		return err
	}

	fields := database.Fields{
		"name":      req.Name,
		"file_type": req.FileType,
		"content":   req.Content,
		"is_public": req.IsPublic,
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if userID := currentUserID(c); userID != "" {
		fields["created_by"] = userID
	}

	created, err := h.repo.Create(c.Request().Context(), fields)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return Created(c, created)
}

// List handles GET /api/templates?file_type=...
func (h *TemplateHandler) List(c echo.Context) error {
	userID := currentUserID(c)

	if fileType := c.QueryParam("file_type"); fileType != "" {
		templates, err := h.repo.ListByFileType(c.Request().Context(), fileType, userID)
		if err != nil {
			return httperror.WrapError(http.StatusInternalServerError, err)
		}
		return OK(c, templates)
	}

	limit, offset := ParsePagination(c)
	templates, err := h.repo.ListVisible(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return OK(c, templates)
}

// Get handles GET /api/templates/:id and counts the fetch as a usage.
func (h *TemplateHandler) Get(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	tpl, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if tpl == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "template %s not found", id)
	}

	if err := h.repo.IncrementUsage(c.Request().Context(), id); err != nil {
		h.logger.WithContext(c.Request().Context()).WithError(err).Warn("failed to count template usage")
	}
	return OK(c, tpl)
}

// Update handles PUT /api/templates/:id
func (h *TemplateHandler) Update(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateTemplateRequest](c)
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
	if req.FileType != nil {
		fields["file_type"] = *req.FileType
	}
	if req.Content != nil {
		fields["content"] = *req.Content
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}
	if len(fields) == 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "no fields to update")
	}

	existing, err := h.repo.FindByID(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if existing == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "template %s not found", id)
	}

	updated, err := h.repo.Update(c.Request().Context(), id, fields)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	return OK(c, updated)
}

// Delete handles DELETE /api/templates/:id
func (h *TemplateHandler) Delete(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	deleted, err := h.repo.Delete(c.Request().Context(), id)
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}
	if !deleted {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "template %s not found", id)
	}
	return OKMessage(c, "template deleted")
}
