package handlers

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

type UserService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type UserHandler struct {
	service UserService
	logger  ectologger.Logger
}

func NewUserHandler(service UserService, logger ectologger.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

// List handles GET /api/users
func (h *UserHandler) List(c echo.Context) error {
	limit, offset := ParsePagination(c)
	users, err := h.service.List(c.Request().Context(), limit, offset)
	if err != nil {
		return err
	}
	return OK(c, users)
}

// Get handles GET /api/users/:id
func (h *UserHandler) Get(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return OK(c, user)
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.UpdateUserRequest](c)
	if err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), id, req)
	if err != nil {
		return err
	}
	return OK(c, user)
}

// Delete handles DELETE /api/users/:id
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return OKMessage(c, "user deleted")
}
