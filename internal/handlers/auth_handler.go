package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/metrics"
	"github.com/config-vault/server/pkg/middleware"
	"github.com/config-vault/server/pkg/models"
	"github.com/config-vault/server/pkg/utils"
)

type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthenticatedUser, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthenticatedUser, error)
	Logout(ctx context.Context, token string) error
}

type AuthHandler struct {
	service AuthService
	logger  ectologger.Logger
}

func NewAuthHandler(service AuthService, logger ectologger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	req, err := utils.BindRequest[models.RegisterRequest](c)
	if err != nil {
		return err
	}

	authenticated, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "success").Inc()
	return Created(c, authenticated)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	req, err := utils.BindRequest[models.LoginRequest](c)
	if err != nil {
		return err
	}

	authenticated, err := h.service.Login(c.Request().Context(), req)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return OK(c, authenticated)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token != "" {
		if err := h.service.Logout(c.Request().Context(), token); err != nil {
			return err
		}
	}
	return OKMessage(c, "logged out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return OK(c, user)
}
