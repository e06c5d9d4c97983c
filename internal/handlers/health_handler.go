package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/config-vault/server/pkg/database"
)

type HealthHandler struct {
	db database.DB
}

func NewHealthHandler(db database.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health. The database ping decides liveness.
func (h *HealthHandler) Check(c echo.Context) error {
	status := http.StatusOK
	dbStatus := "ok"

	if err := h.db.PingContext(c.Request().Context()); err != nil {
		status = http.StatusServiceUnavailable
		dbStatus = "unreachable"
	}

	return c.JSON(status, map[string]any{
		"status":   http.StatusText(status),
		"database": dbStatus,
		"time":     time.Now().UTC(),
	})
}
