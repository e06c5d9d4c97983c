package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/config-vault/server/pkg/middleware"
)

// Router owns route registration for every handler.
type Router struct {
	Auth           *AuthHandler
	Users          *UserHandler
	Projects       *ProjectHandler
	Configurations *ConfigurationHandler
	Services       *ServiceHandler
	Templates      *TemplateHandler
	Health         *HealthHandler

	// Verifier guards the authenticated API group. Nil disables
	// authentication entirely; meant for local development only.
	Verifier middleware.TokenVerifier
}

// RegisterRoutes mounts everything on the echo instance. The register,
// login, share-link, health, and metrics routes are public; the rest of the
// API sits behind bearer auth when a verifier is configured.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", r.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	api.POST("/auth/register", r.Auth.Register)
	api.POST("/auth/login", r.Auth.Login)
	api.GET("/shared/:token", r.Configurations.GetShared)

	protected := api
	if r.Verifier != nil {
		protected = api.Group("", middleware.Auth(r.Verifier))
	}

	protected.POST("/auth/logout", r.Auth.Logout)
	protected.GET("/auth/me", r.Auth.Me)

	protected.GET("/users", r.Users.List)
	protected.GET("/users/:id", r.Users.Get)
	protected.PUT("/users/:id", r.Users.Update)
	protected.DELETE("/users/:id", r.Users.Delete)

	protected.POST("/projects", r.Projects.Create)
	protected.GET("/projects", r.Projects.List)
	protected.GET("/projects/:id", r.Projects.Get)
	protected.PUT("/projects/:id", r.Projects.Update)
	protected.DELETE("/projects/:id", r.Projects.Delete)
	protected.GET("/projects/:id/configurations", r.Configurations.ListForProject)

	protected.POST("/configurations", r.Configurations.Create)
	protected.GET("/configurations", r.Configurations.List)
	protected.GET("/configurations/:id", r.Configurations.Get)
	protected.PUT("/configurations/:id", r.Configurations.Update)
	protected.DELETE("/configurations/:id", r.Configurations.Delete)
	protected.GET("/configurations/:id/details", r.Configurations.ListDetails)

	protected.POST("/configuration-details", r.Configurations.AddDetail)
	protected.PUT("/configuration-details/:id", r.Configurations.UpdateDetail)
	protected.DELETE("/configuration-details/:id", r.Configurations.DeleteDetail)

	protected.POST("/services", r.Services.Create)
	protected.GET("/services", r.Services.List)
	protected.GET("/services/:id", r.Services.Get)
	protected.PUT("/services/:id", r.Services.Update)
	protected.POST("/services/:id/health", r.Services.RecordHealthCheck)
	protected.DELETE("/services/:id", r.Services.Delete)

	protected.POST("/templates", r.Templates.Create)
	protected.GET("/templates", r.Templates.List)
	protected.GET("/templates/:id", r.Templates.Get)
	protected.PUT("/templates/:id", r.Templates.Update)
	protected.DELETE("/templates/:id", r.Templates.Delete)
}
