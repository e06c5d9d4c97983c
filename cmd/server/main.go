package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/zap"

	"github.com/config-vault/server/config"
	"github.com/config-vault/server/internal/handlers"
	"github.com/config-vault/server/internal/migrations"
	configurationrepo "github.com/config-vault/server/internal/repositories/configuration"
	"github.com/config-vault/server/internal/repositories/configurationdetail"
	projectrepo "github.com/config-vault/server/internal/repositories/project"
	servicerepo "github.com/config-vault/server/internal/repositories/service"
	sessionrepo "github.com/config-vault/server/internal/repositories/session"
	templaterepo "github.com/config-vault/server/internal/repositories/template"
	userrepo "github.com/config-vault/server/internal/repositories/user"
	authsvc "github.com/config-vault/server/internal/services/auth"
	configurationsvc "github.com/config-vault/server/internal/services/configuration"
	projectsvc "github.com/config-vault/server/internal/services/project"
	usersvc "github.com/config-vault/server/internal/services/user"
	"github.com/config-vault/server/pkg/database"
	"github.com/config-vault/server/pkg/middleware"
	"github.com/config-vault/server/pkg/startup"
	"github.com/config-vault/server/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.WithField("app", cfg.AppName).Info("starting server")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracingInit(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	app := &application{cfg: cfg, logger: logger}

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&databaseDependency{app: app})
	boot.AddDependency(&migrationDependency{app: app})
	boot.AddDependency(&serverDependency{app: app})

	if err := boot.Start(ctx); err != nil {
		logger.WithError(err).Error("startup failed")
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := boot.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("shutdown failed")
		os.Exit(1)
	}
}

func tracingInit(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	return tracing.Init(ctx, cfg.AppName, cfg.TracingEndpoint, cfg.TracingInsecure)
}

func newLogger(cfg *config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	var err error
	if cfg.PrettyLogs {
		zapLogger, err = zap.NewDevelopment()
	} else {
		zapLogger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

type application struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
	echo   *echo.Echo
}

type databaseDependency struct {
	app *application
}

func (d *databaseDependency) GetName() string { return "database" }
func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, d.app.logger, database.Config{
		Path:            d.app.cfg.DatabasePath,
		MaxOpenConns:    d.app.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.app.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.app.cfg.DatabaseConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	d.app.db = db
	return nil
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	if d.app.db == nil {
		return nil
	}
	return d.app.db.Close()
}

type migrationDependency struct {
	app *application
}

func (d *migrationDependency) GetName() string { return "migrations" }
func (d *migrationDependency) DependsOn() []string { return []string{"database"} }

func (d *migrationDependency) Start(ctx context.Context) error {
	return database.NewMigrationService(d.app.db, d.app.logger, migrations.Migrations).Run(ctx)
}

func (d *migrationDependency) Stop(ctx context.Context) error { return nil }

type serverDependency struct {
	app *application
}

func (d *serverDependency) GetName() string { return "http-server" }
func (d *serverDependency) DependsOn() []string { return []string{"migrations"} }

func (d *serverDependency) Start(ctx context.Context) error {
	app := d.app
	cfg := app.cfg

	users := userrepo.NewRepository(app.db, app.logger)
	projects := projectrepo.NewRepository(app.db, app.logger)
	configs := configurationrepo.NewRepository(app.db, app.logger)
	details := configurationdetail.NewRepository(app.db, app.logger)
	sessions := sessionrepo.NewRepository(app.db, app.logger)
	services := servicerepo.NewRepository(app.db, app.logger)
	templates := templaterepo.NewRepository(app.db, app.logger)

	authService := authsvc.NewService(app.logger, users, sessions, cfg.JWTSecret, cfg.TokenTTL)
	userService := usersvc.NewService(app.logger, users)
	projectService := projectsvc.NewService(app.logger, projects)
	configService := configurationsvc.NewService(app.logger, configs, details, projects)

	router := &handlers.Router{
		Auth:           handlers.NewAuthHandler(authService, app.logger),
		Users:          handlers.NewUserHandler(userService, app.logger),
		Projects:       handlers.NewProjectHandler(projectService, app.logger),
		Configurations: handlers.NewConfigurationHandler(configService, app.logger),
		Services:       handlers.NewServiceHandler(services, app.logger),
		Templates:      handlers.NewTemplateHandler(templates, app.logger),
		Health:         handlers.NewHealthHandler(app.db),
	}
	if cfg.AuthEnabled {
		router.Verifier = authService
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second

	e.Use(otelecho.Middleware(cfg.AppName))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(app.logger))
	e.Use(middleware.Metrics())
	e.HTTPErrorHandler = middleware.Error(app.logger)

	router.RegisterRoutes(e)

	app.echo = e
	go func() {
		if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
			app.logger.WithError(err).Error("http server stopped")
		}
	}()

	return nil
}

func (d *serverDependency) Stop(ctx context.Context) error {
	if d.app.echo == nil {
		return nil
	}
	return d.app.echo.Shutdown(ctx)
}
