package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"config-vault-api"`
	Port                          int    `env:"PORT" env-default:"3000"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	StartupMaxAttempts            int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database file path. The parent directory is created on first connect.
	DatabasePath string `env:"DB_PATH" env-default:"data/database.sqlite"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"1"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"1"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"0s"`

	// Auth Enabled - when false, the protected route group is left unguarded
	AuthEnabled bool `env:"AUTH_ENABLED" env-default:"true"`
	// JWT signing secret for access tokens
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret-change-me"`
	// Access token lifetime
	TokenTTL time.Duration `env:"TOKEN_TTL" env-default:"24h"`

	// Tracing
	TracingEndpoint string `env:"TRACING_OTLP_ENDPOINT" env-default:""`
	TracingInsecure bool   `env:"TRACING_OTLP_INSECURE" env-default:"true"`
}

// Load reads the configuration from the environment, after loading a local
// .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
