package config

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/AgentOS/modulegate/internal/sandbox"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Assets    AssetsConfig
	Sandbox   SandboxConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" validate:"required,numeric"`
	Host string `envconfig:"HOST" default:"0.0.0.0" validate:"required"`
}

// AssetsConfig points at the directory holding the glue script and module bundles.
type AssetsConfig struct {
	Dir string `envconfig:"ASSETS_DIR" default:"." validate:"required"`
}

// SandboxConfig holds script engine limits.
type SandboxConfig struct {
	EvalTimeout      time.Duration `envconfig:"SANDBOX_EVAL_TIMEOUT" default:"30s" validate:"gte=0"`
	MaxCallStackSize int           `envconfig:"SANDBOX_MAX_CALL_STACK" default:"1024" validate:"gte=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" validate:"gt=0"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" validate:"gt=0"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig lists the origins allowed to call the HTTP API. "*" allows any.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*" validate:"min=1,dive,required"`
}

var validate = validator.New()

// Load loads configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// SandboxSettings converts the sandbox section into engine configuration.
func (c *Config) SandboxSettings() sandbox.Config {
	settings := sandbox.DefaultConfig()
	settings.Timeout = c.Sandbox.EvalTimeout
	settings.MaxCallStackSize = c.Sandbox.MaxCallStackSize
	return settings
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Assets: AssetsConfig{
			Dir: ".",
		},
		Sandbox: SandboxConfig{
			EvalTimeout:      30 * time.Second,
			MaxCallStackSize: 1024,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
