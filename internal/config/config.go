package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"GLOSSA_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"GLOSSA_DB_MAX_CONNS" default:"8"`

	HTTPHost        string        `envconfig:"HTTP_HOST" default:"0.0.0.0"`
	HTTPPort        int           `envconfig:"HTTP_PORT" default:"8092"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	AdminToken string `envconfig:"ADMIN_TOKEN" default:""`

	OpenAIEndpoint string        `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1/chat/completions"`
	OpenAITimeout  time.Duration `envconfig:"OPENAI_TIMEOUT" default:"20s"`

	PageSize   int           `envconfig:"TRANSLATE_PAGE_SIZE" default:"50"`
	MaxPages   int           `envconfig:"TRANSLATE_MAX_PAGES" default:"3"`
	RunTimeout time.Duration `envconfig:"TRANSLATE_RUN_TIMEOUT" default:"10m"`

	ProgressTTL time.Duration `envconfig:"PROGRESS_TTL" default:"1h"`

	// LogBaseURL is the prefix for the log deep links handed to pollers,
	// for example https://example.org/logs/.
	LogBaseURL      string        `envconfig:"LOG_BASE_URL" default:"/logs/"`
	LogRetentionAge time.Duration `envconfig:"LOG_RETENTION_AGE" default:"4380h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("GLOSSA_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("GLOSSA_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("GLOSSA_DB_MIN_CONNS (%d) cannot exceed GLOSSA_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("TRANSLATE_PAGE_SIZE must be >= 1")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("TRANSLATE_MAX_PAGES must be >= 1")
	}
	if c.ProgressTTL < time.Minute {
		return fmt.Errorf("PROGRESS_TTL must be >= 1m")
	}
	if c.LogRetentionAge < 24*time.Hour {
		return fmt.Errorf("LOG_RETENTION_AGE must be >= 24h")
	}
	if strings.TrimSpace(c.OpenAIEndpoint) == "" {
		return fmt.Errorf("OPENAI_ENDPOINT is required")
	}
	return nil
}
