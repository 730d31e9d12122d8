package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Cartola"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host           string `envconfig:"DB_HOST" default:"localhost"`
		Port           int    `envconfig:"DB_PORT" default:"5432"`
		User           string `envconfig:"DB_USER" default:"postgres"`
		Password       string `envconfig:"DB_PASSWORD" default:""`
		Name           string `envconfig:"DB_NAME" default:"cartola"`
		MigrateOnStart bool   `envconfig:"DB_MIGRATE" default:"true"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		CORSOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Import struct {
		Dir         string `envconfig:"IMPORT_DIR" default:"./data"`
		MaxUploadMB int64  `envconfig:"IMPORT_MAX_UPLOAD_MB" default:"16"`
	}

	Categorize struct {
		DetectPersons  bool     `envconfig:"CATEGORIZE_DETECT_PERSONS" default:"true"`
		FirstNames     []string `envconfig:"CATEGORIZE_FIRST_NAMES"`
		LastNames      []string `envconfig:"CATEGORIZE_LAST_NAMES"`
		FuzzyThreshold float64  `envconfig:"CATEGORIZE_FUZZY_THRESHOLD" default:"0.6"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// MaxUploadBytes is the multipart upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return c.Import.MaxUploadMB << 20
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Categorize.FuzzyThreshold <= 0 || cfg.Categorize.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("CATEGORIZE_FUZZY_THRESHOLD must be in (0, 1], got %v", cfg.Categorize.FuzzyThreshold)
	}

	return &cfg, nil
}
