package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Facturas"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"facturas"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET"`
	}

	Extractor struct {
		// URL of the external field-extraction service. Extraction requests
		// fail fast when this is unset.
		URL            string        `envconfig:"EXTRACTOR_URL"`
		Timeout        time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"60s"`
		MaxInFlight    int           `envconfig:"EXTRACTOR_MAX_IN_FLIGHT" default:"5"`
		ToleranceCents int64         `envconfig:"EXTRACTOR_AMOUNT_TOLERANCE_CENTS" default:"2"`
	}

	Storage struct {
		Endpoint     string        `envconfig:"STORAGE_ENDPOINT"`
		Bucket       string        `envconfig:"STORAGE_BUCKET" default:"invoices"`
		ServiceKey   string        `envconfig:"STORAGE_SERVICE_KEY"`
		SignedURLTTL time.Duration `envconfig:"STORAGE_SIGNED_URL_TTL" default:"5m"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
