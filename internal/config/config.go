// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"time"

	infraconfig "github.com/jiwonMe/work-mma-sdk/pkg/config"
	infraredis "github.com/jiwonMe/work-mma-sdk/pkg/redis"
)

// Config holds all configuration for the service.
type Config struct {
	Service ServiceConfig     `yaml:"service"`
	MMA     MMAConfig         `yaml:"mma"`
	Redis   infraredis.Config `yaml:"redis"`
	Logging LoggingConfig     `yaml:"logging"`
	CORS    CORSConfig        `yaml:"cors"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `yaml:"port" env:"SERVICE_PORT"`
	Debug   bool   `yaml:"debug" env:"SERVICE_DEBUG"`
}

// MMAConfig holds the upstream connection configuration.
type MMAConfig struct {
	// BaseURL is the upstream origin.
	BaseURL string `yaml:"base_url" env:"MMA_BASE_URL"`
	// RelayURL routes upstream requests through another deployment's
	// relay endpoint instead of calling the upstream directly. Empty
	// means direct.
	RelayURL string `yaml:"relay_url" env:"MMA_RELAY_URL"`
	// Timeout bounds each upstream request.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Enabled          bool     `yaml:"enabled"`
	AllowedOrigins   []string `yaml:"allowed_origins" env:"CORS_ORIGINS"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAge           int      `yaml:"max_age"`
}

// Load loads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = "byungtteok"
	}
	if cfg.Service.Version == "" {
		cfg.Service.Version = "1.0.0"
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = 8094
	}

	if cfg.MMA.BaseURL == "" {
		cfg.MMA.BaseURL = "https://work.mma.go.kr"
	}
	if cfg.MMA.Timeout == 0 {
		cfg.MMA.Timeout = 15 * time.Second
	}

	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("mma.base_url", c.MMA.BaseURL); err != nil {
		return err
	}
	if err := infraconfig.ValidateRequired("redis.address", c.Redis.Address); err != nil {
		return err
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return infraconfig.ValidateLogFormat(c.Logging.Format)
}
