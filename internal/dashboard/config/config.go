// Package config содержит конфигурацию сервиса панели администратора.
package config

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	pkgconfig "admindash/pkg/config"
	"admindash/pkg/logger"
)

// Константы сообщений для конфигурации.
const (
	ServiceName         = "dashboard"
	EnvConfigPath       = "DASHBOARD_CONFIG_PATH"
	LogConfigLoaded     = "dashboard configuration loaded"
	ErrFailedLoadConfig = "failed to load dashboard configuration"
)

// Config представляет полную конфигурацию сервиса.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Logging  LoggingConfig  `yaml:"logging"`
	Shutdown ShutdownConfig `yaml:"shutdown"`
}

// Load загружает конфигурацию из файла DASHBOARD_CONFIG_PATH или из окружения.
func Load(ctx context.Context) (*Config, error) {
	log := logger.Log(ctx)

	cfg, err := pkgconfig.Load[Config](ctx, ServiceName, os.Getenv(EnvConfigPath))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		log.Error(ctx, ErrFailedLoadConfig, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	log.Info(ctx, LogConfigLoaded,
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("backend_url", cfg.Backend.BaseURL),
		zap.Duration("refresh_interval", cfg.Session.RefreshInterval),
		zap.Duration("expiry_skew", cfg.Session.ExpirySkew),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("storage_sealed", cfg.Storage.FileKey != ""),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode))

	return cfg, nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	return c.Storage.Validate()
}
