package config

import "admindash/pkg/db/postgres"

// PostgresConfig представляет конфигурацию Postgres для хранилища сессии.
type PostgresConfig struct {
	Host           string `yaml:"host" env:"DASHBOARD_POSTGRES_HOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"DASHBOARD_POSTGRES_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DASHBOARD_POSTGRES_USER" env-default:"dashboard"`
	Password       string `yaml:"password" env:"DASHBOARD_POSTGRES_PASSWORD" env-default:""`
	Database       string `yaml:"database" env:"DASHBOARD_POSTGRES_DB" env-default:"dashboard"`
	SSLMode        string `yaml:"ssl_mode" env:"DASHBOARD_POSTGRES_SSL_MODE" env-default:"disable"`
	MinConns       int    `yaml:"min_conns" env:"DASHBOARD_POSTGRES_MIN_CONNS" env-default:"1"`
	MaxConns       int    `yaml:"max_conns" env:"DASHBOARD_POSTGRES_MAX_CONNS" env-default:"5"`
	MigrationsPath string `yaml:"migrations_path" env:"DASHBOARD_POSTGRES_MIGRATIONS_PATH" env-default:"file://migrations/dashboard"`
}

// ToDatabaseConfig преобразует настройки в конфигурацию pkg/db/postgres.
func (c *PostgresConfig) ToDatabaseConfig() postgres.Config {
	return postgres.Config{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Database,
		SSLMode:  c.SSLMode,
		MinConns: c.MinConns,
		MaxConns: c.MaxConns,
	}
}
