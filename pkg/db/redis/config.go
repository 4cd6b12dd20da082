// Package redis предоставляет общую реализацию клиента Redis.
package redis

import "time"

// Значения по умолчанию для Redis.
// Должны совпадать с тегами env-default в RedisConfig приложения.
const (
	DefaultHost     = "localhost"
	DefaultPort     = 6379
	DefaultPassword = ""
	DefaultDB       = 0
	DefaultPoolSize = 10
	DefaultTimeout  = 5 * time.Second
)

// Config содержит настройки подключения к Redis.
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig возвращает конфигурацию Redis по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		Password:     DefaultPassword,
		DB:           DefaultDB,
		PoolSize:     DefaultPoolSize,
		DialTimeout:  DefaultTimeout,
		ReadTimeout:  DefaultTimeout,
		WriteTimeout: DefaultTimeout,
	}
}

// AppConfig описывает конфигурацию Redis приложения.
type AppConfig interface {
	GetHost() string
	GetPort() int
	GetPassword() string
	GetDB() int
	GetPoolSize() int
	GetConnectTimeout() time.Duration
	GetIOTimeout() time.Duration
}

// NewConfigFromAppConfig создает конфигурацию Redis из конфигурации приложения.
// Нулевые таймауты заменяются значениями по умолчанию.
func NewConfigFromAppConfig(cfg AppConfig) *Config {
	c := &Config{
		Host:         cfg.GetHost(),
		Port:         cfg.GetPort(),
		Password:     cfg.GetPassword(),
		DB:           cfg.GetDB(),
		PoolSize:     cfg.GetPoolSize(),
		DialTimeout:  cfg.GetConnectTimeout(),
		ReadTimeout:  cfg.GetIOTimeout(),
		WriteTimeout: cfg.GetIOTimeout(),
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultTimeout
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = DefaultTimeout
		c.WriteTimeout = DefaultTimeout
	}
	return c
}
