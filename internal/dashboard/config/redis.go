package config

import (
	"fmt"
	"time"
)

// RedisConfig представляет конфигурацию Redis для хранилища сессии.
type RedisConfig struct {
	Host           string        `yaml:"host" env:"DASHBOARD_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"DASHBOARD_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"DASHBOARD_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"DASHBOARD_REDIS_DB" env-default:"0"`
	PoolSize       int           `yaml:"pool_size" env:"DASHBOARD_REDIS_POOL_SIZE" env-default:"10"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DASHBOARD_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	IOTimeout      time.Duration `yaml:"io_timeout" env:"DASHBOARD_REDIS_IO_TIMEOUT" env-default:"3s"`
	// SessionTTL ограничивает жизнь ключей сессии; 0 - без ограничения.
	SessionTTL time.Duration `yaml:"session_ttl" env:"DASHBOARD_REDIS_SESSION_TTL" env-default:"168h"`
}

// GetAddress возвращает адрес Redis.
func (c *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *RedisConfig) GetHost() string                  { return c.Host }
func (c *RedisConfig) GetPort() int                     { return c.Port }
func (c *RedisConfig) GetPassword() string              { return c.Password }
func (c *RedisConfig) GetDB() int                       { return c.DB }
func (c *RedisConfig) GetPoolSize() int                 { return c.PoolSize }
func (c *RedisConfig) GetConnectTimeout() time.Duration { return c.ConnectTimeout }
func (c *RedisConfig) GetIOTimeout() time.Duration      { return c.IOTimeout }
