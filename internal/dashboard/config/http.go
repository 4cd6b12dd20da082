package config

import (
	"fmt"
	"net"
	"time"
)

// HTTPConfig представляет конфигурацию HTTP фасада.
// Фасад обслуживает одного администратора и не проверяет вызывающего,
// поэтому по умолчанию слушает только loopback.
type HTTPConfig struct {
	Host         string        `yaml:"host" env:"DASHBOARD_HTTP_HOST" env-default:"127.0.0.1"`
	Port         int           `yaml:"port" env:"DASHBOARD_HTTP_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"DASHBOARD_HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"DASHBOARD_HTTP_WRITE_TIMEOUT" env-default:"30s"`
}

// GetAddress возвращает адрес HTTP сервера.
func (c *HTTPConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsLoopback сообщает, что фасад доступен только с локальной машины.
func (c *HTTPConfig) IsLoopback() bool {
	if c.Host == "localhost" {
		return true
	}
	ip := net.ParseIP(c.Host)
	return ip != nil && ip.IsLoopback()
}
