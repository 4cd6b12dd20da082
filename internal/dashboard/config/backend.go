package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ErrInvalidBackendURL возвращается для некорректного адреса API.
var ErrInvalidBackendURL = errors.New("invalid backend url")

// BackendConfig описывает удаленный REST API.
type BackendConfig struct {
	BaseURL          string        `yaml:"base_url" env:"DASHBOARD_BACKEND_URL" env-default:"http://localhost:5000/api"`
	RequestTimeout   time.Duration `yaml:"request_timeout" env:"DASHBOARD_BACKEND_REQUEST_TIMEOUT" env-default:"10s"`
	LoginPath        string        `yaml:"login_path" env:"DASHBOARD_BACKEND_LOGIN_PATH" env-default:"/login"`
	RegisterPath     string        `yaml:"register_path" env:"DASHBOARD_BACKEND_REGISTER_PATH" env-default:"/register"`
	RefreshPath      string        `yaml:"refresh_path" env:"DASHBOARD_BACKEND_REFRESH_PATH" env-default:"/refresh-token"`
	BreakerThreshold int           `yaml:"breaker_threshold" env:"DASHBOARD_BACKEND_BREAKER_THRESHOLD" env-default:"5"`
	BreakerTimeout   time.Duration `yaml:"breaker_timeout" env:"DASHBOARD_BACKEND_BREAKER_TIMEOUT" env-default:"10s"`
	LoginAttempts    int           `yaml:"login_attempts" env:"DASHBOARD_BACKEND_LOGIN_ATTEMPTS" env-default:"3"`
}

// Validate проверяет адрес API.
func (c *BackendConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidBackendURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: empty host", ErrInvalidBackendURL)
	}
	return nil
}
