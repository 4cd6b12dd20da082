package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSessionConfig возвращается для некорректных интервалов обновления.
var ErrInvalidSessionConfig = errors.New("invalid session configuration")

// SessionConfig задает параметры жизненного цикла токенов.
type SessionConfig struct {
	Namespace       string        `yaml:"namespace" env:"DASHBOARD_SESSION_NAMESPACE" env-default:"default"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env:"DASHBOARD_SESSION_REFRESH_INTERVAL" env-default:"10m"`
	ExpirySkew      time.Duration `yaml:"expiry_skew" env:"DASHBOARD_SESSION_EXPIRY_SKEW" env-default:"60s"`
	RestoreOnStart  bool          `yaml:"restore_on_start" env:"DASHBOARD_SESSION_RESTORE_ON_START" env-default:"true"`
}

// Validate проверяет интервалы.
func (c *SessionConfig) Validate() error {
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("%w: refresh interval must be positive", ErrInvalidSessionConfig)
	}
	if c.ExpirySkew < 0 {
		return fmt.Errorf("%w: expiry skew must not be negative", ErrInvalidSessionConfig)
	}
	if c.Namespace == "" {
		return fmt.Errorf("%w: empty namespace", ErrInvalidSessionConfig)
	}
	return nil
}
