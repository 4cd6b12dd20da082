package config

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// Поддерживаемые драйверы хранилища сессии.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageNone     = "none"
)

// ErrInvalidStorageConfig возвращается для неизвестного драйвера или ключа.
var ErrInvalidStorageConfig = errors.New("invalid storage configuration")

// StorageConfig выбирает хранилище сессии.
type StorageConfig struct {
	Driver   string `yaml:"driver" env:"DASHBOARD_STORAGE_DRIVER" env-default:"memory"`
	FilePath string `yaml:"file_path" env:"DASHBOARD_STORAGE_FILE_PATH" env-default:"./data/session.json"`
	// FileKey - 32 байта в hex; если задан, файл сессии шифруется.
	FileKey     string `yaml:"file_key" env:"DASHBOARD_STORAGE_FILE_KEY" env-default:""`
	RedisPrefix string `yaml:"redis_prefix" env:"DASHBOARD_STORAGE_REDIS_PREFIX" env-default:"dashboard:session:"`
}

// Validate проверяет драйвер и ключ шифрования.
func (c *StorageConfig) Validate() error {
	switch c.Driver {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageNone:
	default:
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfig, c.Driver)
	}
	if c.FileKey != "" {
		if _, err := c.DecodeFileKey(); err != nil {
			return err
		}
	}
	return nil
}

// DecodeFileKey декодирует ключ шифрования файла.
func (c *StorageConfig) DecodeFileKey() ([]byte, error) {
	if c.FileKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.FileKey)
	if err != nil {
		return nil, fmt.Errorf("%w: file key: %w", ErrInvalidStorageConfig, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: file key must be 32 bytes, got %d", ErrInvalidStorageConfig, len(key))
	}
	return key, nil
}
