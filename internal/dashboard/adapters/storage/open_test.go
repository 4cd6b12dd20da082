package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapters "admindash/internal/dashboard/adapters/storage"
	"admindash/internal/dashboard/config"
)

func openConfig(driver string) *config.Config {
	return &config.Config{
		Session: config.SessionConfig{Namespace: "ops"},
		Storage: config.StorageConfig{Driver: driver, RedisPrefix: "dash:"},
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		backend, err := adapters.Open(ctx, openConfig(config.StorageMemory))
		require.NoError(t, err)
		assert.IsType(t, &adapters.MemoryStorage{}, backend)
	})

	t.Run("none", func(t *testing.T) {
		backend, err := adapters.Open(ctx, openConfig(config.StorageNone))
		require.NoError(t, err)
		assert.IsType(t, adapters.NoopStorage{}, backend)
	})

	t.Run("sealed file", func(t *testing.T) {
		cfg := openConfig(config.StorageFile)
		cfg.Storage.FilePath = filepath.Join(t.TempDir(), "session.json")
		cfg.Storage.FileKey = strings.Repeat("ab", 32)

		backend, err := adapters.Open(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, backend.Set(ctx, "k", "v"))

		value, err := backend.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v", value)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		cfg := openConfig(config.StorageRedis)
		cfg.Redis = config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2, IOTimeout: time.Second, SessionTTL: time.Hour}

		backend, err := adapters.Open(ctx, cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = backend.Close() })

		require.NoError(t, backend.Set(ctx, "k", "v"))
		assert.True(t, mr.Exists("dash:ops:k"))
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := adapters.Open(ctx, openConfig("etcd"))
		require.ErrorIs(t, err, config.ErrInvalidStorageConfig)
	})

	t.Run("file path under a regular file", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o600))

		cfg := openConfig(config.StorageFile)
		cfg.Storage.FilePath = filepath.Join(blocker, "data", "session.json")

		_, err := adapters.Open(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), adapters.ErrorFailedToOpen)
	})

	t.Run("invalid file key", func(t *testing.T) {
		cfg := openConfig(config.StorageFile)
		cfg.Storage.FilePath = filepath.Join(t.TempDir(), "session.json")
		cfg.Storage.FileKey = "abcd"

		_, err := adapters.Open(ctx, cfg)
		require.ErrorIs(t, err, config.ErrInvalidStorageConfig)
	})
}
