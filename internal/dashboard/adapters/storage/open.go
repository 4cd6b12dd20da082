package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"admindash/internal/dashboard/config"
	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/db/postgres"
	redisdb "admindash/pkg/db/redis"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogOpenStorage = "opening session storage"

	ErrorFailedToOpen    = "failed to open session storage"
	ErrorFailedToMigrate = "failed to apply session storage migrations"
)

// Open создает хранилище сессии по настройкам драйвера.
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	log := logger.Log(ctx).With(zap.String("driver", cfg.Storage.Driver))
	log.Info(ctx, LogOpenStorage)

	namespace := cfg.Session.Namespace

	switch cfg.Storage.Driver {
	case config.StorageMemory:
		return NewMemoryStorage(), nil

	case config.StorageNone:
		return NoopStorage{}, nil

	case config.StorageFile:
		key, err := cfg.Storage.DecodeFileKey()
		if err != nil {
			return nil, err
		}
		var opts []FileOption
		if key != nil {
			opts = append(opts, WithSealKey(key))
		}
		backend, err := NewFileStorage(cfg.Storage.FilePath, namespace, opts...)
		if err != nil {
			log.Error(ctx, ErrorFailedToOpen, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToOpen, err)
		}
		return backend, nil

	case config.StorageRedis:
		client, err := redisdb.NewClient(ctx, redisdb.NewConfigFromAppConfig(&cfg.Redis))
		if err != nil {
			log.Error(ctx, ErrorFailedToOpen, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToOpen, err)
		}
		return NewRedisStorage(client, cfg.Storage.RedisPrefix, namespace, cfg.Redis.SessionTTL), nil

	case config.StoragePostgres:
		dbCfg := cfg.Postgres.ToDatabaseConfig()
		if err := postgres.MigrateDSN(ctx, dbCfg.DSN(), cfg.Postgres.MigrationsPath); err != nil {
			log.Error(ctx, ErrorFailedToMigrate, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToMigrate, err)
		}
		db, err := postgres.New(ctx, dbCfg)
		if err != nil {
			log.Error(ctx, ErrorFailedToOpen, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToOpen, err)
		}
		return NewPostgresStorage(db.Pool(), namespace), nil

	default:
		return nil, fmt.Errorf("%w: unknown driver %q", config.ErrInvalidStorageConfig, cfg.Storage.Driver)
	}
}
