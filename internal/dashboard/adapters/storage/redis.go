package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet     = "get"
	LogMethodSet     = "set"
	LogMethodSetMany = "set_many"
	LogMethodDelete  = "delete"
	LogMethodClear   = "clear"

	ErrorFailedToGet    = "failed to get value from redis"
	ErrorFailedToSet    = "failed to set value in redis"
	ErrorFailedToDelete = "failed to delete value from redis"
	ErrorFailedToScan   = "failed to scan session keys in redis"
	ErrorFailedToClose  = "failed to close redis connection"
)

const scanBatch = 100

// RedisStorage хранит значения сессии в Redis под ключами <prefix><namespace>:<key>.
type RedisStorage struct {
	client    redis.UniversalClient
	prefix    string
	namespace string
	ttl       time.Duration
}

// NewRedisStorage создает хранилище поверх готового клиента.
// ttl == 0 означает ключи без срока жизни.
func NewRedisStorage(client redis.UniversalClient, prefix, namespace string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client:    client,
		prefix:    prefix,
		namespace: namespace,
		ttl:       ttl,
	}
}

var _ storage.Backend = (*RedisStorage)(nil)

func (s *RedisStorage) key(k string) string {
	return s.prefix + s.namespace + ":" + k
}

// Get получает значение по ключу.
func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodGet), zap.String("key", key))

	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", storage.ErrNotFound
		}
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	return value, nil
}

// Set устанавливает значение для ключа.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("key", key))

	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// SetMany записывает значения в одной транзакции MULTI/EXEC.
func (s *RedisStorage) SetMany(ctx context.Context, values map[string]string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSetMany), zap.Int("count", len(values)))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, s.key(k), v, s.ttl)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Delete удаляет ключи одной командой DEL.
func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	log := logger.Log(ctx).With(zap.String("method", LogMethodDelete), zap.Strings("keys", keys))

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}

	if err := s.client.Del(ctx, full...).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Clear удаляет все ключи пространства имен.
func (s *RedisStorage) Clear(ctx context.Context) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodClear), zap.String("namespace", s.namespace))

	var keys []string
	iter := s.client.Scan(ctx, 0, s.key("*"), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Error(ctx, ErrorFailedToScan, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToScan, err)
	}
	if len(keys) == 0 {
		return nil
	}

	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisStorage) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
