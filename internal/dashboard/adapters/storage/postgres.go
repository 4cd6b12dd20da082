package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	ErrorFailedToQuery    = "error querying session value"
	ErrorFailedToUpsert   = "error storing session value"
	ErrorFailedToRemove   = "error deleting session values"
	ErrorFailedToBeginTx  = "error starting transaction"
	ErrorFailedToCommitTx = "error committing transaction"
)

const (
	querySelectValue = `
        SELECT value
        FROM session_values
        WHERE namespace = $1 AND key = $2
    `
	queryUpsertValue = `
        INSERT INTO session_values (namespace, key, value, updated_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (namespace, key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
    `
	queryDeleteValues = `
        DELETE FROM session_values
        WHERE namespace = $1 AND key = ANY($2)
    `
	queryClearNamespace = `
        DELETE FROM session_values
        WHERE namespace = $1
    `
)

// PgxPoolInterface - подмножество pgxpool.Pool, используемое хранилищем.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStorage хранит значения сессии в таблице session_values.
type PostgresStorage struct {
	pool      PgxPoolInterface
	namespace string
}

// NewPostgresStorage создает хранилище для пространства имен namespace.
func NewPostgresStorage(pool PgxPoolInterface, namespace string) *PostgresStorage {
	return &PostgresStorage{pool: pool, namespace: namespace}
}

var _ storage.Backend = (*PostgresStorage)(nil)

// Get находит значение по ключу.
func (s *PostgresStorage) Get(ctx context.Context, key string) (string, error) {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Get"))

	var value string
	err := s.pool.QueryRow(ctx, querySelectValue, s.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		log.Error(ctx, ErrorFailedToQuery, zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToQuery, err)
	}

	return value, nil
}

// Set сохраняет значение.
func (s *PostgresStorage) Set(ctx context.Context, key, value string) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Set"))

	if _, err := s.pool.Exec(ctx, queryUpsertValue, s.namespace, key, value); err != nil {
		log.Error(ctx, ErrorFailedToUpsert, zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToUpsert, err)
	}

	return nil
}

// SetMany сохраняет значения в одной транзакции.
func (s *PostgresStorage) SetMany(ctx context.Context, values map[string]string) (err error) {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "SetMany"))

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, ErrorFailedToBeginTx, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToBeginTx, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Warn(ctx, "error rolling back transaction", zap.Error(rbErr))
			}
		}
	}()

	// Ключи пишутся в отсортированном порядке.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err = tx.Exec(ctx, queryUpsertValue, s.namespace, k, values[k]); err != nil {
			log.Error(ctx, ErrorFailedToUpsert, zap.String("key", k), zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorFailedToUpsert, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		log.Error(ctx, ErrorFailedToCommitTx, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToCommitTx, err)
	}

	return nil
}

// Delete удаляет ключи одним запросом.
func (s *PostgresStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Delete"))

	if _, err := s.pool.Exec(ctx, queryDeleteValues, s.namespace, keys); err != nil {
		log.Error(ctx, ErrorFailedToRemove, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}

	return nil
}

// Clear удаляет все значения пространства имен.
func (s *PostgresStorage) Clear(ctx context.Context) error {
	log := logger.Log(ctx).With(zap.String("repository", "session"), zap.String("method", "Clear"))

	result, err := s.pool.Exec(ctx, queryClearNamespace, s.namespace)
	if err != nil {
		log.Error(ctx, ErrorFailedToRemove, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}

	log.Debug(ctx, "session namespace cleared", zap.Int64("count", result.RowsAffected()))
	return nil
}

// Close закрывает пул соединений.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
