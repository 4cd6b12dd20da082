// Package storage определяет интерфейс постоянного хранилища сессии.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, если ключ отсутствует.
var ErrNotFound = errors.New("key not found")

// Backend хранит строковые значения по ключам в рамках одного пространства имен.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key, value string) error

	// SetMany записывает все значения одной операцией.
	SetMany(ctx context.Context, values map[string]string) error

	// Delete удаляет ключи одной операцией; отсутствующие ключи игнорируются.
	Delete(ctx context.Context, keys ...string) error

	Clear(ctx context.Context) error

	Close() error
}
