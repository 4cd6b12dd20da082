// Package storage содержит реализации хранилища сессии: память, файл, Redis и Postgres.
package storage

import (
	"context"
	"sync"

	"admindash/internal/dashboard/ports/storage"
)

// MemoryStorage хранит значения в памяти процесса.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage создает пустое хранилище в памяти.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

var _ storage.Backend = (*MemoryStorage)(nil)

// Get возвращает значение по ключу.
func (s *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

// Set записывает значение.
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// SetMany записывает несколько значений под одной блокировкой.
func (s *MemoryStorage) SetMany(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.values[k] = v
	}
	return nil
}

// Delete удаляет ключи.
func (s *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

// Clear удаляет все значения.
func (s *MemoryStorage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.values)
	return nil
}

func (s *MemoryStorage) Close() error { return nil }

// NoopStorage - недоступное хранилище: чтения пусты, записи отбрасываются.
type NoopStorage struct{}

var _ storage.Backend = NoopStorage{}

func (NoopStorage) Get(context.Context, string) (string, error) { return "", storage.ErrNotFound }

func (NoopStorage) Set(context.Context, string, string) error { return nil }

func (NoopStorage) SetMany(context.Context, map[string]string) error { return nil }

func (NoopStorage) Delete(context.Context, ...string) error { return nil }

func (NoopStorage) Clear(context.Context) error { return nil }

func (NoopStorage) Close() error { return nil }
