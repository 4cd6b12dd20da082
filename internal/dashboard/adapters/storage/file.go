package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20poly1305"

	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/logger"
)

// Константы для логирования файлового хранилища.
const (
	LogMethodFileLoad  = "file_load"
	LogMethodFileFlush = "file_flush"

	ErrorFailedToReadFile   = "failed to read session file"
	ErrorFailedToWriteFile  = "failed to write session file"
	ErrorFailedToDecode     = "failed to decode session file"
	ErrorFailedToOpenSealed = "failed to open sealed session file"
	ErrorInvalidFileKey     = "invalid session file key"
)

// ErrSealedFileCorrupted возвращается, если зашифрованный файл поврежден
// или записан другим ключом.
var ErrSealedFileCorrupted = errors.New("sealed session file is corrupted")

// FileStorage хранит пространства имен сессий в одном JSON документе на диске.
// Каждая запись переписывает файл целиком через временный файл и rename.
type FileStorage struct {
	mu        sync.Mutex
	path      string
	namespace string
	aead      cipher.AEAD
}

// document - содержимое файла: namespace -> key -> value.
type document map[string]map[string]string

// FileOption настраивает FileStorage.
type FileOption func(*FileStorage) error

// WithSealKey включает шифрование файла XChaCha20-Poly1305 ключом длиной 32 байта.
func WithSealKey(key []byte) FileOption {
	return func(s *FileStorage) error {
		if len(key) == 0 {
			return nil
		}
		aead, err := chacha20poly1305.NewX(key)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrorInvalidFileKey, err)
		}
		s.aead = aead
		return nil
	}
}

// NewFileStorage создает файловое хранилище для пространства имен namespace.
// Каталог файла создается при необходимости.
func NewFileStorage(path, namespace string, opts ...FileOption) (*FileStorage, error) {
	s := &FileStorage{path: path, namespace: namespace}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedToWriteFile, err)
	}
	return s, nil
}

var _ storage.Backend = (*FileStorage)(nil)

// Get возвращает значение по ключу.
func (s *FileStorage) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return "", err
	}

	value, ok := doc[s.namespace][key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

// Set записывает значение.
func (s *FileStorage) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany записывает все значения одной перезаписью файла.
func (s *FileStorage) SetMany(ctx context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	ns := doc[s.namespace]
	if ns == nil {
		ns = make(map[string]string, len(values))
		doc[s.namespace] = ns
	}
	for k, v := range values {
		ns[k] = v
	}

	return s.flush(ctx, doc)
}

// Delete удаляет ключи одной перезаписью файла.
func (s *FileStorage) Delete(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}

	ns := doc[s.namespace]
	if len(ns) == 0 {
		return nil
	}
	for _, k := range keys {
		delete(ns, k)
	}
	if len(ns) == 0 {
		delete(doc, s.namespace)
	}

	return s.flush(ctx, doc)
}

// Clear удаляет пространство имен целиком.
func (s *FileStorage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := doc[s.namespace]; !ok {
		return nil
	}
	delete(doc, s.namespace)

	return s.flush(ctx, doc)
}

func (s *FileStorage) Close() error { return nil }

func (s *FileStorage) load(ctx context.Context) (document, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodFileLoad), zap.String("path", s.path))

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return document{}, nil
	}
	if err != nil {
		log.Error(ctx, ErrorFailedToReadFile, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToReadFile, err)
	}
	if len(raw) == 0 {
		return document{}, nil
	}

	if s.aead != nil {
		raw, err = s.open(raw)
		if err != nil {
			log.Error(ctx, ErrorFailedToOpenSealed, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", ErrorFailedToOpenSealed, err)
		}
	}

	doc := document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		log.Error(ctx, ErrorFailedToDecode, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToDecode, err)
	}
	return doc, nil
}

func (s *FileStorage) flush(ctx context.Context, doc document) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodFileFlush), zap.String("path", s.path))

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToWriteFile, err)
	}

	if s.aead != nil {
		raw, err = s.seal(raw)
		if err != nil {
			log.Error(ctx, ErrorFailedToWriteFile, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorFailedToWriteFile, err)
		}
	}

	if err := writeFileAtomic(s.path, raw); err != nil {
		log.Error(ctx, ErrorFailedToWriteFile, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWriteFile, err)
	}
	return nil
}

// seal возвращает nonce || ciphertext; имя файла - дополнительные данные AEAD.
func (s *FileStorage) seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, []byte(filepath.Base(s.path))), nil
}

func (s *FileStorage) open(sealed []byte) ([]byte, error) {
	if len(sealed) < s.aead.NonceSize()+s.aead.Overhead() {
		return nil, ErrSealedFileCorrupted
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, []byte(filepath.Base(s.path)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSealedFileCorrupted, err)
	}
	return plaintext, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
