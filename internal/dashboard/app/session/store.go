// Package session содержит постоянное хранилище сессии администратора.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/logger"
	"admindash/pkg/redact"
)

// Константы для логирования.
const (
	LogMethodGet            = "get"
	LogMethodSet            = "set"
	LogMethodRemove         = "remove"
	LogMethodClear          = "clear"
	LogMethodSave           = "save"
	LogMethodSetCredentials = "set_credentials"

	LogSessionSaved     = "session saved"
	LogSessionCleared   = "session cleared"
	LogTokensUpdated    = "session tokens updated"
	LogStorageReadError = "failed to read session value, treating as absent"

	ErrorFailedToEncode = "failed to encode session value"
	ErrorFailedToWrite  = "failed to write session value"
	ErrorFailedToRemove = "failed to remove session value"
	ErrorFailedToClear  = "failed to clear session"
)

// EndListener вызывается после завершения сессии.
type EndListener func(ctx context.Context)

// Store - единственный владелец состояния сессии: токенов доступа и обновления
// и профиля пользователя. Значения хранятся как текст, нестроковые - в JSON.
//
// Nil backend означает недоступное хранилище: чтения пусты, записи игнорируются.
type Store struct {
	backend storage.Backend

	mu        sync.RWMutex
	listeners []EndListener

	// writeMu упорядочивает смену сессии и запись обновленных токенов.
	writeMu    sync.Mutex
	generation uint64
}

// NewStore создает хранилище сессии поверх backend.
func NewStore(backend storage.Backend) *Store {
	return &Store{backend: backend}
}

// OnEnd регистрирует обработчик, вызываемый синхронно после Clear и ClearAll.
func (s *Store) OnEnd(fn EndListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get возвращает значение по ключу. Текст, являющийся JSON, декодируется,
// иначе возвращается как есть. Ошибки хранилища трактуются как отсутствие значения.
func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	raw, ok := s.raw(ctx, key)
	if !ok {
		return nil, false
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw, true
	}
	return value, true
}

// Set записывает значение: строки как есть, остальное в JSON.
func (s *Store) Set(ctx context.Context, key string, value any) error {
	if s.backend == nil {
		return nil
	}
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("key", key))

	encoded, err := encode(value)
	if err != nil {
		log.Error(ctx, ErrorFailedToEncode, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
	}

	if err := s.backend.Set(ctx, key, encoded); err != nil {
		log.Error(ctx, ErrorFailedToWrite, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}
	return nil
}

// Remove удаляет значение по ключу.
func (s *Store) Remove(ctx context.Context, key string) error {
	if s.backend == nil {
		return nil
	}

	if err := s.backend.Delete(ctx, key); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToRemove,
			zap.String("method", LogMethodRemove), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToRemove, err)
	}
	return nil
}

// ClearAll удаляет все значения пространства имен и завершает сессию.
func (s *Store) ClearAll(ctx context.Context) error {
	s.writeMu.Lock()
	s.generation++
	var err error
	if s.backend != nil {
		if err = s.backend.Clear(ctx); err != nil {
			logger.Log(ctx).Error(ctx, ErrorFailedToClear,
				zap.String("method", LogMethodClear), zap.Error(err))
			err = fmt.Errorf("%s: %w", ErrorFailedToClear, err)
		}
	}
	s.writeMu.Unlock()

	s.notifyEnd(ctx)
	return err
}

// Generation возвращает номер текущей сессии. Номер меняется при Save,
// Clear и ClearAll.
func (s *Store) Generation() uint64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.generation
}

// AccessToken возвращает токен доступа.
func (s *Store) AccessToken(ctx context.Context) (string, bool) {
	return s.nonEmpty(ctx, entities.KeyAccessToken)
}

// RefreshToken возвращает токен обновления.
func (s *Store) RefreshToken(ctx context.Context) (string, bool) {
	return s.nonEmpty(ctx, entities.KeyRefreshToken)
}

// User возвращает профиль пользователя.
func (s *Store) User(ctx context.Context) (*entities.UserProfile, bool) {
	raw, ok := s.raw(ctx, entities.KeyUser)
	if !ok {
		return nil, false
	}

	var user entities.UserProfile
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Log(ctx).Warn(ctx, LogStorageReadError,
			zap.String("method", LogMethodGet), zap.String("key", entities.KeyUser), zap.Error(err))
		return nil, false
	}
	return &user, true
}

// Load возвращает всю сессию, если оба токена присутствуют.
func (s *Store) Load(ctx context.Context) (*entities.Session, bool) {
	access, ok := s.AccessToken(ctx)
	if !ok {
		return nil, false
	}
	refresh, ok := s.RefreshToken(ctx)
	if !ok {
		return nil, false
	}

	sess := &entities.Session{AccessToken: access, RefreshToken: refresh}
	if user, ok := s.User(ctx); ok {
		sess.User = user
	}
	return sess, true
}

// Save записывает токены и профиль одной операцией хранилища.
func (s *Store) Save(ctx context.Context, sess entities.Session) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.generation++
	if s.backend == nil {
		return nil
	}
	log := logger.Log(ctx).With(zap.String("method", LogMethodSave))

	values := map[string]string{
		entities.KeyAccessToken:  sess.AccessToken,
		entities.KeyRefreshToken: sess.RefreshToken,
	}
	if sess.User != nil {
		encoded, err := encode(sess.User)
		if err != nil {
			log.Error(ctx, ErrorFailedToEncode, zap.Error(err))
			return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
		}
		values[entities.KeyUser] = encoded
	}

	if err := s.backend.SetMany(ctx, values); err != nil {
		log.Error(ctx, ErrorFailedToWrite, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}

	fields := []zap.Field{zap.String("access_token", redact.Token(sess.AccessToken))}
	if sess.User != nil {
		fields = append(fields, zap.String("email", redact.Email(sess.User.Email)))
	}
	log.Info(ctx, LogSessionSaved, fields...)
	return nil
}

// SetCredentials записывает обновленные токены. Токен обновления
// заменяется только если сервер вернул новый.
func (s *Store) SetCredentials(ctx context.Context, creds entities.Credentials) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.setCredentials(ctx, creds)
}

// SetCredentialsIf записывает токены, только если сессия gen все еще текущая,
// иначе возвращает entities.ErrSessionChanged.
func (s *Store) SetCredentialsIf(ctx context.Context, gen uint64, creds entities.Credentials) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if gen != s.generation {
		return entities.ErrSessionChanged
	}
	return s.setCredentials(ctx, creds)
}

func (s *Store) setCredentials(ctx context.Context, creds entities.Credentials) error {
	if s.backend == nil {
		return nil
	}
	log := logger.Log(ctx).With(zap.String("method", LogMethodSetCredentials))

	values := map[string]string{entities.KeyAccessToken: creds.AccessToken}
	if creds.RefreshToken != "" {
		values[entities.KeyRefreshToken] = creds.RefreshToken
	}

	if err := s.backend.SetMany(ctx, values); err != nil {
		log.Error(ctx, ErrorFailedToWrite, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToWrite, err)
	}

	log.Debug(ctx, LogTokensUpdated, zap.Bool("refresh_rotated", creds.RefreshToken != ""))
	return nil
}

// Clear удаляет токены и профиль одной операцией и завершает сессию.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	err := s.clearLocked(ctx)
	s.writeMu.Unlock()

	s.notifyEnd(ctx)
	return err
}

// ClearIf завершает сессию, только если gen все еще текущая.
// Возвращает false, если сессия уже сменилась.
func (s *Store) ClearIf(ctx context.Context, gen uint64) (bool, error) {
	s.writeMu.Lock()
	if gen != s.generation {
		s.writeMu.Unlock()
		return false, nil
	}
	err := s.clearLocked(ctx)
	s.writeMu.Unlock()

	s.notifyEnd(ctx)
	return true, err
}

func (s *Store) clearLocked(ctx context.Context) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodClear))

	s.generation++
	var err error
	if s.backend != nil {
		if err = s.backend.Delete(ctx, entities.SessionKeys...); err != nil {
			log.Error(ctx, ErrorFailedToClear, zap.Error(err))
			err = fmt.Errorf("%s: %w", ErrorFailedToClear, err)
		}
	}

	log.Info(ctx, LogSessionCleared)
	return err
}

func (s *Store) notifyEnd(ctx context.Context) {
	s.mu.RLock()
	listeners := append([]EndListener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(ctx)
	}
}

func (s *Store) nonEmpty(ctx context.Context, key string) (string, bool) {
	raw, ok := s.raw(ctx, key)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

func (s *Store) raw(ctx context.Context, key string) (string, bool) {
	if s.backend == nil {
		return "", false
	}

	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Log(ctx).Warn(ctx, LogStorageReadError,
				zap.String("method", LogMethodGet), zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return raw, true
}

func encode(value any) (string, error) {
	if str, ok := value.(string); ok {
		return str, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
