// Package refresh обменивает токен обновления на новые учетные данные так,
// что в процессе одновременно выполняется не больше одного обмена.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"admindash/internal/dashboard/domain/entities"
	"admindash/pkg/logger"
	"admindash/pkg/redact"
)

// Константы для логирования.
const (
	LogMethodRefresh = "refresh"

	LogRefreshStarted   = "refreshing access token"
	LogRefreshSucceeded = "access token refreshed"
	LogRefreshShared    = "joined in-flight token refresh"
	LogNoRefreshToken   = "no refresh token available, ending session"
	LogRefreshRejected  = "refresh token rejected, ending session"
	LogPersistFailed    = "failed to persist refreshed credentials"
	LogClearFailed      = "failed to clear session after refresh failure"
	LogSessionChanged   = "session changed during refresh, discarding credentials"
)

// DefaultExchangeTimeout ограничивает один обмен токена.
const DefaultExchangeTimeout = 30 * time.Second

const flightKey = "refresh"

var errEmptyAccessToken = errors.New("empty access token in refresh response")

// SessionStore - часть хранилища сессии, нужная координатору.
type SessionStore interface {
	Generation() uint64
	RefreshToken(ctx context.Context) (string, bool)
	SetCredentialsIf(ctx context.Context, gen uint64, creds entities.Credentials) error
	ClearIf(ctx context.Context, gen uint64) (bool, error)
}

// Exchanger выполняет запрос POST /refresh-token.
type Exchanger interface {
	RefreshToken(ctx context.Context, refreshToken string) (*entities.Credentials, error)
}

// Coordinator объединяет параллельные запросы на обновление в один обмен.
type Coordinator struct {
	store     SessionStore
	exchanger Exchanger
	timeout   time.Duration
	group     singleflight.Group
}

// Option настраивает Coordinator.
type Option func(*Coordinator)

// WithExchangeTimeout задает предельное время одного обмена.
func WithExchangeTimeout(d time.Duration) Option {
	return func(c *Coordinator) { c.timeout = d }
}

// NewCoordinator создает координатор обновления.
func NewCoordinator(store SessionStore, exchanger Exchanger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:     store,
		exchanger: exchanger,
		timeout:   DefaultExchangeTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh получает новый токен доступа. Если обмен уже выполняется,
// вызывающий ждет его результата вместо нового запроса.
//
// Отсутствие токена обновления возвращает ErrNoRefreshToken, отказ сервера или
// сетевая ошибка - ErrRefreshRejected; в обоих случаях сессия очищается.
// Если за время обмена сессия была завершена или заменена новым входом,
// полученные токены отбрасываются и возвращается ErrSessionChanged.
// Отмена ctx прекращает ожидание, но не сам обмен.
func (c *Coordinator) Refresh(ctx context.Context) (*entities.Credentials, error) {
	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.exchange(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Log(ctx).Debug(ctx, LogRefreshShared, zap.String("method", LogMethodRefresh))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		creds := *res.Val.(*entities.Credentials)
		return &creds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) exchange(ctx context.Context) (*entities.Credentials, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRefresh))

	gen := c.store.Generation()
	refreshToken, ok := c.store.RefreshToken(ctx)
	if !ok {
		log.Warn(ctx, LogNoRefreshToken)
		c.endSession(ctx, gen)
		return nil, entities.ErrNoRefreshToken
	}

	log.Info(ctx, LogRefreshStarted, zap.String("refresh_token", redact.Token(refreshToken)))

	exchangeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	creds, err := c.exchanger.RefreshToken(exchangeCtx, refreshToken)
	if err == nil && (creds == nil || creds.AccessToken == "") {
		err = errEmptyAccessToken
	}
	if err != nil {
		log.Warn(ctx, LogRefreshRejected, zap.Error(err))
		c.endSession(ctx, gen)
		return nil, fmt.Errorf("%w: %w", entities.ErrRefreshRejected, err)
	}

	if err := c.store.SetCredentialsIf(ctx, gen, *creds); err != nil {
		if errors.Is(err, entities.ErrSessionChanged) {
			log.Info(ctx, LogSessionChanged)
			return nil, err
		}
		log.Error(ctx, LogPersistFailed, zap.Error(err))
	}

	log.Info(ctx, LogRefreshSucceeded,
		zap.String("access_token", redact.Token(creds.AccessToken)),
		zap.Bool("refresh_rotated", creds.RefreshToken != ""))
	return creds, nil
}

func (c *Coordinator) endSession(ctx context.Context, gen uint64) {
	if _, err := c.store.ClearIf(ctx, gen); err != nil {
		logger.Log(ctx).Error(ctx, LogClearFailed, zap.String("method", LogMethodRefresh), zap.Error(err))
	}
}
