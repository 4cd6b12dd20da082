// Package scheduler периодически проверяет срок действия токена доступа
// и заранее обновляет его.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"admindash/internal/dashboard/domain/entities"
	"admindash/pkg/logger"
)

// Значения по умолчанию.
const (
	DefaultInterval = 10 * time.Minute
	DefaultSkew     = 60 * time.Second
)

// Константы для логирования.
const (
	LogMethodCheck = "check"

	LogStarted          = "token refresh scheduler started"
	LogStopped          = "token refresh scheduler stopped"
	LogNoAccessToken    = "no access token, skipping check"
	LogTokenValid       = "access token still valid"
	LogProactiveRefresh = "access token about to expire, refreshing"
	LogRefreshFailed    = "scheduled token refresh failed"
)

// TokenSource предоставляет текущий токен доступа.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// ExpiryChecker определяет, истекает ли токен в пределах запаса.
type ExpiryChecker interface {
	IsExpiredWithin(token string, skew time.Duration) bool
}

// Refresher обновляет токен доступа.
type Refresher interface {
	Refresh(ctx context.Context) (*entities.Credentials, error)
}

// Scheduler запускает проверку токена с фиксированным интервалом.
// Одновременно работает не больше одного цикла.
type Scheduler struct {
	tokens    TokenSource
	checker   ExpiryChecker
	refresher Refresher
	interval  time.Duration
	skew      time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option настраивает Scheduler.
type Option func(*Scheduler)

// WithInterval задает период проверки.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSkew задает запас до истечения токена.
func WithSkew(d time.Duration) Option {
	return func(s *Scheduler) { s.skew = d }
}

// New создает остановленный планировщик.
func New(tokens TokenSource, checker ExpiryChecker, refresher Refresher, opts ...Option) *Scheduler {
	s := &Scheduler{
		tokens:    tokens,
		checker:   checker,
		refresher: refresher,
		interval:  DefaultInterval,
		skew:      DefaultSkew,
	}
	for _, opt := range opts {
		opt(s)
	}

	closed := make(chan struct{})
	close(closed)
	s.done = closed
	return s
}

// Start запускает цикл проверки. Возвращает false, если цикл уже работает.
// Цикл завершается по Stop или при отмене ctx.
func (s *Scheduler) Start(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.loop(loopCtx, done)

	logger.Log(ctx).Info(ctx, LogStarted,
		zap.Duration("interval", s.interval),
		zap.Duration("skew", s.skew))
	return true
}

// Stop останавливает цикл, не дожидаясь его завершения; для ожидания
// используйте Done. Возвращает false, если цикл не работал.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return false
	}
	s.cancel()
	s.cancel = nil
	return true
}

// Running сообщает, что цикл запущен.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Done возвращает канал, закрываемый при выходе из текущего цикла.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Check выполняет одну проверку синхронно.
func (s *Scheduler) Check(ctx context.Context) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodCheck))

	token, ok := s.tokens.AccessToken(ctx)
	if !ok {
		log.Debug(ctx, LogNoAccessToken)
		return
	}

	if !s.checker.IsExpiredWithin(token, s.skew) {
		log.Debug(ctx, LogTokenValid)
		return
	}

	log.Info(ctx, LogProactiveRefresh)
	if _, err := s.refresher.Refresh(ctx); err != nil {
		log.Warn(ctx, LogRefreshFailed, zap.Error(err))
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log(ctx).Info(ctx, LogStopped)
			s.release(done)
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// release сбрасывает состояние, если цикл завершился отменой родительского ctx.
func (s *Scheduler) release(done chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done == done && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
