package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogRetryScheduled = "backend call failed, retrying"
	LogRetryRecovered = "backend call succeeded after retry"
	LogRetryExhausted = "backend call failed, attempts exhausted"
)

// ErrContextCanceled возвращается, если ctx отменен во время паузы между попытками.
var ErrContextCanceled = errors.New("context was canceled during retry")

// RetryConfig задает политику повторов.
type RetryConfig struct {
	// MaxAttempts учитывает и первую попытку.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// ShouldRetry отбирает ошибки, после которых попытка повторяется.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig возвращает три попытки с паузами 100ms, 200ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2,
		ShouldRetry:    retryUnlessCanceled,
	}
}

func retryUnlessCanceled(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Retry повторяет операцию с экспоненциальной паузой.
type Retry struct {
	name   string
	config RetryConfig
}

// NewRetry создает механизм повторов.
func NewRetry(name string, config RetryConfig) *Retry {
	config.MaxAttempts = max(config.MaxAttempts, 1)
	if config.ShouldRetry == nil {
		config.ShouldRetry = retryUnlessCanceled
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = 1
	}
	return &Retry{name: name, config: config}
}

// backoff возвращает паузу перед попыткой attempt+1.
func (r *Retry) backoff(attempt int) time.Duration {
	d := float64(r.config.InitialBackoff) * math.Pow(r.config.BackoffFactor, float64(attempt-1))
	if r.config.MaxBackoff > 0 && d > float64(r.config.MaxBackoff) {
		return r.config.MaxBackoff
	}
	return time.Duration(d)
}

// Execute вызывает operation, пока она не завершится успешно, ошибка не станет
// неповторяемой или не закончатся попытки. Возвращает последнюю ошибку.
func (r *Retry) Execute(ctx context.Context, operation func() error) error {
	log := logger.Log(ctx).With(zap.String("retry", r.name))

	for attempt := 1; ; attempt++ {
		err := operation()
		switch {
		case err == nil:
			if attempt > 1 {
				log.Info(ctx, LogRetryRecovered, zap.Int("attempts", attempt))
			}
			return nil
		case !r.config.ShouldRetry(err):
			return err
		case attempt >= r.config.MaxAttempts:
			log.Warn(ctx, LogRetryExhausted, zap.Int("attempts", attempt), zap.Error(err))
			return err
		}

		pause := r.backoff(attempt)
		log.Info(ctx, LogRetryScheduled,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", pause),
			zap.Error(err))

		timer := time.NewTimer(pause)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())
		}
	}
}
