package middleware

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/pkg/logger"
)

// Константы восстановления после паники.
const (
	LogHandlerPanicked = "handler panicked, responding with 500"
	LogPanicResponse   = "failed to write response after handler panic"

	ErrorInternal = "Internal Server Error"
)

// ErrHandlerPanic оборачивает значение паники обработчика.
var ErrHandlerPanic = errors.New("handler panic")

// NewRecoveryMiddleware превращает панику обработчика в ответ 500. Текст паники
// остается только в логе, клиент получает общее сообщение.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			requestCtx := RequestContext(ctx)
			log := logger.Log(requestCtx).With(
				zap.String("method", ctx.Method()),
				zap.String("path", ctx.Path()),
			)
			log.Error(requestCtx, LogHandlerPanicked,
				zap.Error(panicError(r)),
				zap.ByteString("stack", debug.Stack()))

			err = ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: ErrorInternal})
			if err != nil {
				log.Error(requestCtx, LogPanicResponse, zap.Error(err))
			}
		}()

		return ctx.Next()
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrHandlerPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrHandlerPanic, r)
}
