package middleware

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"admindash/internal/dashboard/app/http/response"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogSessionMiddleware = "session middleware"
	LogNoActiveSession   = "no active session"
)

// NewSessionMiddleware пропускает запрос только при активной сессии.
func NewSessionMiddleware(authService services.AuthService) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "session"))
		log.Debug(requestCtx, LogSessionMiddleware)

		if _, err := authService.Current(requestCtx); err != nil {
			log.Debug(requestCtx, LogNoActiveSession, zap.Error(err))
			return response.Error(ctx, err)
		}
		return ctx.Next()
	}
}
