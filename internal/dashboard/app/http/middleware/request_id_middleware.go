// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"admindash/pkg/logger"
)

// RequestIDHeader - заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// requestContextKey - ключ Locals с контекстом запроса.
const requestContextKey = "requestContext"

// NewRequestIDMiddleware кладет в Locals контекст с идентификатором запроса.
// Идентификатор берется из заголовка или генерируется и возвращается клиенту.
func NewRequestIDMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := logger.ContextWithRequestID(ctx.Context(), ctx.Get(RequestIDHeader))
		id, _ := logger.RequestIDFrom(requestCtx)

		ctx.Set(RequestIDHeader, id)
		ctx.Locals(requestContextKey, requestCtx)
		return ctx.Next()
	}
}

// RequestContext возвращает контекст запроса с идентификатором.
func RequestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(requestContextKey).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context()
}
