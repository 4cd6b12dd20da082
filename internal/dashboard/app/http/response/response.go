// Package response отображает ошибки сервисов в HTTP ответы.
package response

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/resilience"
)

// Status возвращает HTTP статус для ошибки сервиса.
func Status(err error) int {
	var reqErr *entities.RequestError
	switch {
	case errors.Is(err, entities.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, resilience.ErrCircuitOpen):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, entities.ErrUnauthorized), entities.IsTerminal(err):
		return fiber.StatusUnauthorized
	case errors.As(err, &reqErr):
		if reqErr.Status < fiber.StatusBadRequest {
			return fiber.StatusBadGateway
		}
		return reqErr.Status
	case errors.Is(err, entities.ErrLoginFailed):
		return fiber.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// Message возвращает текст ошибки для клиента. Сообщение сервера
// передается без изменений.
func Message(err error) string {
	var reqErr *entities.RequestError
	if errors.As(err, &reqErr) && reqErr.Status >= fiber.StatusBadRequest {
		return reqErr.Error()
	}
	return err.Error()
}

// Error отправляет ответ с ошибкой.
func Error(ctx fiber.Ctx, err error) error {
	return ctx.Status(Status(err)).JSON(dto.ErrorResponse{Error: Message(err)})
}
