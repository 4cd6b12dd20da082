// Package auth содержит HTTP обработчики сессии администратора.
package auth

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/app/http/middleware"
	"admindash/internal/dashboard/app/http/response"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerRegister = "auth handler: register"
	LogHandlerLogin    = "auth handler: login"
	LogHandlerLogout   = "auth handler: logout"
	LogHandlerSession  = "auth handler: session"

	MessageLoggedOut = "logged out"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики для авторизации.
type Handler struct {
	authService services.AuthService
}

// NewHandler создает новый экземпляр обработчика авторизации.
func NewHandler(authService services.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

// Register обрабатывает запрос на регистрацию с последующим входом.
func (h *Handler) Register(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	resp, err := h.authService.Register(requestCtx, &req)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(resp)
}

// Login обрабатывает запрос на вход.
func (h *Handler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	resp, err := h.authService.Login(requestCtx, &req)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(resp)
}

// Logout завершает сессию.
func (h *Handler) Logout(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerLogout)

	if err := h.authService.Logout(requestCtx); err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(dto.MessageResponse{Message: MessageLoggedOut})
}

// Session возвращает активную сессию.
func (h *Handler) Session(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Debug(requestCtx, LogHandlerSession)

	resp, err := h.authService.Current(requestCtx)
	if err != nil {
		return response.Error(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(resp)
}
