// Package records содержит HTTP обработчики пользователей и клиентов.
package records

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/app/http/middleware"
	"admindash/internal/dashboard/app/http/response"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogHandlerListUsers       = "records handler: list users"
	LogHandlerAddUser         = "records handler: add user"
	LogHandlerAddUsers        = "records handler: add users in bulk"
	LogHandlerListCustomers   = "records handler: list customers"
	LogHandlerAddCustomer     = "records handler: add customer"
	LogHandlerAddCustomerBulk = "records handler: add customers in bulk"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// Handler содержит HTTP обработчики записей.
type Handler struct {
	users     services.UserService
	customers services.CustomerService
}

// NewHandler создает обработчик записей.
func NewHandler(users services.UserService, customers services.CustomerService) *Handler {
	return &Handler{users: users, customers: customers}
}

// ListUsers возвращает всех пользователей.
func (h *Handler) ListUsers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerListUsers)

	users, err := h.users.List(requestCtx)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(users)
}

// AddUser создает пользователя.
func (h *Handler) AddUser(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAddUser)

	var user entities.User
	if err := ctx.Bind().JSON(&user); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	out, err := h.users.Add(requestCtx, user)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return created(ctx, out)
}

// AddUsers создает пользователей одним запросом.
func (h *Handler) AddUsers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAddUsers)

	var req dto.UsersBulkRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	out, err := h.users.AddBulk(requestCtx, req.Users)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return created(ctx, out)
}

// ListCustomers возвращает всех клиентов.
func (h *Handler) ListCustomers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerListCustomers)

	customers, err := h.customers.List(requestCtx)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(customers)
}

// AddCustomer создает клиента.
func (h *Handler) AddCustomer(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAddCustomer)

	var customer entities.Customer
	if err := ctx.Bind().JSON(&customer); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	out, err := h.customers.Add(requestCtx, customer)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return created(ctx, out)
}

// AddCustomers создает клиентов одним запросом.
func (h *Handler) AddCustomers(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Info(requestCtx, LogHandlerAddCustomerBulk)

	var req dto.CustomersBulkRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Warn(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: ErrorInvalidRequest})
	}

	out, err := h.customers.AddBulk(requestCtx, req.Customers)
	if err != nil {
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return response.Error(ctx, err)
	}
	return created(ctx, out)
}

// created передает ответ API без изменений.
func created(ctx fiber.Ctx, out json.RawMessage) error {
	if len(out) == 0 {
		return ctx.Status(fiber.StatusCreated).Send(nil)
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Status(fiber.StatusCreated).Send(out)
}
