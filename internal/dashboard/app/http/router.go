// Package http содержит компоненты для HTTP сервера.
package http

import (
	"github.com/gofiber/fiber/v3"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/app/http/auth"
	"admindash/internal/dashboard/app/http/middleware"
	"admindash/internal/dashboard/app/http/records"
	"admindash/internal/dashboard/ports/services"
)

// Services объединяет сервисы, обслуживаемые HTTP сервером.
type Services struct {
	Auth      services.AuthService
	Users     services.UserService
	Customers services.CustomerService
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, svc Services) {
	authHandler := auth.NewHandler(svc.Auth)
	recordsHandler := records.NewHandler(svc.Users, svc.Customers)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())

	apiV1 := app.Group("/api/v1")

	// Auth routes (публичные).
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/logout", authHandler.Logout)
	authRoutes.Get("/session", authHandler.Session)

	// Защищенные маршруты.
	session := middleware.NewSessionMiddleware(svc.Auth)

	userRoutes := apiV1.Group("/users", session)
	userRoutes.Get("/", recordsHandler.ListUsers)
	userRoutes.Post("/", recordsHandler.AddUser)
	userRoutes.Post("/bulk", recordsHandler.AddUsers)

	customerRoutes := apiV1.Group("/customers", session)
	customerRoutes.Get("/", recordsHandler.ListCustomers)
	customerRoutes.Post("/", recordsHandler.AddCustomer)
	customerRoutes.Post("/bulk", recordsHandler.AddCustomers)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: "Route not found",
		})
	})
}
