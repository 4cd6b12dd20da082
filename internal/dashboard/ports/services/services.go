// Package services определяет интерфейсы сервисов панели.
package services

import (
	"context"
	"encoding/json"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/domain/entities"
)

// AuthService управляет сессией администратора.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error)

	// Register регистрирует пользователя и сразу выполняет вход.
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error)

	Logout(ctx context.Context) error

	// Restore восстанавливает сохраненную сессию при запуске.
	// Возвращает nil без ошибки, если сохраненной сессии нет.
	Restore(ctx context.Context) (*dto.SessionResponse, error)

	// Current возвращает активную сессию или entities.ErrUnauthorized.
	Current(ctx context.Context) (*dto.SessionResponse, error)
}

// UserService управляет пользователями через API.
type UserService interface {
	List(ctx context.Context) ([]entities.User, error)
	Add(ctx context.Context, user entities.User) (json.RawMessage, error)
	AddBulk(ctx context.Context, users []entities.User) (json.RawMessage, error)
}

// CustomerService управляет клиентами через API.
type CustomerService interface {
	List(ctx context.Context) ([]entities.Customer, error)
	Add(ctx context.Context, customer entities.Customer) (json.RawMessage, error)
	AddBulk(ctx context.Context, customers []entities.Customer) (json.RawMessage, error)
}
