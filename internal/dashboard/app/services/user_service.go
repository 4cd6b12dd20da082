package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
)

// Пути API пользователей.
const (
	UsersListPath   = "/users/list"
	UsersSinglePath = "/users/single"
	UsersBulkPath   = "/users/bulk"
)

// Константы для логирования.
const (
	LogServiceListUsers   = "user service: list users"
	LogServiceAddUser     = "user service: add user"
	LogServiceAddUserBulk = "user service: add users in bulk"

	ErrorListUsersFailed = "failed to list users"
	ErrorAddUserFailed   = "failed to add user"
	ErrorAddUsersFailed  = "failed to add users"
)

// Requester выполняет авторизованный запрос к API.
type Requester interface {
	Do(ctx context.Context, method, endpoint string, body, out any) error
}

// UserServiceImpl реализует интерфейс UserService.
type UserServiceImpl struct {
	api Requester
}

// NewUserService создает сервис пользователей.
func NewUserService(api Requester) services.UserService {
	return &UserServiceImpl{api: api}
}

// List возвращает всех пользователей.
func (s *UserServiceImpl) List(ctx context.Context) ([]entities.User, error) {
	log := logger.Log(ctx)
	log.Debug(ctx, LogServiceListUsers)

	users := []entities.User{}
	if err := s.api.Do(ctx, http.MethodGet, UsersListPath, nil, &users); err != nil {
		log.Error(ctx, ErrorListUsersFailed, zap.Error(err))
		return nil, err
	}
	return users, nil
}

// Add создает одного пользователя и возвращает ответ сервера как есть.
func (s *UserServiceImpl) Add(ctx context.Context, user entities.User) (json.RawMessage, error) {
	log := logger.Log(ctx).With(zap.String("username", user.Username))
	log.Info(ctx, LogServiceAddUser)

	if err := user.Validate(); err != nil {
		return nil, err
	}

	var out json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, UsersSinglePath, user, &out); err != nil {
		log.Error(ctx, ErrorAddUserFailed, zap.Error(err))
		return nil, err
	}
	return out, nil
}

// AddBulk создает пользователей одним запросом.
func (s *UserServiceImpl) AddBulk(ctx context.Context, users []entities.User) (json.RawMessage, error) {
	log := logger.Log(ctx).With(zap.Int("count", len(users)))
	log.Info(ctx, LogServiceAddUserBulk)

	if len(users) == 0 {
		return nil, fmt.Errorf("%w: users list is empty", entities.ErrValidation)
	}
	for i, user := range users {
		if err := user.Validate(); err != nil {
			return nil, fmt.Errorf("users[%d]: %w", i, err)
		}
	}

	var out json.RawMessage
	if err := s.api.Do(ctx, http.MethodPost, UsersBulkPath, dto.UsersBulkRequest{Users: users}, &out); err != nil {
		log.Error(ctx, ErrorAddUsersFailed, zap.Error(err))
		return nil, err
	}
	return out, nil
}
