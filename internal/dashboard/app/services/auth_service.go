// Package services содержит реализации сервисов панели: авторизации,
// пользователей и клиентов.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/backend"
	"admindash/internal/dashboard/ports/services"
	"admindash/pkg/logger"
	"admindash/pkg/redact"
)

// Константы для логирования.
const (
	LogServiceRegister = "auth service: register user"
	LogServiceLogin    = "auth service: login user"
	LogServiceLogout   = "auth service: logout"
	LogServiceRestore  = "auth service: restore session"
	LogNothingToRest   = "no stored session to restore"
	LogSessionRestored = "stored session restored"

	ErrorRegisterFailed  = "failed to register user"
	ErrorAutoLoginFailed = "auto-login failed after registration"
	ErrorLoginFailed     = "failed to login"
	ErrorSaveFailed      = "failed to save session"
	ErrorLogoutFailed    = "failed to logout"
	ErrorRestoreFailed   = "failed to restore session"
	ErrorIncomplete      = "stored session has no user profile, clearing"
)

// SessionStore - часть хранилища сессии, нужная сервису авторизации.
type SessionStore interface {
	Save(ctx context.Context, sess entities.Session) error
	AccessToken(ctx context.Context) (string, bool)
	RefreshToken(ctx context.Context) (string, bool)
	User(ctx context.Context) (*entities.UserProfile, bool)
	Clear(ctx context.Context) error
	ClearAll(ctx context.Context) error
}

// Refresher обновляет токен доступа.
type Refresher interface {
	Refresh(ctx context.Context) (*entities.Credentials, error)
}

// RefreshScheduler управляет периодическим обновлением токена.
type RefreshScheduler interface {
	Start(ctx context.Context) bool
	Stop() bool
}

// ExpiryReader читает время истечения токена.
type ExpiryReader interface {
	ExpiresAt(token string) (time.Time, error)
}

// AuthServiceImpl реализует интерфейс AuthService.
type AuthServiceImpl struct {
	// appCtx живет столько же, сколько процесс; в нем работает планировщик.
	appCtx    context.Context
	client    backend.AuthClient
	store     SessionStore
	refresher Refresher
	scheduler RefreshScheduler
	expiry    ExpiryReader
}

// NewAuthService создает новый экземпляр сервиса авторизации.
func NewAuthService(
	appCtx context.Context,
	client backend.AuthClient,
	store SessionStore,
	refresher Refresher,
	scheduler RefreshScheduler,
	expiry ExpiryReader,
) services.AuthService {
	return &AuthServiceImpl{
		appCtx:    appCtx,
		client:    client,
		store:     store,
		refresher: refresher,
		scheduler: scheduler,
		expiry:    expiry,
	}
}

// Login выполняет вход и сохраняет сессию.
func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.SessionResponse, error) {
	log := logger.Log(ctx).With(zap.String("email", redact.Email(req.Email)))
	log.Info(ctx, LogServiceLogin)

	if err := requireCredentials("login", req.Email, "", req.Password, false); err != nil {
		return nil, err
	}

	result, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Error(ctx, ErrorLoginFailed, zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entities.ErrLoginFailed, err)
	}

	return s.startSession(ctx, req.Email, result)
}

// Register регистрирует пользователя и выполняет вход с теми же данными.
func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.SessionResponse, error) {
	log := logger.Log(ctx).With(zap.String("email", redact.Email(req.Email)))
	log.Info(ctx, LogServiceRegister)

	if err := requireCredentials("registration", req.Email, req.Username, req.Password, true); err != nil {
		return nil, err
	}

	if err := s.client.Register(ctx, req.Email, req.Username, req.Password); err != nil {
		log.Error(ctx, ErrorRegisterFailed, zap.Error(err))
		return nil, fmt.Errorf("%w: %w", entities.ErrRegistrationFailed, err)
	}

	result, err := s.client.Login(ctx, req.Email, req.Password)
	if err != nil {
		log.Error(ctx, ErrorAutoLoginFailed, zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", entities.ErrRegistrationFailed, ErrorAutoLoginFailed, err)
	}

	return s.startSession(ctx, req.Email, result)
}

// Logout очищает хранилище и останавливает обновление токена.
func (s *AuthServiceImpl) Logout(ctx context.Context) error {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceLogout)

	s.scheduler.Stop()
	if err := s.store.ClearAll(ctx); err != nil {
		log.Error(ctx, ErrorLogoutFailed, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorLogoutFailed, err)
	}
	return nil
}

// Restore обновляет токен сохраненной сессии и запускает планировщик.
func (s *AuthServiceImpl) Restore(ctx context.Context) (*dto.SessionResponse, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogServiceRestore)

	if _, ok := s.store.RefreshToken(ctx); !ok {
		log.Info(ctx, LogNothingToRest)
		return nil, nil
	}

	if _, err := s.refresher.Refresh(ctx); err != nil {
		log.Warn(ctx, ErrorRestoreFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorRestoreFailed, err)
	}

	current, err := s.Current(ctx)
	if err != nil {
		log.Warn(ctx, ErrorIncomplete, zap.Error(err))
		if clearErr := s.store.Clear(ctx); clearErr != nil {
			log.Error(ctx, ErrorRestoreFailed, zap.Error(clearErr))
		}
		return nil, err
	}

	s.scheduler.Start(s.appCtx)
	log.Info(ctx, LogSessionRestored, zap.String("email", redact.Email(current.Email)))
	return current, nil
}

// Current возвращает активную сессию: профиль пользователя и токен доступа.
func (s *AuthServiceImpl) Current(ctx context.Context) (*dto.SessionResponse, error) {
	access, ok := s.store.AccessToken(ctx)
	if !ok {
		return nil, entities.ErrUnauthorized
	}
	user, ok := s.store.User(ctx)
	if !ok {
		return nil, entities.ErrUnauthorized
	}
	return s.response(user, access), nil
}

func (s *AuthServiceImpl) startSession(ctx context.Context, email string, result *backend.AuthResult) (*dto.SessionResponse, error) {
	user := &entities.UserProfile{Email: result.Email, ID: result.DBID}
	if user.Email == "" {
		user.Email = email
	}

	err := s.store.Save(ctx, entities.Session{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         user,
	})
	if err != nil {
		logger.Log(ctx).Error(ctx, ErrorSaveFailed, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorSaveFailed, err)
	}

	s.scheduler.Start(s.appCtx)
	return s.response(user, result.AccessToken), nil
}

func (s *AuthServiceImpl) response(user *entities.UserProfile, access string) *dto.SessionResponse {
	resp := &dto.SessionResponse{Email: user.Email, DBID: user.ID}
	if exp, err := s.expiry.ExpiresAt(access); err == nil {
		resp.ExpiresAt = &exp
	}
	return resp
}

func requireCredentials(kind, email, username, password string, withUsername bool) error {
	var missing []string
	if strings.TrimSpace(email) == "" {
		missing = append(missing, "email")
	}
	if withUsername && strings.TrimSpace(username) == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s requires %s", entities.ErrValidation, kind, strings.Join(missing, ", "))
	}
	return nil
}
