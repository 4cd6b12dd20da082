// Package app собирает ядро сессии, сервисы и HTTP фасад панели.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	httpbackend "admindash/internal/dashboard/adapters/http/backend"
	adapters "admindash/internal/dashboard/adapters/storage"
	httpserver "admindash/internal/dashboard/app/http"
	"admindash/internal/dashboard/app/refresh"
	"admindash/internal/dashboard/app/request"
	"admindash/internal/dashboard/app/scheduler"
	"admindash/internal/dashboard/app/services"
	"admindash/internal/dashboard/app/session"
	"admindash/internal/dashboard/app/token"
	"admindash/internal/dashboard/config"
	"admindash/internal/dashboard/domain/entities"
	portservices "admindash/internal/dashboard/ports/services"
	"admindash/internal/dashboard/ports/storage"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogRestoringSession = "restoring stored session"
	LogSessionEnded     = "session ended, stopping refresh scheduler"

	ErrorRestoreSkipped = "stored session could not be restored"
)

// Dashboard содержит собранные компоненты панели.
type Dashboard struct {
	Fiber     *fiber.App
	Store     *session.Store
	Scheduler *scheduler.Scheduler
	Backend   *httpbackend.Client
	Auth      portservices.AuthService
	Users     portservices.UserService
	Customers portservices.CustomerService

	storage storage.Backend
}

// Option настраивает сборку.
type Option func(*options)

type options struct {
	storage storage.Backend
	client  []httpbackend.Option
}

// WithStorage подменяет хранилище, выбранное по конфигурации.
func WithStorage(backend storage.Backend) Option {
	return func(o *options) { o.storage = backend }
}

// WithClientOptions передает опции HTTP клиенту API.
func WithClientOptions(opts ...httpbackend.Option) Option {
	return func(o *options) { o.client = append(o.client, opts...) }
}

// New собирает панель. appCtx определяет время жизни планировщика обновления.
func New(appCtx context.Context, cfg *config.Config, opts ...Option) (*Dashboard, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend := o.storage
	if backend == nil {
		var err error
		if backend, err = adapters.Open(appCtx, cfg); err != nil {
			return nil, err
		}
	}

	client := httpbackend.NewClient(cfg.Backend, o.client...)
	store := session.NewStore(backend)
	inspector := token.NewInspector(token.WithSkew(cfg.Session.ExpirySkew))
	coordinator := refresh.NewCoordinator(store, client)
	sched := scheduler.New(store, inspector, coordinator,
		scheduler.WithInterval(cfg.Session.RefreshInterval),
		scheduler.WithSkew(cfg.Session.ExpirySkew))

	store.OnEnd(func(ctx context.Context) {
		logger.Log(ctx).Debug(ctx, LogSessionEnded)
		sched.Stop()
	})

	executor := request.NewExecutor(client, store, coordinator)

	d := &Dashboard{
		Store:     store,
		Scheduler: sched,
		Backend:   client,
		Auth:      services.NewAuthService(appCtx, client, store, coordinator, sched, inspector),
		Users:     services.NewUserService(executor),
		Customers: services.NewCustomerService(executor),
		storage:   backend,
	}

	d.Fiber = fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	})
	httpserver.SetupRouter(d.Fiber, httpserver.Services{Auth: d.Auth, Users: d.Users, Customers: d.Customers})

	return d, nil
}

// Restore восстанавливает сохраненную сессию. Отклоненный токен обновления
// не считается ошибкой запуска: сессия очищается, и требуется новый вход.
func (d *Dashboard) Restore(ctx context.Context) (bool, error) {
	log := logger.Log(ctx)
	log.Info(ctx, LogRestoringSession)

	resp, err := d.Auth.Restore(ctx)
	switch {
	case err == nil:
		return resp != nil, nil
	case entities.IsTerminal(err):
		log.Warn(ctx, ErrorRestoreSkipped, zap.Error(err))
		return false, nil
	default:
		return false, err
	}
}

// Close останавливает планировщик и закрывает хранилище.
func (d *Dashboard) Close(ctx context.Context) error {
	d.Scheduler.Stop()

	var errs []error
	if err := d.Fiber.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
	}
	if err := d.storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing storage: %w", err))
	}
	return errors.Join(errs...)
}
