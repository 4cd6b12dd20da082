package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"admindash/internal/dashboard/app"
	"admindash/internal/dashboard/config"
	"admindash/pkg/logger"
	"admindash/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "DASHBOARD_LOGGER_MODE"
	EnvLoggerLevel = "DASHBOARD_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDashboard        = "failed to initialize dashboard"
	ErrRestoreSession       = "failed to restore session"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "dashboard service started"
	LogServiceShutdownDone = "dashboard service shutdown complete"
	LogInitDashboard       = "initializing dashboard"
	LogSessionRestored     = "stored session restored"
	LogStartingHTTP        = "starting HTTP server"
	LogPublicFacade        = "HTTP facade listens beyond loopback without caller authentication"
	LogStoppingDashboard   = "stopping dashboard"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.ContextWithRequestID(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("storage_driver", cfg.Storage.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		appCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		log.Info(ctx, LogInitDashboard)
		dashboard, err := app.New(appCtx, cfg)
		if err != nil {
			log.Error(ctx, ErrInitDashboard, zap.Error(err))
			exitCode = 1
			return
		}

		if cfg.Session.RestoreOnStart {
			restored, err := dashboard.Restore(ctx)
			if err != nil {
				log.Warn(ctx, ErrRestoreSession, zap.Error(err))
			} else if restored {
				log.Info(ctx, LogSessionRestored)
			}
		}

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		if !cfg.HTTP.IsLoopback() {
			log.Warn(ctx, LogPublicFacade, zap.String("host", cfg.HTTP.Host))
		}
		go func() {
			if err := dashboard.Fiber.Listen(cfg.HTTP.GetAddress()); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
				cancel()
			}
		}()

		err = shutdown.Wait(appCtx, cfg.Shutdown.GetTimeout(),
			// Остановка HTTP сервера, планировщика и хранилища.
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingDashboard)
				return dashboard.Close(ctx)
			},
		)
		if err != nil {
			log.Error(ctx, ErrShutdown, zap.Error(err))
			exitCode = 1
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
