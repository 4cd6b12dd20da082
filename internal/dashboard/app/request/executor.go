// Package request выполняет авторизованные запросы к API с однократным
// обновлением токена и повтором при ответе 401.
package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/backend"
	"admindash/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodExecute = "execute"

	LogNoAccessToken     = "no access token, logging out"
	LogAccessExpired     = "access token rejected, refreshing"
	LogRefreshFailed     = "session expired, logging out"
	LogRetryUnauthorized = "request unauthorized after refresh, logging out"
	LogForbidden         = "invalid session, logging out"
	LogRequestFailed     = "request failed"
	LogLogoutFailed      = "failed to clear session"

	ErrorFailedToEncode = "failed to encode request body"
	ErrorFailedToDecode = "failed to decode response body"
)

// TokenSource предоставляет текущий токен доступа.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

// Refresher обновляет токен доступа.
type Refresher interface {
	Refresh(ctx context.Context) (*entities.Credentials, error)
}

// SessionEnder завершает сессию.
type SessionEnder interface {
	Clear(ctx context.Context) error
}

// SessionStore - часть хранилища сессии, нужная исполнителю.
type SessionStore interface {
	TokenSource
	SessionEnder
}

// Request описывает один вызов API.
type Request struct {
	Method   string
	Endpoint string
	// Body кодируется в JSON; []byte и json.RawMessage передаются как есть.
	Body   any
	Header http.Header
	// Public отключает авторизацию: токен не требуется и не передается.
	Public bool
}

// Executor выполняет запросы от имени текущей сессии.
type Executor struct {
	transport backend.Transport
	store     SessionStore
	refresher Refresher
}

// NewExecutor создает исполнитель запросов.
func NewExecutor(transport backend.Transport, store SessionStore, refresher Refresher) *Executor {
	return &Executor{
		transport: transport,
		store:     store,
		refresher: refresher,
	}
}

// Do выполняет авторизованный запрос и декодирует ответ в out.
func (e *Executor) Do(ctx context.Context, method, endpoint string, body, out any) error {
	return e.Execute(ctx, Request{Method: method, Endpoint: endpoint, Body: body}, out)
}

// Execute выполняет запрос. На ответ 401 токен обновляется и запрос повторяется
// ровно один раз; повторный 401 или неудачное обновление завершают сессию с
// ErrSessionExpired. Ответ 403 завершает сессию с ErrInvalidSession.
// Прочие неуспешные ответы возвращаются как *entities.RequestError.
func (e *Executor) Execute(ctx context.Context, req Request, out any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	log := logger.Log(ctx).With(
		zap.String("method", LogMethodExecute),
		zap.String("http_method", req.Method),
		zap.String("endpoint", req.Endpoint))

	var token string
	if !req.Public {
		var ok bool
		if token, ok = e.store.AccessToken(ctx); !ok {
			log.Warn(ctx, LogNoAccessToken)
			e.logout(ctx)
			return entities.ErrUnauthorized
		}
	}

	body, err := encodeBody(req.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
	}

	resp, err := e.send(ctx, req, body, token)
	if err != nil {
		return err
	}

	if !req.Public {
		if resp.Status == http.StatusUnauthorized {
			log.Info(ctx, LogAccessExpired)

			creds, err := e.refresher.Refresh(ctx)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
					return err
				}
				log.Warn(ctx, LogRefreshFailed, zap.Error(err))
				if !entities.IsTerminal(err) {
					e.logout(ctx)
				}
				return entities.ErrSessionExpired
			}

			resp, err = e.send(ctx, req, body, creds.AccessToken)
			if err != nil {
				return err
			}
			if resp.Status == http.StatusUnauthorized {
				log.Warn(ctx, LogRetryUnauthorized)
				e.logout(ctx)
				return entities.ErrSessionExpired
			}
		}

		if resp.Status == http.StatusForbidden {
			log.Warn(ctx, LogForbidden)
			e.logout(ctx)
			return entities.ErrInvalidSession
		}
	}

	if !resp.OK() {
		reqErr := entities.NewRequestError(resp.Status, resp.Body)
		log.Warn(ctx, LogRequestFailed, zap.Int("status", resp.Status), zap.String("error", reqErr.Message))
		return reqErr
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		log.Error(ctx, ErrorFailedToDecode, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDecode, err)
	}
	return nil
}

func (e *Executor) send(ctx context.Context, req Request, body []byte, token string) (*backend.Response, error) {
	header := make(http.Header, len(req.Header)+2)
	header.Set("Content-Type", "application/json")
	for k, values := range req.Header {
		header[http.CanonicalHeaderKey(k)] = append([]string(nil), values...)
	}
	if !req.Public {
		header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.transport.Send(ctx, req.Method, req.Endpoint, header, body)
	if err != nil {
		var reqErr *entities.RequestError
		if errors.As(err, &reqErr) {
			return nil, err
		}
		return nil, &entities.RequestError{Err: err}
	}
	return resp, nil
}

func (e *Executor) logout(ctx context.Context) {
	if err := e.store.Clear(ctx); err != nil {
		logger.Log(ctx).Error(ctx, LogLogoutFailed, zap.String("method", LogMethodExecute), zap.Error(err))
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}
