// Package backend содержит HTTP клиент удаленного REST API панели.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"admindash/internal/dashboard/config"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/backend"
	"admindash/internal/dashboard/resilience"
	"admindash/pkg/logger"
	"admindash/pkg/redact"
)

// Константы для логирования.
const (
	LogMethodSend     = "send"
	LogMethodLogin    = "login"
	LogMethodRegister = "register"
	LogMethodRefresh  = "refresh_token"

	LogRequestSent   = "backend request completed"
	LogLoginOK       = "login succeeded"
	LogRegisterOK    = "registration succeeded"
	LogRefreshDenied = "refresh token exchange denied"

	ErrorFailedToBuild  = "failed to build backend request"
	ErrorFailedToSend   = "failed to send backend request"
	ErrorFailedToRead   = "failed to read backend response"
	ErrorFailedToEncode = "failed to encode backend request"
	ErrorFailedToDecode = "failed to decode backend response"
	ErrorMissingTokens  = "backend response has no tokens"
)

// RequestIDHeader передает идентификатор запроса в API.
const RequestIDHeader = "X-Request-ID"

const maxResponseBodyBytes = 4 << 20

// errServerStatus отмечает ответ 5xx для Circuit Breaker; наружу не возвращается.
var errServerStatus = errors.New("backend server error")

// Client реализует backend.Transport и backend.AuthClient поверх net/http.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cfg        config.BackendConfig
	resilience *resilience.ServiceResilience
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет HTTP клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryConfig подменяет настройки повторов входа и регистрации.
func WithRetryConfig(rc resilience.RetryConfig) Option {
	return func(c *Client) {
		c.resilience = newResilience(c.cfg, rc)
	}
}

// NewClient создает клиент API.
func NewClient(cfg config.BackendConfig, opts ...Option) *Client {
	retry := resilience.DefaultRetryConfig()
	if cfg.LoginAttempts > 0 {
		retry.MaxAttempts = cfg.LoginAttempts
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		resilience: newResilience(cfg, retry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newResilience(cfg config.BackendConfig, retry resilience.RetryConfig) *resilience.ServiceResilience {
	breaker := resilience.DefaultCircuitBreakerConfig()
	if cfg.BreakerThreshold > 0 {
		breaker.ErrorThreshold = cfg.BreakerThreshold
	}
	if cfg.BreakerTimeout > 0 {
		breaker.Timeout = cfg.BreakerTimeout
	}
	retry.ShouldRetry = isTransportFailure
	return resilience.NewServiceResilience("backend", breaker, retry)
}

// isTransportFailure разрешает повтор только при сетевой ошибке.
func isTransportFailure(err error) bool {
	if errors.Is(err, resilience.ErrCircuitOpen) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, errServerStatus) {
		return false
	}
	var reqErr *entities.RequestError
	return errors.As(err, &reqErr) && reqErr.Status == 0
}

var (
	_ backend.Transport  = (*Client)(nil)
	_ backend.AuthClient = (*Client)(nil)
)

// Send выполняет один запрос без повторов.
func (c *Client) Send(ctx context.Context, method, endpoint string, header http.Header, body []byte) (*backend.Response, error) {
	return c.send(ctx, method, endpoint, header, body, false)
}

func (c *Client) send(
	ctx context.Context,
	method, endpoint string,
	header http.Header,
	body []byte,
	retry bool,
) (*backend.Response, error) {
	log := logger.Log(ctx).With(
		zap.String("method", LogMethodSend),
		zap.String("http_method", method),
		zap.String("endpoint", endpoint))

	var resp *backend.Response
	operation := func() error {
		var err error
		resp, err = c.roundTrip(ctx, method, endpoint, header, body)
		if err != nil {
			return err
		}
		if resp.Status >= http.StatusInternalServerError {
			return errServerStatus
		}
		return nil
	}

	var err error
	if retry {
		err = c.resilience.ExecuteWithRetry(ctx, method+" "+endpoint, operation)
	} else {
		err = c.resilience.Execute(ctx, method+" "+endpoint, operation)
	}
	if errors.Is(err, errServerStatus) {
		err = nil
	}
	if err != nil {
		var reqErr *entities.RequestError
		if !errors.As(err, &reqErr) {
			err = &entities.RequestError{Err: err}
		}
		log.Warn(ctx, ErrorFailedToSend, zap.Error(err))
		return nil, err
	}

	log.Debug(ctx, LogRequestSent, zap.Int("status", resp.Status))
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, header http.Header, body []byte) (*backend.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(endpoint), reader)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedToBuild, err)
	}
	for k, values := range header {
		req.Header[k] = append([]string(nil), values...)
	}
	if id, ok := logger.RequestIDFrom(ctx); ok && req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, id)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &entities.RequestError{Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, &entities.RequestError{Err: fmt.Errorf("%s: %w", ErrorFailedToRead, err)}
	}

	return &backend.Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}, nil
}

// url склеивает базовый адрес и путь ровно через один слэш.
func (c *Client) url(endpoint string) string {
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// Login выполняет POST /login.
func (c *Client) Login(ctx context.Context, email, password string) (*backend.AuthResult, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodLogin), zap.String("email", redact.Email(email)))

	var result backend.AuthResult
	err := c.postJSON(ctx, c.cfg.LoginPath, map[string]string{
		"email":    email,
		"password": password,
	}, &result, true)
	if err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		return nil, &entities.RequestError{Status: http.StatusOK, Message: ErrorMissingTokens}
	}

	log.Info(ctx, LogLoginOK)
	return &result, nil
}

// Register выполняет POST /register.
func (c *Client) Register(ctx context.Context, email, username, password string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRegister), zap.String("email", redact.Email(email)))

	err := c.postJSON(ctx, c.cfg.RegisterPath, map[string]string{
		"email":    email,
		"username": username,
		"password": password,
	}, nil, true)
	if err != nil {
		return err
	}

	log.Info(ctx, LogRegisterOK)
	return nil
}

// RefreshToken выполняет POST /refresh-token. Повторов нет: отказ окончательный.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*entities.Credentials, error) {
	log := logger.Log(ctx).With(zap.String("method", LogMethodRefresh))

	var creds entities.Credentials
	err := c.postJSON(ctx, c.cfg.RefreshPath, map[string]string{
		"refreshToken": refreshToken,
	}, &creds, false)
	if err != nil {
		log.Warn(ctx, LogRefreshDenied, zap.Error(err))
		return nil, err
	}
	return &creds, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any, retry bool) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToEncode, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := c.send(ctx, http.MethodPost, endpoint, header, body, retry)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return entities.NewRequestError(resp.Status, resp.Body)
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &entities.RequestError{Status: resp.Status, Err: fmt.Errorf("%s: %w", ErrorFailedToDecode, err)}
	}
	return nil
}

// State возвращает состояние Circuit Breaker клиента.
func (c *Client) State() resilience.CircuitState {
	return c.resilience.State()
}
