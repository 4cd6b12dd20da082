package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/dashboard/adapters/http/backend"
	"admindash/internal/dashboard/adapters/http/backend/backendtest"
	"admindash/internal/dashboard/config"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/resilience"
	"admindash/pkg/logger"
)

func testConfig(baseURL string) config.BackendConfig {
	return config.BackendConfig{
		BaseURL:          baseURL,
		RequestTimeout:   2 * time.Second,
		LoginPath:        "/login",
		RegisterPath:     "/register",
		RefreshPath:      "/refresh-token",
		BreakerThreshold: 3,
		BreakerTimeout:   time.Minute,
		LoginAttempts:    3,
	}
}

func fastRetry() backend.Option {
	return backend.WithRetryConfig(resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1,
	})
}

func TestClient_Login(t *testing.T) {
	ctx := context.Background()
	srv := backendtest.NewServer(t)
	id := srv.AddAccount("a@b.com", "x")
	client := backend.NewClient(testConfig(srv.URL))

	t.Run("success", func(t *testing.T) {
		result, err := client.Login(ctx, "a@b.com", "x")
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "a@b.com", result.Email)
		assert.Equal(t, id, result.DBID)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		result, err := client.Login(ctx, "a@b.com", "wrong")
		assert.Nil(t, result)

		var reqErr *entities.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
		assert.Equal(t, "Invalid credentials", err.Error())
	})

	assert.Equal(t, resilience.StateClosed, client.State())
}

func TestClient_Register(t *testing.T) {
	ctx := context.Background()
	srv := backendtest.NewServer(t)
	client := backend.NewClient(testConfig(srv.URL))

	require.NoError(t, client.Register(ctx, "new@b.com", "newbie", "pw"))

	err := client.Register(ctx, "new@b.com", "newbie", "pw")
	var reqErr *entities.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.Equal(t, "User already exists", err.Error())
}

func TestClient_RefreshToken(t *testing.T) {
	ctx := context.Background()
	srv := backendtest.NewServer(t)
	srv.AddAccount("a@b.com", "x")
	client := backend.NewClient(testConfig(srv.URL))

	_, refreshToken := srv.IssueSession("a@b.com")

	creds, err := client.RefreshToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)

	srv.RotateRefresh = true
	creds, err = client.RefreshToken(ctx, refreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, creds.RefreshToken)
	assert.NotEqual(t, refreshToken, creds.RefreshToken)

	_, err = client.RefreshToken(ctx, refreshToken)
	var reqErr *entities.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, "Invalid refresh token", err.Error())
}

func TestClient_SendPropagatesHeaders(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.AddAccount("a@b.com", "x")
	access, _ := srv.IssueSession("a@b.com")
	client := backend.NewClient(testConfig(srv.URL + "/"))

	ctx := logger.ContextWithRequestID(context.Background(), "req-42")
	header := http.Header{}
	header.Set("Authorization", "Bearer "+access)

	resp, err := client.Send(ctx, http.MethodGet, "users/list", header, nil)
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.JSONEq(t, `[]`, string(resp.Body))

	headers := srv.Headers()
	require.NotEmpty(t, headers)
	assert.Equal(t, "req-42", headers[len(headers)-1].Get(backend.RequestIDHeader))
}

func TestClient_SendReturnsErrorStatuses(t *testing.T) {
	srv := backendtest.NewServer(t)
	client := backend.NewClient(testConfig(srv.URL))

	resp, err := client.Send(context.Background(), http.MethodGet, "/users/list", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.False(t, resp.OK())
}

func TestClient_RetriesOnlyTransportFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
				}
			}
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"t1","refreshToken":"r1","email":"a@b.com","db_id":"1"}`))
	}))
	t.Cleanup(srv.Close)

	client := backend.NewClient(testConfig(srv.URL), fastRetry())

	t.Run("login is retried", func(t *testing.T) {
		result, err := client.Login(context.Background(), "a@b.com", "x")
		require.NoError(t, err)
		assert.Equal(t, "t1", result.AccessToken)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("refresh is not retried", func(t *testing.T) {
		calls.Store(0)
		_, err := client.RefreshToken(context.Background(), "r1")

		var reqErr *entities.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 0, reqErr.Status)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestClient_ServerErrorsNotRetried(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.AddAccount("a@b.com", "x")
	srv.FailNext(http.StatusServiceUnavailable)
	client := backend.NewClient(testConfig(srv.URL), fastRetry())

	_, err := client.Login(context.Background(), "a@b.com", "x")

	var reqErr *entities.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.Status)
	assert.Equal(t, "Service Unavailable", err.Error())
	assert.Len(t, srv.Headers(), 1)
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	srv := backendtest.NewServer(t)
	srv.FailNext(http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway)
	client := backend.NewClient(testConfig(srv.URL))

	for i := 0; i < 3; i++ {
		resp, err := client.Send(context.Background(), http.MethodGet, "/users/list", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.Status)
	}
	assert.Equal(t, resilience.StateOpen, client.State())

	_, err := client.Send(context.Background(), http.MethodGet, "/users/list", nil, nil)
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	require.ErrorIs(t, err, entities.ErrRequestFailed)
}
