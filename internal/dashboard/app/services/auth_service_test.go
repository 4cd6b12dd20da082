package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapters "admindash/internal/dashboard/adapters/storage"
	"admindash/internal/dashboard/app/dto"
	"admindash/internal/dashboard/app/services"
	"admindash/internal/dashboard/app/session"
	"admindash/internal/dashboard/app/token"
	"admindash/internal/dashboard/domain/entities"
	"admindash/internal/dashboard/ports/backend"
)

type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) Login(ctx context.Context, email, password string) (*backend.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if res, ok := args.Get(0).(*backend.AuthResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthClient) Register(ctx context.Context, email, username, password string) error {
	args := m.Called(ctx, email, username, password)
	return args.Error(0)
}

func (m *MockAuthClient) RefreshToken(ctx context.Context, refreshToken string) (*entities.Credentials, error) {
	args := m.Called(ctx, refreshToken)
	if creds, ok := args.Get(0).(*entities.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockRefresher struct {
	mock.Mock
}

func (m *MockRefresher) Refresh(ctx context.Context) (*entities.Credentials, error) {
	args := m.Called(ctx)
	if creds, ok := args.Get(0).(*entities.Credentials); ok {
		return creds, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Start(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockScheduler) Stop() bool {
	return m.Called().Bool(0)
}

type authFixture struct {
	appCtx    context.Context
	client    *MockAuthClient
	refresher *MockRefresher
	scheduler *MockScheduler
	store     *session.Store
	svc       *services.AuthServiceImpl
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	f := &authFixture{
		appCtx:    context.Background(),
		client:    new(MockAuthClient),
		refresher: new(MockRefresher),
		scheduler: new(MockScheduler),
		store:     session.NewStore(adapters.NewMemoryStorage()),
	}
	svc := services.NewAuthService(f.appCtx, f.client, f.store, f.refresher, f.scheduler, token.NewInspector())
	f.svc = svc.(*services.AuthServiceImpl)
	return f
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	access := makeToken(t, time.Now().Add(time.Hour))

	tests := []struct {
		name       string
		req        *dto.LoginRequest
		setupMocks func(f *authFixture)
		wantErr    error
		wantStored bool
	}{
		{
			name: "success",
			req:  &dto.LoginRequest{Email: "a@b.com", Password: "x"},
			setupMocks: func(f *authFixture) {
				f.client.On("Login", mock.Anything, "a@b.com", "x").Return(&backend.AuthResult{
					AccessToken: access, RefreshToken: "r1", Email: "a@b.com", DBID: "42",
				}, nil)
				f.scheduler.On("Start", f.appCtx).Return(true)
			},
			wantStored: true,
		},
		{
			name: "server omits email",
			req:  &dto.LoginRequest{Email: "a@b.com", Password: "x"},
			setupMocks: func(f *authFixture) {
				f.client.On("Login", mock.Anything, "a@b.com", "x").Return(&backend.AuthResult{
					AccessToken: access, RefreshToken: "r1", DBID: "42",
				}, nil)
				f.scheduler.On("Start", f.appCtx).Return(false)
			},
			wantStored: true,
		},
		{
			name:       "missing password",
			req:        &dto.LoginRequest{Email: "a@b.com"},
			setupMocks: func(*authFixture) {},
			wantErr:    entities.ErrValidation,
		},
		{
			name:       "missing email",
			req:        &dto.LoginRequest{Email: "  ", Password: "x"},
			setupMocks: func(*authFixture) {},
			wantErr:    entities.ErrValidation,
		},
		{
			name: "rejected credentials",
			req:  &dto.LoginRequest{Email: "a@b.com", Password: "bad"},
			setupMocks: func(f *authFixture) {
				f.client.On("Login", mock.Anything, "a@b.com", "bad").
					Return(nil, &entities.RequestError{Status: http.StatusUnauthorized, Message: "Invalid credentials"})
			},
			wantErr: entities.ErrLoginFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.setupMocks(f)

			resp, err := f.svc.Login(ctx, tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
				_, ok := f.store.Load(ctx)
				assert.False(t, ok)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a@b.com", resp.Email)
				assert.Equal(t, "42", resp.DBID)
				require.NotNil(t, resp.ExpiresAt)
				assert.WithinDuration(t, time.Now().Add(time.Hour), *resp.ExpiresAt, 2*time.Second)

				sess, ok := f.store.Load(ctx)
				require.Equal(t, tt.wantStored, ok)
				assert.Equal(t, access, sess.AccessToken)
				assert.Equal(t, "r1", sess.RefreshToken)
				assert.Equal(t, &entities.UserProfile{Email: "a@b.com", ID: "42"}, sess.User)
			}

			f.client.AssertExpectations(t)
			f.scheduler.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login_KeepsServerMessage(t *testing.T) {
	f := newAuthFixture(t)
	f.client.On("Login", mock.Anything, "a@b.com", "bad").
		Return(nil, &entities.RequestError{Status: http.StatusUnauthorized, Message: "Invalid credentials"})

	_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "a@b.com", Password: "bad"})

	var reqErr *entities.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	access := makeToken(t, time.Now().Add(time.Hour))
	req := &dto.RegisterRequest{Email: "a@b.com", Username: "alice", Password: "x"}

	tests := []struct {
		name       string
		req        *dto.RegisterRequest
		setupMocks func(f *authFixture)
		wantErr    error
	}{
		{
			name: "registers and logs in",
			req:  req,
			setupMocks: func(f *authFixture) {
				f.client.On("Register", mock.Anything, "a@b.com", "alice", "x").Return(nil)
				f.client.On("Login", mock.Anything, "a@b.com", "x").Return(&backend.AuthResult{
					AccessToken: access, RefreshToken: "r1", Email: "a@b.com", DBID: "7",
				}, nil)
				f.scheduler.On("Start", f.appCtx).Return(true)
			},
		},
		{
			name:       "missing username",
			req:        &dto.RegisterRequest{Email: "a@b.com", Password: "x"},
			setupMocks: func(*authFixture) {},
			wantErr:    entities.ErrValidation,
		},
		{
			name: "register rejected",
			req:  req,
			setupMocks: func(f *authFixture) {
				f.client.On("Register", mock.Anything, "a@b.com", "alice", "x").
					Return(&entities.RequestError{Status: http.StatusBadRequest, Message: "User already exists"})
			},
			wantErr: entities.ErrRegistrationFailed,
		},
		{
			name: "auto login fails",
			req:  req,
			setupMocks: func(f *authFixture) {
				f.client.On("Register", mock.Anything, "a@b.com", "alice", "x").Return(nil)
				f.client.On("Login", mock.Anything, "a@b.com", "x").Return(nil, errors.New("connection refused"))
			},
			wantErr: entities.ErrRegistrationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			tt.setupMocks(f)

			resp, err := f.svc.Register(ctx, tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "7", resp.DBID)
				_, ok := f.store.Load(ctx)
				assert.True(t, ok)
			}

			f.client.AssertExpectations(t)
			f.scheduler.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	require.NoError(t, f.store.Save(ctx, entities.Session{AccessToken: "a", RefreshToken: "r"}))
	require.NoError(t, f.store.Set(ctx, "theme", "dark"))
	f.scheduler.On("Stop").Return(true)

	require.NoError(t, f.svc.Logout(ctx))

	_, ok := f.store.Get(ctx, "theme")
	assert.False(t, ok)
	_, err := f.svc.Current(ctx)
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
	f.scheduler.AssertExpectations(t)
}

func TestAuthService_Restore(t *testing.T) {
	ctx := context.Background()
	access := makeToken(t, time.Now().Add(time.Hour))
	user := &entities.UserProfile{Email: "a@b.com", ID: "42"}

	t.Run("nothing stored", func(t *testing.T) {
		f := newAuthFixture(t)

		resp, err := f.svc.Restore(ctx)

		require.NoError(t, err)
		assert.Nil(t, resp)
		f.refresher.AssertNotCalled(t, "Refresh", mock.Anything)
		f.scheduler.AssertNotCalled(t, "Start", mock.Anything)
	})

	t.Run("refreshes and starts scheduler", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.store.Save(ctx, entities.Session{AccessToken: "stale", RefreshToken: "r1", User: user}))
		f.refresher.On("Refresh", mock.Anything).Run(func(mock.Arguments) {
			require.NoError(t, f.store.SetCredentials(ctx, entities.Credentials{AccessToken: access}))
		}).Return(&entities.Credentials{AccessToken: access}, nil)
		f.scheduler.On("Start", f.appCtx).Return(true)

		resp, err := f.svc.Restore(ctx)

		require.NoError(t, err)
		assert.Equal(t, "a@b.com", resp.Email)
		assert.NotNil(t, resp.ExpiresAt)
		f.refresher.AssertExpectations(t)
		f.scheduler.AssertExpectations(t)
	})

	t.Run("refresh rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.store.Save(ctx, entities.Session{AccessToken: "stale", RefreshToken: "r1", User: user}))
		f.refresher.On("Refresh", mock.Anything).Return(nil, entities.ErrRefreshRejected)

		resp, err := f.svc.Restore(ctx)

		require.ErrorIs(t, err, entities.ErrRefreshRejected)
		assert.Nil(t, resp)
		f.scheduler.AssertNotCalled(t, "Start", mock.Anything)
	})

	t.Run("stored tokens without user profile", func(t *testing.T) {
		f := newAuthFixture(t)
		require.NoError(t, f.store.Save(ctx, entities.Session{AccessToken: "stale", RefreshToken: "r1"}))
		f.refresher.On("Refresh", mock.Anything).Run(func(mock.Arguments) {
			require.NoError(t, f.store.SetCredentials(ctx, entities.Credentials{AccessToken: access}))
		}).Return(&entities.Credentials{AccessToken: access}, nil)

		resp, err := f.svc.Restore(ctx)

		require.ErrorIs(t, err, entities.ErrUnauthorized)
		assert.Nil(t, resp)
		f.scheduler.AssertNotCalled(t, "Start", mock.Anything)
		_, ok := f.store.AccessToken(ctx)
		assert.False(t, ok)
		_, ok = f.store.RefreshToken(ctx)
		assert.False(t, ok)
	})
}

func TestAuthService_Current(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.svc.Current(ctx)
	require.ErrorIs(t, err, entities.ErrUnauthorized)

	require.NoError(t, f.store.Save(ctx, entities.Session{AccessToken: "opaque", RefreshToken: "r"}))
	_, err = f.svc.Current(ctx)
	require.ErrorIs(t, err, entities.ErrUnauthorized, "session without user profile")

	require.NoError(t, f.store.Save(ctx, entities.Session{
		AccessToken: "opaque", RefreshToken: "r", User: &entities.UserProfile{Email: "a@b.com", ID: "1"},
	}))
	resp, err := f.svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.Email)
	assert.Nil(t, resp.ExpiresAt, "opaque token has no expiry")
}
