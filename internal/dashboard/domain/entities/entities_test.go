package entities_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/dashboard/domain/entities"
)

func TestRequestError(t *testing.T) {
	t.Run("server message shown verbatim", func(t *testing.T) {
		err := &entities.RequestError{Status: 422, Message: "email already taken"}

		assert.Equal(t, "email already taken", err.Error())
		assert.ErrorIs(t, err, entities.ErrRequestFailed)
	})

	t.Run("transport cause is unwrapped", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := fmt.Errorf("sending: %w", &entities.RequestError{Err: cause})

		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, entities.ErrRequestFailed)

		var reqErr *entities.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 0, reqErr.Status)
		assert.Contains(t, reqErr.Error(), "connection refused")
	})

	t.Run("default message", func(t *testing.T) {
		err := &entities.RequestError{Status: 500}
		assert.Equal(t, entities.DefaultRequestErrorMessage, err.Error())
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, entities.IsTerminal(fmt.Errorf("x: %w", entities.ErrSessionExpired)))
	assert.True(t, entities.IsTerminal(entities.ErrInvalidSession))
	assert.True(t, entities.IsTerminal(entities.ErrRefreshRejected))
	assert.True(t, entities.IsTerminal(entities.ErrNoRefreshToken))
	assert.True(t, entities.IsTerminal(entities.ErrSessionChanged))
	assert.False(t, entities.IsTerminal(entities.ErrUnauthorized))
	assert.False(t, entities.IsTerminal(&entities.RequestError{Status: 500}))
}

func TestRecordValidation(t *testing.T) {
	require.NoError(t, entities.User{Username: "root", Password: "x"}.Validate())

	err := entities.User{Username: " "}.Validate()
	require.ErrorIs(t, err, entities.ErrValidation)
	assert.Contains(t, err.Error(), "user requires username, password")

	require.NoError(t, entities.Customer{Name: "n", Address: "a", Place: "p", Phone: "1"}.Validate())

	err = entities.Customer{Name: "n", Place: "p"}.Validate()
	require.ErrorIs(t, err, entities.ErrValidation)
	assert.Contains(t, err.Error(), "customer requires address, phone")
}

func TestSessionValid(t *testing.T) {
	var nilSession *entities.Session
	assert.False(t, nilSession.Valid())
	assert.False(t, (&entities.Session{AccessToken: "a"}).Valid())
	assert.True(t, (&entities.Session{AccessToken: "a", RefreshToken: "r"}).Valid())
}

func TestNewRequestError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "error field", body: `{"error":"Invalid credentials"}`, want: "Invalid credentials"},
		{name: "message field", body: `{"message":"Not found"}`, want: "Not found"},
		{name: "error preferred over message", body: `{"error":"a","message":"b"}`, want: "a"},
		{name: "json without known fields", body: `{"detail":"x"}`, want: `{"detail":"x"}`},
		{name: "plain text", body: "  Bad Gateway\n", want: "Bad Gateway"},
		{name: "empty", body: "", want: entities.DefaultRequestErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := entities.NewRequestError(400, []byte(tt.body))
			assert.Equal(t, 400, err.Status)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
