package redact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"admindash/pkg/redact"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"foobar@example.com", "fo***@example.com"},
		{"ab@ex.com", "***@ex.com"},
		{"user@", "us***@"},
		{"no-at", "***"},
		{"a@b@c", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, redact.Email(tt.in))
		})
	}
}

func TestToken(t *testing.T) {
	assert.Equal(t, "", redact.Token(""))
	assert.Equal(t, "[REDACTED_TOKEN]", redact.Token("eyJhbGciOi.x.y"))
	assert.Equal(t, "[REDACTED_PASSWORD]", redact.Password())
}
