package token_test

import (
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admindash/internal/dashboard/app/token"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-key"))
	require.NoError(t, err)
	return s
}

func raw(header, payload string) string {
	enc := base64.RawURLEncoding
	return enc.EncodeToString([]byte(header)) + "." + enc.EncodeToString([]byte(payload)) + ".sig"
}

func TestInspector_IsExpired(t *testing.T) {
	inspector := token.NewInspector(token.WithNow(func() time.Time { return now }))

	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name:  "valid for an hour",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}) },
			want:  false,
		},
		{
			name:  "just outside the skew",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(61 * time.Second).Unix()}) },
			want:  false,
		},
		{
			name:  "exactly at the skew boundary",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(60 * time.Second).Unix()}) },
			want:  true,
		},
		{
			name:  "inside the skew",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(30 * time.Second).Unix()}) },
			want:  true,
		},
		{
			name:  "already expired",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()}) },
			want:  true,
		},
		{
			name:  "empty",
			token: func(*testing.T) string { return "" },
			want:  true,
		},
		{
			name:  "not a jwt",
			token: func(*testing.T) string { return "not-a-token" },
			want:  true,
		},
		{
			name:  "payload is not base64",
			token: func(*testing.T) string { return "eyJhbGciOiJIUzI1NiJ9.%%%.sig" },
			want:  true,
		},
		{
			name:  "payload is not json",
			token: func(*testing.T) string { return raw(`{"alg":"HS256"}`, "plain text") },
			want:  true,
		},
		{
			name:  "missing exp",
			token: func(t *testing.T) string { return signed(t, jwt.MapClaims{"sub": "1"}) },
			want:  true,
		},
		{
			name:  "non numeric exp",
			token: func(*testing.T) string { return raw(`{"alg":"HS256"}`, `{"exp":"tomorrow"}`) },
			want:  true,
		},
		{
			name: "unknown algorithm is still readable",
			token: func(*testing.T) string {
				return raw(`{"alg":"custom"}`, `{"exp":`+strconv.FormatInt(now.Add(time.Hour).Unix(), 10)+`}`)
			},
			want: false,
		},
		{
			name: "opaque header is ignored",
			token: func(*testing.T) string {
				payload := base64.RawURLEncoding.EncodeToString(
					[]byte(`{"exp":` + strconv.FormatInt(now.Add(time.Hour).Unix(), 10) + `}`))
				return "opaque-header." + payload + ".sig"
			},
			want: false,
		},
		{
			name: "padded payload",
			token: func(*testing.T) string {
				payload := base64.URLEncoding.EncodeToString(
					[]byte(`{"exp":` + strconv.FormatInt(now.Add(time.Hour).Unix(), 10) + `}`))
				return "e30." + payload + ".sig"
			},
			want: false,
		},
		{
			name: "opaque header with past exp",
			token: func(*testing.T) string {
				payload := base64.RawURLEncoding.EncodeToString(
					[]byte(`{"exp":` + strconv.FormatInt(now.Add(-time.Minute).Unix(), 10) + `}`))
				return "%%." + payload + ".sig"
			},
			want: true,
		},
		{
			name:  "too many segments",
			token: func(*testing.T) string { return "a.b.c.d" },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inspector.IsExpired(tt.token(t)))
		})
	}
}

func TestInspector_IsExpiredWithin(t *testing.T) {
	inspector := token.NewInspector(token.WithNow(func() time.Time { return now }))
	tok := signed(t, jwt.MapClaims{"exp": now.Add(5 * time.Minute).Unix()})

	assert.False(t, inspector.IsExpiredWithin(tok, 0))
	assert.False(t, inspector.IsExpiredWithin(tok, 4*time.Minute))
	assert.True(t, inspector.IsExpiredWithin(tok, 5*time.Minute))
	assert.True(t, inspector.IsExpiredWithin(tok, 10*time.Minute))
}

func TestInspector_WithSkew(t *testing.T) {
	inspector := token.NewInspector(
		token.WithNow(func() time.Time { return now }),
		token.WithSkew(0),
	)
	tok := signed(t, jwt.MapClaims{"exp": now.Add(30 * time.Second).Unix()})

	assert.False(t, inspector.IsExpired(tok))
}

func TestInspector_ExpiresAt(t *testing.T) {
	inspector := token.NewInspector()
	exp := now.Add(time.Hour)

	got, err := inspector.ExpiresAt(signed(t, jwt.MapClaims{"exp": exp.Unix()}))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = inspector.ExpiresAt(signed(t, jwt.MapClaims{}))
	require.ErrorIs(t, err, token.ErrNoExpiration)

	_, err = inspector.ExpiresAt("a.b")
	require.ErrorIs(t, err, token.ErrMalformedToken)
}
