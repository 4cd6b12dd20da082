// Package token определяет срок действия токена доступа без проверки подписи.
package token

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSkew - запас до истечения, при котором токен уже считается просроченным.
const DefaultSkew = 60 * time.Second

// Ошибки разбора токена.
var (
	ErrMalformedToken = errors.New("malformed access token")
	ErrNoExpiration   = errors.New("access token has no exp claim")
)

// Inspector читает claim exp из полезной нагрузки JWT. Заголовок и подпись
// не проверяются: токен проверяет сервер, клиенту нужно только время истечения.
type Inspector struct {
	now  func() time.Time
	skew time.Duration
}

// Option настраивает Inspector.
type Option func(*Inspector)

// WithNow подменяет источник текущего времени.
func WithNow(now func() time.Time) Option {
	return func(i *Inspector) { i.now = now }
}

// WithSkew задает запас для IsExpired.
func WithSkew(skew time.Duration) Option {
	return func(i *Inspector) { i.skew = skew }
}

// NewInspector создает Inspector.
func NewInspector(opts ...Option) *Inspector {
	i := &Inspector{
		now:  time.Now,
		skew: DefaultSkew,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IsExpired сообщает, что токен истек или истечет в пределах запаса по умолчанию.
func (i *Inspector) IsExpired(token string) bool {
	return i.IsExpiredWithin(token, i.skew)
}

// IsExpiredWithin возвращает true, если now >= exp - skew.
// Любой токен, из которого нельзя получить exp, считается просроченным.
func (i *Inspector) IsExpiredWithin(token string, skew time.Duration) bool {
	exp, err := i.ExpiresAt(token)
	if err != nil {
		return true
	}
	return !i.now().Before(exp.Add(-skew))
}

// ExpiresAt возвращает время истечения токена.
func (i *Inspector) ExpiresAt(token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrMalformedToken
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, ErrMalformedToken
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if exp == nil {
		return time.Time{}, ErrNoExpiration
	}
	return exp.Time, nil
}

// decodeSegment принимает base64url и обычный base64, с выравниванием и без.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimRight(seg, "=")
	if b, err := base64.RawURLEncoding.DecodeString(seg); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(seg)
}
