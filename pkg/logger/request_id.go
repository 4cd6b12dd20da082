package logger

import (
	"context"

	"github.com/google/uuid"
)

// MaxRequestIDLength ограничивает идентификатор, пришедший от клиента.
const MaxRequestIDLength = 128

type requestIDKey struct{}

// ContextWithRequestID связывает контекст с идентификатором запроса. Чужой
// идентификатор принимается, только если он проходит ValidRequestID, иначе
// выдается новый. Тот же идентификатор уходит на backend и попадает в логи.
func ContextWithRequestID(ctx context.Context, incoming string) context.Context {
	id := incoming
	if !ValidRequestID(id) {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom возвращает идентификатор запроса из контекста.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// NewRequestID выдает случайный UUID.
func NewRequestID() string {
	return uuid.NewString()
}

// ValidRequestID допускает непустые идентификаторы из букв, цифр и "-_.:"
// длиной до MaxRequestIDLength, чтобы клиент не мог подмешать в логи и
// заголовки backend управляющие символы.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.', r == ':':
		default:
			return false
		}
	}
	return true
}
