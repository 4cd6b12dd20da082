package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Ошибки сессии и авторизованных запросов.
var (
	ErrNoRefreshToken  = errors.New("no refresh token available")
	ErrRefreshRejected = errors.New("invalid refresh token")
	ErrUnauthorized    = errors.New("unauthorized: no access token")
	ErrSessionExpired  = errors.New("session expired. please log in again")
	ErrInvalidSession  = errors.New("invalid session. please log in again")
	ErrRequestFailed   = errors.New("request failed")
	ErrSessionChanged  = errors.New("session ended during token refresh")
)

// Ошибки сервисов.
var (
	ErrValidation         = errors.New("validation failed")
	ErrLoginFailed        = errors.New("failed to login")
	ErrRegistrationFailed = errors.New("failed to register user")
)

// DefaultRequestErrorMessage используется, когда сервер не вернул текст ошибки.
const DefaultRequestErrorMessage = "Unknown API Error"

// RequestError описывает неуспешный ответ сервера или сетевую ошибку (Status == 0).
// Message предназначено для показа пользователю без изменений.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

// NewRequestError строит ошибку по неуспешному ответу. Сообщение берется из
// поля error или message JSON объекта, иначе используется сам текст тела.
func NewRequestError(status int, body []byte) *RequestError {
	return &RequestError{Status: status, Message: errorMessage(body)}
}

func errorMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return DefaultRequestErrorMessage
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
	}
	return text
}

// Error возвращает сообщение сервера.
func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", ErrRequestFailed, e.Err)
	}
	return DefaultRequestErrorMessage
}

// Unwrap позволяет сопоставлять ошибку с ErrRequestFailed и причиной.
func (e *RequestError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequestFailed, e.Err}
	}
	return []error{ErrRequestFailed}
}

// IsTerminal сообщает, что ошибка завершила сессию и пользователь должен войти заново.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrNoRefreshToken) ||
		errors.Is(err, ErrRefreshRejected) ||
		errors.Is(err, ErrSessionExpired) ||
		errors.Is(err, ErrInvalidSession) ||
		errors.Is(err, ErrSessionChanged)
}
