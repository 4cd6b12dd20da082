// Package dto содержит объекты передачи данных HTTP фасада.
package dto

import "time"

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse описывает активную сессию без токенов.
type SessionResponse struct {
	Email     string     `json:"email"`
	DBID      string     `json:"db_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// MessageResponse - ответ с текстовым сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - ответ с текстом ошибки.
type ErrorResponse struct {
	Error string `json:"error"`
}
