// Package backend определяет интерфейсы взаимодействия с удаленным REST API.
package backend

import (
	"context"
	"net/http"

	"admindash/internal/dashboard/domain/entities"
)

// Response - полностью прочитанный ответ сервера.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OK сообщает, что статус ответа 2xx.
func (r *Response) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// Transport отправляет один HTTP запрос к API без повторов.
type Transport interface {
	Send(ctx context.Context, method, endpoint string, header http.Header, body []byte) (*Response, error)
}

// AuthResult - ответ эндпоинта /login.
type AuthResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	DBID         string `json:"db_id"`
}

// AuthClient определяет вызовы эндпоинтов авторизации.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)

	Register(ctx context.Context, email, username, password string) error

	// RefreshToken обменивает refresh токен на новые учетные данные.
	// Любая ошибка означает отказ в обновлении.
	RefreshToken(ctx context.Context, refreshToken string) (*entities.Credentials, error)
}
