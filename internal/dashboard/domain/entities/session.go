// Package entities содержит доменные сущности панели администратора.
package entities

// Ключи, под которыми сессия хранится в постоянном хранилище.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// SessionKeys перечисляет все ключи сессии; они удаляются только вместе.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// UserProfile описывает вошедшего пользователя.
type UserProfile struct {
	Email string `json:"email"`
	ID    string `json:"db_id"`
}

// Session представляет активную сессию: пара токенов и профиль.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *UserProfile
}

// Valid сообщает, что оба токена заданы.
func (s *Session) Valid() bool {
	return s != nil && s.AccessToken != "" && s.RefreshToken != ""
}

// Credentials содержит результат обновления токена.
// Пустой RefreshToken означает, что сервер не выполнял ротацию.
type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}
