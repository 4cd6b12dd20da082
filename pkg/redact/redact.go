// Package redact маскирует чувствительные данные (e-mail, токены, пароли)
// перед записью в лог.
package redact

import "strings"

// Email маскирует локальную часть адреса, оставляя первые два символа и домен.
// Строка без ровно одного '@' заменяется на "***".
//
//	"foobar@example.com" -> "fo***@example.com"
//	"ab@ex.com"          -> "***@ex.com"
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает заглушку для токена. Пустой токен остается пустым,
// чтобы в логах было видно его отсутствие.
func Token(token string) string {
	if token == "" {
		return ""
	}
	return "[REDACTED_TOKEN]"
}

// Password возвращает заглушку для пароля.
func Password() string { return "[REDACTED_PASSWORD]" }
