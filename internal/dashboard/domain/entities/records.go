package entities

import (
	"fmt"
	"strings"
)

// User - запись пользователя, управляемая через панель.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate проверяет обязательные поля.
func (u User) Validate() error {
	return requireFields("user", map[string]string{
		"username": u.Username,
		"password": u.Password,
	}, "username", "password")
}

// Customer - запись клиента.
type Customer struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Place   string `json:"place"`
	Phone   string `json:"phone"`
}

// Validate проверяет обязательные поля.
func (c Customer) Validate() error {
	return requireFields("customer", map[string]string{
		"name":    c.Name,
		"address": c.Address,
		"place":   c.Place,
		"phone":   c.Phone,
	}, "name", "address", "place", "phone")
}

// requireFields возвращает ErrValidation со списком пустых полей в порядке order.
func requireFields(kind string, values map[string]string, order ...string) error {
	var missing []string
	for _, field := range order {
		if strings.TrimSpace(values[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s requires %s", ErrValidation, kind, strings.Join(missing, ", "))
}
