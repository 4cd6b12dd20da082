// Package backendtest предоставляет поддельный REST API панели для тестов.
package backendtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"admindash/internal/dashboard/domain/entities"
)

// SigningKey подписывает выдаваемые токены доступа.
var SigningKey = []byte("backendtest-signing-key")

type account struct {
	ID       string
	Email    string
	Username string
	Password string
}

// Server - поддельный API с пользователями, клиентами и JWT токенами.
type Server struct {
	*httptest.Server

	// AccessTTL - срок действия выдаваемых токенов доступа.
	AccessTTL time.Duration
	// RotateRefresh включает выдачу нового токена обновления при каждом обмене.
	RotateRefresh bool

	RefreshCalls atomic.Int32
	LoginCalls   atomic.Int32

	mu        sync.Mutex
	accounts  map[string]*account
	refresh   map[string]string
	revoked   map[string]bool
	forbidden map[string]bool
	failures  []int
	users     []entities.User
	customers []entities.Customer
	headers   []http.Header
}

// NewServer запускает сервер и останавливает его по окончании теста.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		AccessTTL: time.Hour,
		accounts:  make(map[string]*account),
		refresh:   make(map[string]string),
		revoked:   make(map[string]bool),
		forbidden: make(map[string]bool),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /refresh-token", s.handleRefresh)
	mux.HandleFunc("GET /users/list", s.authorized(s.handleUsersList))
	mux.HandleFunc("POST /users/single", s.authorized(s.handleUsersSingle))
	mux.HandleFunc("POST /users/bulk", s.authorized(s.handleUsersBulk))
	mux.HandleFunc("GET /customers/list", s.authorized(s.handleCustomersList))
	mux.HandleFunc("POST /customers/single", s.authorized(s.handleCustomersSingle))
	mux.HandleFunc("POST /customers/bulk", s.authorized(s.handleCustomersBulk))

	s.Server = httptest.NewServer(s.intercept(mux))
	t.Cleanup(s.Close)
	return s
}

// AddAccount регистрирует учетную запись и возвращает ее идентификатор.
func (s *Server) AddAccount(email, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.accounts[email] = &account{ID: id, Email: email, Username: email, Password: password}
	return id
}

// IssueSession выдает пару токенов без вызова /login.
func (s *Server) IssueSession(email string) (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	refreshToken := uuid.NewString()
	s.refresh[refreshToken] = email
	return s.signAccess(email, s.AccessTTL), refreshToken
}

// ExpiredToken возвращает подписанный, но уже истекший токен доступа.
func (s *Server) ExpiredToken(email string) string {
	return s.signAccess(email, -time.Minute)
}

// RevokeRefreshTokens делает все выданные токены обновления недействительными.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

// Forbid заставляет API отвечать 403 на запросы с указанным токеном доступа.
func (s *Server) Forbid(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forbidden[accessToken] = true
}

// Revoke заставляет API отвечать 401 на запросы с указанным токеном доступа.
func (s *Server) Revoke(accessToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[accessToken] = true
}

// FailNext заставляет следующие запросы завершиться с указанными статусами.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, statuses...)
}

// Users возвращает сохраненных пользователей.
func (s *Server) Users() []entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.User, len(s.users))
	copy(out, s.users)
	return out
}

// Customers возвращает сохраненных клиентов.
func (s *Server) Customers() []entities.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

// Headers возвращает заголовки всех полученных запросов.
func (s *Server) Headers() []http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]http.Header(nil), s.headers...)
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.headers = append(s.headers, r.Header.Clone())
		var status int
		if len(s.failures) > 0 {
			status, s.failures = s.failures[0], s.failures[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, http.StatusText(status))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Access denied")
			return
		}

		s.mu.Lock()
		forbidden, revoked := s.forbidden[raw], s.revoked[raw]
		s.mu.Unlock()
		if forbidden {
			writeError(w, http.StatusForbidden, "Invalid token")
			return
		}
		if revoked {
			writeError(w, http.StatusUnauthorized, "Token expired")
			return
		}

		_, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return SigningKey, nil },
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "Token expired")
				return
			}
			writeError(w, http.StatusForbidden, "Invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.LoginCalls.Add(1)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[req.Email]
	if !ok || acc.Password != req.Password {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	refreshToken := uuid.NewString()
	s.refresh[refreshToken] = acc.Email
	access := s.signAccess(acc.Email, s.AccessTTL)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{
		"accessToken":  access,
		"refreshToken": refreshToken,
		"email":        acc.Email,
		"db_id":        acc.ID,
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusBadRequest, "User already exists")
		return
	}
	s.accounts[req.Email] = &account{ID: uuid.NewString(), Email: req.Email, Username: req.Username, Password: req.Password}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.RefreshCalls.Add(1)

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refresh[req.RefreshToken]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	resp := map[string]string{"accessToken": s.signAccess(email, s.AccessTTL)}
	if s.RotateRefresh {
		delete(s.refresh, req.RefreshToken)
		next := uuid.NewString()
		s.refresh[next] = email
		resp["refreshToken"] = next
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUsersList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Users())
}

func (s *Server) handleUsersSingle(w http.ResponseWriter, r *http.Request) {
	var user entities.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	s.users = append(s.users, user)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User added"})
}

func (s *Server) handleUsersBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Users []entities.User `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Users) == 0 {
		writeError(w, http.StatusBadRequest, "Users are required")
		return
	}
	s.mu.Lock()
	s.users = append(s.users, req.Users...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": fmt.Sprintf("%d users added", len(req.Users))})
}

func (s *Server) handleCustomersList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Customers())
}

func (s *Server) handleCustomersSingle(w http.ResponseWriter, r *http.Request) {
	var customer entities.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	s.mu.Lock()
	s.customers = append(s.customers, customer)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Customer added"})
}

func (s *Server) handleCustomersBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Customers []entities.Customer `json:"customers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Customers) == 0 {
		writeError(w, http.StatusBadRequest, "Customers are required")
		return
	}
	s.mu.Lock()
	s.customers = append(s.customers, req.Customers...)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]string{"message": fmt.Sprintf("%d customers added", len(req.Customers))})
}

func (s *Server) signAccess(email string, ttl time.Duration) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   email,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}).SignedString(SigningKey)
	if err != nil {
		panic(err)
	}
	return token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
