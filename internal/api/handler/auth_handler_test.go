package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dailymood/mood-tracker/internal/core/domain"
	"github.com/dailymood/mood-tracker/internal/core/ports"
)

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	exp := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Name != "Alice" || in.Email != "alice@example.com" || in.Password != "secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token:     "tok",
				ExpiresAt: exp,
				User:      &domain.User{ID: "user-1", Name: in.Name, Email: in.Email, PasswordHash: "hash"},
			}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c, rec := newContext(e, http.MethodPost, "/v1/auth/register", `{"name":"Alice","email":"alice@example.com","password":"secret1"}`, "")
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["id"] != "user-1" || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestAuthHandler_Register_ValidationBeforeService(t *testing.T) {
	bodies := []string{
		`{"email":"a@example.com","password":"secret1"}`,
		`{"name":"A","email":"nope","password":"secret1"}`,
		`{"name":"A","email":"a@example.com","password":"123"}`,
	}
	for _, body := range bodies {
		e := newTestEcho()
		stub := &stubAuthService{
			registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
				t.Fatalf("service called for %s", body)
				return nil, nil
			},
		}
		c, _ := newContext(e, http.MethodPost, "/v1/auth/register", body, "")
		if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("body %s: expected ErrValidation, got %v", body, err)
		}
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(context.Context, ports.RegisterInput) (*ports.AuthResult, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	c, _ := newContext(e, http.MethodPost, "/v1/auth/register", `{"name":"Bob","email":"bob@example.com","password":"secret1"}`, "")
	if err := NewAuthHandler(stub).Register(c); !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Register_MalformedBody(t *testing.T) {
	e := newTestEcho()
	c, _ := newContext(e, http.MethodPost, "/v1/auth/register", `{"name":`, "")
	err := NewAuthHandler(&stubAuthService{}).Register(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "carol@example.com" || password != "s3cret" {
				return nil, domain.ErrInvalidCredentials
			}
			return &ports.AuthResult{Token: "tok", User: &domain.User{ID: "user-3"}}, nil
		},
	}
	c, rec := newContext(e, http.MethodPost, "/v1/auth/login", `{"email":"carol@example.com","password":"s3cret"}`, "")
	if err := NewAuthHandler(stub).Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.User.ID != "user-3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	c, _ := newContext(e, http.MethodPost, "/v1/auth/login", `{"email":"x@example.com","password":"bad"}`, "")
	if err := NewAuthHandler(stub).Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserHandler_Me(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		profileFn: func(_ context.Context, userID string) (*domain.User, error) {
			if userID != "user-1" {
				return nil, domain.ErrUserNotFound
			}
			return &domain.User{ID: "user-1", Name: "Alice", Email: "alice@example.com", PasswordHash: "hash"}, nil
		},
	}
	h := NewUserHandler(stub)

	c, rec := newContext(e, http.MethodGet, "/v1/users/me", "", "user-1")
	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Name != "Alice" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	c, _ = newContext(e, http.MethodGet, "/v1/users/me", "", "")
	if err := h.Me(c); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}
