package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/middleware"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/service"
)

type stubUsersRepo struct {
	findByEmail func(ctx context.Context, email string) (*entity.User, error)
	create      func(ctx context.Context, email, name, passwordHash, role string) (*entity.User, error)
	list        func(ctx context.Context) ([]entity.User, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if s.findByEmail != nil {
		return s.findByEmail(ctx, email)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Create(ctx context.Context, email, name, passwordHash, role string) (*entity.User, error) {
	if s.create != nil {
		return s.create(ctx, email, name, passwordHash, role)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) List(ctx context.Context) ([]entity.User, error) {
	if s.list != nil {
		return s.list(ctx)
	}
	return nil, errors.New("not implemented")
}

func (s *stubUsersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if s.delete != nil {
		return s.delete(ctx, id)
	}
	return errors.New("not implemented")
}

var operatorID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

func operatorRepo(t *testing.T) *stubUsersRepo {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("Sup3r-secret!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &stubUsersRepo{
		findByEmail: func(ctx context.Context, email string) (*entity.User, error) {
			if email != "ops@example.com" {
				return nil, repository.ErrUserNotFound
			}
			return &entity.User{ID: operatorID, Email: email, Name: "Ops", PasswordHash: string(hashed), Role: "admin"}, nil
		},
	}
}

func newAuthHandler(repo repository.UsersRepository, clientLimit int) *AuthHandler {
	store := auth.NewMemoryAttemptStore()
	jwtManager := auth.NewJWTManager("test-secret", 0)
	svc := service.NewAuthService(repo, jwtManager, auth.NewAccountLockout(store))
	clients := auth.NewLockout(store, "ip:", clientLimit, 15*time.Minute)
	return NewAuthHandler(svc, clients, 8*time.Hour, true)
}

func TestAuthHandler_Login(t *testing.T) {
	tests := map[string]struct {
		payload       any
		expectCode    int
		expectMessage string
	}{
		"invalid payload": {
			payload:       "{",
			expectCode:    http.StatusBadRequest,
			expectMessage: "Invalid input format",
		},
		"missing fields": {
			payload:       map[string]string{"email": " ", "password": ""},
			expectCode:    http.StatusBadRequest,
			expectMessage: "Email and password are required",
		},
		"malformed email": {
			payload:       map[string]string{"email": "ops@example", "password": "x"},
			expectCode:    http.StatusBadRequest,
			expectMessage: "Invalid email format",
		},
		"unknown user": {
			payload:       map[string]string{"email": "ghost@example.com", "password": "x"},
			expectCode:    http.StatusUnauthorized,
			expectMessage: "Invalid credentials",
		},
		"wrong password": {
			payload:       map[string]string{"email": "ops@example.com", "password": "wrong"},
			expectCode:    http.StatusUnauthorized,
			expectMessage: "Invalid credentials. 4 attempts remaining.",
		},
		"success": {
			payload:       map[string]string{"email": " ops@example.com ", "password": "Sup3r-secret!"},
			expectCode:    http.StatusOK,
			expectMessage: "Login successful",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEcho()
			req, rec := jsonRequest(t, http.MethodPost, "/api/auth/login", tt.payload)
			c := e.NewContext(req, rec)

			if err := newAuthHandler(operatorRepo(t), 10).Login(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			var data dto.LoginResponse
			env := decode(t, rec, &data)
			if env.Message != tt.expectMessage {
				t.Fatalf("expected message %q, got %q", tt.expectMessage, env.Message)
			}
			if tt.expectCode != http.StatusOK {
				return
			}

			if data.User.ID != operatorID.String() || data.User.Name != "Ops" || data.User.Role != "admin" {
				t.Fatalf("unexpected session user: %+v", data.User)
			}
			cookies := rec.Result().Cookies()
			if len(cookies) != 1 {
				t.Fatalf("expected one cookie, got %d", len(cookies))
			}
			cookie := cookies[0]
			if cookie.Name != middleware.SessionCookie || cookie.Value != data.AccessToken {
				t.Fatalf("unexpected cookie: %+v", cookie)
			}
			if !cookie.HttpOnly || !cookie.Secure || cookie.SameSite != http.SameSiteStrictMode || cookie.MaxAge != 8*60*60 || cookie.Path != "/" {
				t.Fatalf("unexpected cookie attributes: %+v", cookie)
			}
		})
	}
}

func TestAuthHandler_LoginThrottlesClient(t *testing.T) {
	e := newEcho()
	handler := newAuthHandler(operatorRepo(t), 2)

	login := func(email string) (int, string) {
		req, rec := jsonRequest(t, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": "nope"})
		req.RemoteAddr = "192.0.2.10:4411"
		_ = handler.Login(e.NewContext(req, rec))
		return rec.Code, decode(t, rec, nil).Message
	}

	login("ghost@example.com")
	login("other@example.com")
	code, message := login("ops@example.com")
	if code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if message != "Too many login attempts. Please try again in 15 minutes." {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	e := newEcho()
	handler := newAuthHandler(operatorRepo(t), 10)

	req, rec := jsonRequest(t, http.MethodPost, "/api/auth/logout", nil)
	if err := handler.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != middleware.SessionCookie || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired session cookie, got %+v", cookies)
	}

	req, rec = jsonRequest(t, http.MethodGet, "/api/auth/me", nil)
	c := e.NewContext(req, rec)
	_ = handler.Me(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	req, rec = jsonRequest(t, http.MethodGet, "/api/auth/me", nil)
	c = e.NewContext(req, rec)
	c.Set(middleware.ContextKeyUserID, operatorID.String())
	c.Set(middleware.ContextKeyUserEmail, "ops@example.com")
	c.Set(middleware.ContextKeyUserName, "Ops")
	c.Set(middleware.ContextKeyUserRole, "admin")
	_ = handler.Me(c)

	var user dto.SessionUser
	decode(t, rec, &user)
	if rec.Code != http.StatusOK || user.Email != "ops@example.com" || user.Name != "Ops" {
		t.Fatalf("unexpected session response %d %+v", rec.Code, user)
	}
}
