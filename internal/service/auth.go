package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/entity"
	"github.com/octobees/wa-validator/internal/metrics"
	"github.com/octobees/wa-validator/internal/repository"
)

// CredentialsError is a rejected login. Its message is safe to show to the user.
type CredentialsError struct {
	Message string
}

// Error implements the error interface.
func (e CredentialsError) Error() string {
	return e.Message
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token string
	User  entity.User
}

// AuthService coordinates credential validation, account lockout and token issuance.
type AuthService struct {
	users   repository.UsersRepository
	jwt     *auth.JWTManager
	lockout *auth.Lockout
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager, lockout *auth.Lockout) *AuthService {
	return &AuthService{users: users, jwt: jwtManager, lockout: lockout}
}

// Login validates credentials and returns a session token. Five wrong
// passwords lock the account for thirty minutes.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, CredentialsError{Message: "Email and password are required"}
	}

	status, err := s.lockout.Check(ctx, email)
	if err != nil {
		return nil, err
	}
	if status.Locked {
		metrics.IncLoginFailure("account_locked")
		return nil, CredentialsError{Message: fmt.Sprintf("Account locked. Try again in %d minutes.", status.RetryMinutes())}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.IncLoginFailure("unknown_user")
			return nil, CredentialsError{Message: "Invalid credentials"}
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.IncLoginFailure("bad_password")
		status, err := s.lockout.Fail(ctx, email)
		if err != nil {
			return nil, err
		}
		if status.Locked {
			zap.L().Warn("account locked", zap.String("email", user.Email))
			return nil, CredentialsError{Message: fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.", int(s.lockout.Window().Minutes()))}
		}
		return nil, CredentialsError{Message: fmt.Sprintf("Invalid credentials. %d attempts remaining.", status.Remaining)}
	}

	if err := s.lockout.Clear(ctx, email); err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, user.Name, user.Role)
	if err != nil {
		return nil, eris.Wrap(err, "issue session token")
	}

	return &LoginResult{Token: token, User: *user}, nil
}
