package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/wa-validator/internal/dto"
	"github.com/octobees/wa-validator/internal/repository"
	"github.com/octobees/wa-validator/internal/validator"
)

// ErrInvalidUserID is returned when a user id is not a UUID.
var ErrInvalidUserID = eris.New("invalid user id")

var (
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[@$!%*?&]`)
)

// PasswordError lists the strength rules a password broke.
type PasswordError struct {
	Problems []string
}

func (e PasswordError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// CheckPasswordStrength returns the rules password does not meet.
func CheckPasswordStrength(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if !lowerPattern.MatchString(password) {
		problems = append(problems, "Password must contain at least one lowercase letter")
	}
	if !upperPattern.MatchString(password) {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !digitPattern.MatchString(password) {
		problems = append(problems, "Password must contain at least one number")
	}
	if !specialPattern.MatchString(password) {
		problems = append(problems, "Password must contain at least one special character (@$!%*?&)")
	}
	return problems
}

// UserService manages dashboard operators.
type UserService struct {
	repo repository.UsersRepository
	cost int
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo, cost: 12}
}

// ListUsers returns all users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, dto.UserResponse{ID: u.ID.String(), Email: u.Email, Name: u.Name, Role: u.Role})
	}
	return responses, nil
}

// CreateUser validates the request, hashes the password and stores the user.
func (s *UserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = "user"
	}

	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if problems := CheckPasswordStrength(req.Password); len(problems) > 0 {
		return nil, PasswordError{Problems: problems}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, eris.Wrap(err, "hash password")
	}

	user, err := s.repo.Create(ctx, req.Email, req.Name, string(hashed), req.Role)
	if err != nil {
		if errors.Is(err, repository.ErrEmailDuplicate) {
			return nil, repository.ErrEmailDuplicate
		}
		return nil, err
	}

	return &dto.UserResponse{ID: user.ID.String(), Email: user.Email, Name: user.Name, Role: user.Role}, nil
}

// DeleteUser removes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidUserID
	}
	return s.repo.Delete(ctx, userID)
}
