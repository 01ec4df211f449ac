package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/octobees/wa-validator/internal/database"
	"github.com/octobees/wa-validator/internal/entity"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup criteria.
	ErrUserNotFound   = eris.New("user not found")
	ErrEmailDuplicate = eris.New("email already exists")
)

const userColumns = `id, email, name, password_hash, role, created_at, updated_at`

// UsersRepository declares the operator account operations.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	Create(ctx context.Context, email, name, passwordHash, role string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool database.Pool
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool database.Pool) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

// FindByEmail fetches a user by email, ignoring case.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, eris.Wrap(err, "query user by email")
	}
	return user, nil
}

// FindByID retrieves a user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, eris.Wrap(err, "query user by id")
	}
	return user, nil
}

// Create inserts a new user row.
func (r *PGXUsersRepository) Create(ctx context.Context, email, name, passwordHash, role string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO users (email, name, password_hash, role)
        VALUES ($1, $2, $3, $4)
        RETURNING `+userColumns, email, name, passwordHash, role)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, eris.Wrap(ErrEmailDuplicate, pgErr.Message)
		}
		return nil, eris.Wrap(err, "insert user")
	}
	return user, nil
}

// List returns all users ordered by creation date (desc).
func (r *PGXUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "list users")
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, eris.Wrap(err, "scan user row")
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate users")
	}
	return users, nil
}

// Delete removes a user by id.
func (r *PGXUsersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return eris.Wrap(err, "delete user")
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}
