package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/octobees/wa-validator/internal/auth"
	"github.com/octobees/wa-validator/internal/database"
)

// PGXAttemptStore keeps login failure counters in the login_attempts table so
// lockouts survive restarts and are shared between instances.
type PGXAttemptStore struct {
	pool database.Pool
}

var _ auth.AttemptStore = (*PGXAttemptStore)(nil)

// NewPGXAttemptStore builds an attempt store over pool.
func NewPGXAttemptStore(pool database.Pool) *PGXAttemptStore {
	return &PGXAttemptStore{pool: pool}
}

// Get returns the counter for key, or a zero Attempt when none exists.
func (s *PGXAttemptStore) Get(ctx context.Context, key string) (auth.Attempt, error) {
	var a auth.Attempt
	err := s.pool.QueryRow(ctx, `SELECT count, last_attempt FROM login_attempts WHERE key = $1`, key).
		Scan(&a.Count, &a.LastAttempt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Attempt{}, nil
	}
	if err != nil {
		return auth.Attempt{}, eris.Wrap(err, "query login attempts")
	}
	return a, nil
}

// Increment adds one failure at the given time and returns the new counter.
func (s *PGXAttemptStore) Increment(ctx context.Context, key string, at time.Time) (auth.Attempt, error) {
	var a auth.Attempt
	err := s.pool.QueryRow(ctx, `
        INSERT INTO login_attempts (key, count, last_attempt)
        VALUES ($1, 1, $2)
        ON CONFLICT (key) DO UPDATE
        SET count = login_attempts.count + 1, last_attempt = EXCLUDED.last_attempt
        RETURNING count, last_attempt`, key, at).
		Scan(&a.Count, &a.LastAttempt)
	if err != nil {
		return auth.Attempt{}, eris.Wrap(err, "increment login attempts")
	}
	return a, nil
}

// Reset deletes the counter for key.
func (s *PGXAttemptStore) Reset(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM login_attempts WHERE key = $1`, key); err != nil {
		return eris.Wrap(err, "reset login attempts")
	}
	return nil
}
