package service

import (
	"context"
	"time"

	"github.com/octobees/wa-validator/internal/batch"
	"github.com/octobees/wa-validator/internal/entity"
)

// ContactStore reads contact rows and writes them back by row address.
type ContactStore interface {
	GetAll(ctx context.Context) ([]entity.Contact, error)
	Update(ctx context.Context, c entity.Contact) error
	BatchUpdate(ctx context.Context, contacts []entity.Contact) error
}

type settings struct {
	sleep batch.Sleeper
	now   func() time.Time
}

func defaultSettings() settings {
	return settings{sleep: batch.Sleep, now: time.Now}
}

// Option customises the orchestrators.
type Option func(*settings)

// WithSleeper replaces the pause used between batches.
func WithSleeper(sleep batch.Sleeper) Option {
	return func(r *settings) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithClock overrides the time source used for validation timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *settings) {
		if now != nil {
			r.now = now
		}
	}
}

func applyOptions(opts []Option) settings {
	r := defaultSettings()
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
