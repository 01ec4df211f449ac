package auth

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Attempt is the failure counter stored per key.
type Attempt struct {
	Count       int
	LastAttempt time.Time
}

// AttemptStore persists failure counters. Get returns a zero Attempt for
// unknown keys.
type AttemptStore interface {
	Get(ctx context.Context, key string) (Attempt, error)
	Increment(ctx context.Context, key string, at time.Time) (Attempt, error)
	Reset(ctx context.Context, key string) error
}

// MemoryAttemptStore keeps counters in process memory.
type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]Attempt
}

// NewMemoryAttemptStore returns an empty in-memory store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[string]Attempt)}
}

// Get returns the attempts recorded for key, or the zero Attempt.
func (s *MemoryAttemptStore) Get(_ context.Context, key string) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[key], nil
}

// Increment counts one more failure for key at the given time.
func (s *MemoryAttemptStore) Increment(_ context.Context, key string, at time.Time) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.attempts[key]
	a.Count++
	a.LastAttempt = at
	s.attempts[key] = a
	return a, nil
}

// Reset forgets every attempt recorded for key.
func (s *MemoryAttemptStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, key)
	return nil
}

// Status describes a key after a check or a recorded failure.
type Status struct {
	Locked     bool
	Attempts   int
	Remaining  int
	RetryAfter time.Duration
}

// RetryMinutes rounds RetryAfter up to whole minutes.
func (s Status) RetryMinutes() int {
	return int(math.Ceil(s.RetryAfter.Minutes()))
}

// Lockout blocks a key for Window once MaxAttempts failures accumulate.
// The window is measured from the last recorded failure.
type Lockout struct {
	store       AttemptStore
	prefix      string
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewLockout creates a lockout over store. prefix namespaces its keys so
// that several lockouts can share one store.
func NewLockout(store AttemptStore, prefix string, maxAttempts int, window time.Duration) *Lockout {
	return &Lockout{
		store:       store,
		prefix:      prefix,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Account lockout: five failures lock the account for thirty minutes.
func NewAccountLockout(store AttemptStore) *Lockout {
	return NewLockout(store, "user:", 5, 30*time.Minute)
}

// Login throttle: ten failures from one client lock it out for fifteen minutes.
func NewClientLockout(store AttemptStore) *Lockout {
	return NewLockout(store, "ip:", 10, 15*time.Minute)
}

// Window returns the lock duration.
func (l *Lockout) Window() time.Duration {
	return l.window
}

func (l *Lockout) key(id string) string {
	return l.prefix + strings.ToLower(strings.TrimSpace(id))
}

// Check reports whether id is locked. An expired lock is cleared.
func (l *Lockout) Check(ctx context.Context, id string) (Status, error) {
	key := l.key(id)
	a, err := l.store.Get(ctx, key)
	if err != nil {
		return Status{}, eris.Wrapf(err, "read attempts for %s", key)
	}

	if a.Count >= l.maxAttempts {
		until := a.LastAttempt.Add(l.window)
		if now := l.now(); now.Before(until) {
			return Status{Locked: true, Attempts: a.Count, RetryAfter: until.Sub(now)}, nil
		}
		if err := l.store.Reset(ctx, key); err != nil {
			return Status{}, eris.Wrapf(err, "reset attempts for %s", key)
		}
		a = Attempt{}
	}

	return Status{Attempts: a.Count, Remaining: l.maxAttempts - a.Count}, nil
}

// Fail records a failure for id.
func (l *Lockout) Fail(ctx context.Context, id string) (Status, error) {
	key := l.key(id)
	now := l.now()
	a, err := l.store.Increment(ctx, key, now)
	if err != nil {
		return Status{}, eris.Wrapf(err, "record attempt for %s", key)
	}

	if a.Count >= l.maxAttempts {
		return Status{Locked: true, Attempts: a.Count, RetryAfter: l.window}, nil
	}
	return Status{Attempts: a.Count, Remaining: l.maxAttempts - a.Count}, nil
}

// Clear forgets all failures for id.
func (l *Lockout) Clear(ctx context.Context, id string) error {
	key := l.key(id)
	return eris.Wrapf(l.store.Reset(ctx, key), "reset attempts for %s", key)
}
