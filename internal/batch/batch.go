// Package batch runs a function over items in fixed-size groups: items of a
// group run concurrently, groups run one after another with a pause between
// them.
package batch

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Runner holds the batching parameters.
type Runner struct {
	Size  int
	Delay time.Duration
	Sleep Sleeper
	Name  string
}

// Run applies fn to every item and returns the results in input order.
//
// fn must handle its own failures; a batch always completes once started. If
// ctx is cancelled while waiting between batches, Run returns the results of
// the batches already finished together with the context error.
func Run[T, R any](ctx context.Context, r Runner, items []T, fn func(ctx context.Context, item T) R) ([]R, error) {
	size := r.Size
	if size <= 0 {
		size = len(items)
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	results := make([]R, len(items))
	log := zap.L().With(zap.String("batch", r.Name), zap.Int("items", len(items)), zap.Int("size", size))

	for start := 0; start < len(items); start += size {
		if start > 0 && r.Delay > 0 {
			if err := sleep(ctx, r.Delay); err != nil {
				log.Warn("batch run interrupted", zap.Int("completed", start), zap.Error(err))
				return results[:start], eris.Wrapf(err, "batch %s: wait before item %d", r.Name, start)
			}
		}

		end := min(start+size, len(items))
		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				results[i] = fn(ctx, items[i])
				return nil
			})
		}
		_ = g.Wait()

		log.Debug("batch completed", zap.Int("from", start), zap.Int("to", end))
	}

	return results, nil
}
