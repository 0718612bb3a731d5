package allocate

import (
	"context"
	"math/rand/v2"
	"time"
)

// Delay pauses between iterations.
type Delay func(ctx context.Context) error

// RandomDelay sleeps a uniformly random 1..maxMs milliseconds, returning
// early with ctx.Err() when ctx is done.
func RandomDelay(maxMs int) Delay {
	if maxMs < 1 {
		maxMs = 1
	}
	return func(ctx context.Context) error {
		d := time.Duration(1+rand.IntN(maxMs)) * time.Millisecond
		return Sleep(ctx, d)
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NoDelay skips the pause.
func NoDelay(ctx context.Context) error { return ctx.Err() }
