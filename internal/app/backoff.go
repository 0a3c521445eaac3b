package app

import (
	"context"
	"math/rand"
	"time"
)

// Accept retry bounds.
const (
	DefaultBackoffInitial = 5 * time.Millisecond
	DefaultBackoffMax     = time.Second
)

// backoff implements exponential backoff with jitter for accept errors.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(initial, max time.Duration) *backoff {
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Next returns the delay to use now (with ±20% jitter) and doubles the
// base for the following call.
func (b *backoff) Next() time.Duration {
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return d
}

// Wait sleeps for Next() or until ctx is done. It reports false if ctx
// ended first.
func (b *backoff) Wait(ctx context.Context) bool {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Reset restores the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the base of the next delay.
func (b *backoff) Current() time.Duration {
	return b.current
}
