// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time so throttle behavior can be tested without sleeping.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	return sleepContext(ctx, d)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Throttle enforces a minimum gap between the end of one call and the
// start of the next. Callers Wait before a call and Release after it
// completes, on every path including success.
//
// The gap is tracked with a single-token bucket: Release spends the token
// at completion time and Wait blocks until it has refilled.
type Throttle struct {
	interval time.Duration
	limiter  *rate.Limiter
	clock    Clock
}

// NewThrottle returns a throttle with the given minimum interval. A nil
// clock uses SystemClock. A non-positive interval never blocks.
func NewThrottle(interval time.Duration, clock Clock) *Throttle {
	if clock == nil {
		clock = SystemClock
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Throttle{
		interval: interval,
		limiter:  rate.NewLimiter(limit, 1),
		clock:    clock,
	}
}

// Interval returns the configured minimum gap.
func (t *Throttle) Interval() time.Duration { return t.interval }

// Wait blocks until a full interval has passed since the last Release, or
// until ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t.interval <= 0 {
		return ctx.Err()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := t.clock.Now()
		r := t.limiter.ReserveN(now, 1)
		delay := r.DelayFrom(now)
		r.CancelAt(now)
		if delay <= 0 {
			return nil
		}
		if err := t.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// Release records that a call has just completed.
func (t *Throttle) Release() {
	if t.interval <= 0 {
		return
	}
	t.limiter.ReserveN(t.clock.Now(), 1)
}
