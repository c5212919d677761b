package geocode

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the next request may be sent.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Clock is the time source used by IntervalLimiter.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IntervalLimiter spaces requests at least interval apart. Callers are
// serialized: a second Wait does not start until the first has returned.
// The spacing holds within one process; the first Wait never blocks.
type IntervalLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	clock    Clock
	bucket   *rate.Limiter
	last     time.Time
}

// NewIntervalLimiter returns a limiter allowing one request per interval.
// A nil clock uses wall time.
func NewIntervalLimiter(interval time.Duration, clock Clock) *IntervalLimiter {
	if clock == nil {
		clock = realClock{}
	}
	return &IntervalLimiter{
		interval: interval,
		clock:    clock,
		bucket:   rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Wait blocks until interval has passed since the previous request.
func (l *IntervalLimiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	res := l.bucket.ReserveN(now, 1)
	delay := res.DelayFrom(now)
	// The token bucket works in float seconds; the floor keeps the spacing
	// exact even when the conversion rounds down.
	if !l.last.IsZero() {
		if floor := l.interval - now.Sub(l.last); floor > delay {
			delay = floor
		}
	}

	if delay > 0 {
		if err := l.clock.Sleep(ctx, delay); err != nil {
			res.CancelAt(now)
			return err
		}
	}
	l.last = l.clock.Now()
	return nil
}
