package retry

import (
	"context"
	"log/slog"
	"time"
)

// SleepFunc waits for the given duration. Tests inject a recording fake so
// backoff timing can be asserted without real timers.
type SleepFunc func(ctx context.Context, d time.Duration)

// Policy controls how many times an operation is retried and how long the
// executor waits between attempts. The backoff is pure exponential:
// InitialDelay * 2^k after the k-th failed attempt, no jitter.
type Policy struct {
	MaxRetries   int
	InitialDelay time.Duration
	Sleep        SleepFunc
}

// DefaultPolicy matches the remote API's tolerance: three retries starting
// at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
	}
}

func (p Policy) sleep() SleepFunc {
	if p.Sleep != nil {
		return p.Sleep
	}
	return func(ctx context.Context, d time.Duration) {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
		}
	}
}

// Do runs op up to MaxRetries+1 times, backing off between attempts.
// The last error is returned unchanged so callers can inspect it. The
// operation is an opaque thunk; Do knows nothing about uploads or
// analysis and is reused by both.
func Do[T any](ctx context.Context, p Policy, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	sleep := p.sleep()

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt < p.MaxRetries {
			delay := p.InitialDelay << attempt
			slog.Warn("Operation failed, retrying",
				"op", label,
				"attempt", attempt+1,
				"max_attempts", p.MaxRetries+1,
				"delay", delay,
				"err", err)
			sleep(ctx, delay)
		}
	}

	slog.Error("Operation failed after all retries", "op", label, "attempts", p.MaxRetries+1, "err", lastErr)
	return zero, lastErr
}
