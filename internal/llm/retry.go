package llm

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// RetryPolicy controls how an LLM call site retries transient failures.
// Every call site shares the same policy; what differs per site is which
// errors count as retryable and what happens once attempts are exhausted.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryPolicy is 3 attempts with doubling delay starting at 1s, capped at 8s.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Second,
	MaxDelay:     8 * time.Second,
	Multiplier:   2.0,
}

// Delay returns the wait before the attempt following attempt (0-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	multiplier := p.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	wait := time.Duration(float64(p.InitialDelay) * math.Pow(multiplier, float64(attempt)))
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	return wait
}

// Retry runs fn until it succeeds, returns an error retryIf rejects, the
// attempts are used up, or ctx is done. The last error is returned on failure.
// A nil retryIf means IsRetryable.
func Retry[T any](ctx context.Context, p RetryPolicy, retryIf func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if retryIf == nil {
		retryIf = IsRetryable
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return zero, lastErr
			}
			return zero, err
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryIf(err) || attempt == attempts-1 {
			break
		}

		wait := p.Delay(attempt)
		slog.Info("LLM call failed, retrying",
			"attempt", attempt+1,
			"max_attempts", attempts,
			"wait", wait,
			"error", err)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		}
	}

	return zero, lastErr
}
