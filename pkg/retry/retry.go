package retry

import (
	"context"
	"time"
)

const (
	// DefaultInitialDelay is the delay before the first retry attempt.
	DefaultInitialDelay = 500 * time.Millisecond
	// DefaultMaxDelay caps the exponential backoff delay.
	DefaultMaxDelay = 30 * time.Second
)

// ExponentialDelay returns the backoff delay for the given zero-based retry
// count: initialDelay doubled retryCount times, capped at maxDelay. Non-positive
// bounds fall back to the package defaults.
func ExponentialDelay(retryCount int, initialDelay, maxDelay time.Duration) time.Duration {
	if initialDelay <= 0 {
		initialDelay = DefaultInitialDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}

	delay := initialDelay
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

// Wait blocks for the given delay or until ctx is done, in which case it
// returns ctx.Err().
func Wait(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Strategy decides whether a failed attempt is retried. It receives the
// zero-based count of failed attempts so far and the error of the latest one,
// and returns false to stop retrying; it is also responsible for any
// inter-attempt delay.
type Strategy func(retryCount int, err error) bool

// Call executes work repeatedly until it succeeds or the strategy declines
// another attempt.
func Call[T any](work func() (T, error), strategy Strategy) (T, error) {
	var (
		result T
		err    error
	)
	for retryCount := 0; ; retryCount++ {
		result, err = work()
		if err == nil {
			return result, nil
		}
		if !strategy(retryCount, err) {
			return result, err
		}
	}
}

// WithExponentialBackoff returns a retry strategy which sleeps with
// exponential backoff between attempts and permits up to maxRetries retries,
// regardless of the error.
func WithExponentialBackoff(ctx context.Context, maxRetries int, initialDelay, maxDelay time.Duration) Strategy {
	return func(retryCount int, _ error) bool {
		if retryCount >= maxRetries {
			return false
		}
		return Wait(ctx, ExponentialDelay(retryCount, initialDelay, maxDelay)) == nil
	}
}
