package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/retry"
)

func TestExponentialDelay(t *testing.T) {
	tests := []struct {
		desc         string
		retryCount   int
		initialDelay time.Duration
		maxDelay     time.Duration
		expected     time.Duration
	}{
		{"first retry", 0, 100 * time.Millisecond, time.Minute, 100 * time.Millisecond},
		{"second retry doubles", 1, 100 * time.Millisecond, time.Minute, 200 * time.Millisecond},
		{"third retry doubles again", 2, 100 * time.Millisecond, time.Minute, 400 * time.Millisecond},
		{"capped at max", 20, 100 * time.Millisecond, time.Second, time.Second},
		{"initial above max is capped", 0, time.Minute, time.Second, time.Second},
		{"defaults applied", 0, 0, 0, retry.DefaultInitialDelay},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			delay := retry.ExponentialDelay(test.retryCount, test.initialDelay, test.maxDelay)
			require.Equal(t, test.expected, delay)
		})
	}
}

func TestWait_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry.Wait(ctx, time.Minute)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWait_Elapses(t *testing.T) {
	require.NoError(t, retry.Wait(context.Background(), time.Millisecond))
}

func TestCall_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	work := func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", errors.New("transient")
		}
		return "done", nil
	}

	result, err := retry.Call(work, retry.WithExponentialBackoff(
		context.Background(), 5, time.Millisecond, 2*time.Millisecond,
	))
	require.NoError(t, err)
	require.Equal(t, "done", result)
	require.Equal(t, 3, attempts)
}

func TestCall_ExhaustsRetries(t *testing.T) {
	expectedErr := errors.New("permanent")
	attempts := 0
	work := func() (string, error) {
		attempts++
		return "", expectedErr
	}

	_, err := retry.Call(work, retry.WithExponentialBackoff(
		context.Background(), 2, time.Millisecond, 2*time.Millisecond,
	))
	require.ErrorIs(t, err, expectedErr)
	// The first attempt plus two retries.
	require.Equal(t, 3, attempts)
}

func TestCall_StrategyStopsOnTerminalError(t *testing.T) {
	terminalErr := errors.New("terminal")
	attempts := 0
	work := func() (string, error) {
		attempts++
		return "", terminalErr
	}

	_, err := retry.Call(work, func(_ int, err error) bool {
		return !errors.Is(err, terminalErr)
	})
	require.ErrorIs(t, err, terminalErr)
	require.Equal(t, 1, attempts)
}
