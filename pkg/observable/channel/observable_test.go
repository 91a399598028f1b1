package channel_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/observable/channel"
)

const notifyTimeout = 3 * time.Second

func mustReceive[V any](t *testing.T, ch <-chan V) V {
	t.Helper()

	select {
	case value, ok := <-ch:
		require.True(t, ok, "channel closed")
		return value
	case <-time.After(notifyTimeout):
		t.Fatal("timed out waiting for notification")
		var zero V
		return zero
	}
}

func mustBeClosed[V any](t *testing.T, ch <-chan V) {
	t.Helper()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "expected channel close, got value")
	case <-time.After(notifyTimeout):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestObservable_FanOut(t *testing.T) {
	ctx := context.Background()
	obs, publishCh := channel.NewObservable[int]()

	first := obs.Subscribe(ctx)
	second := obs.Subscribe(ctx)

	publishCh <- 42

	require.Equal(t, 42, mustReceive(t, first.Ch()))
	require.Equal(t, 42, mustReceive(t, second.Ch()))
}

func TestObservable_Ordering(t *testing.T) {
	ctx := context.Background()
	obs, publishCh := channel.NewObservable[int]()
	observer := obs.Subscribe(ctx)

	for i := 0; i < 10; i++ {
		publishCh <- i
	}

	for i := 0; i < 10; i++ {
		require.Equal(t, i, mustReceive(t, observer.Ch()))
	}
}

func TestObserver_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	obs, publishCh := channel.NewObservable[int]()

	staying := obs.Subscribe(ctx)
	leaving := obs.Subscribe(ctx)

	leaving.Unsubscribe()
	require.True(t, leaving.IsClosed())
	mustBeClosed(t, leaving.Ch())

	// Unsubscribe is idempotent.
	leaving.Unsubscribe()

	publishCh <- 7
	require.Equal(t, 7, mustReceive(t, staying.Ch()))
}

func TestObservable_UnsubscribeAll(t *testing.T) {
	ctx := context.Background()
	obs, _ := channel.NewObservable[int]()

	first := obs.Subscribe(ctx)
	second := obs.Subscribe(ctx)

	obs.UnsubscribeAll()

	mustBeClosed(t, first.Ch())
	mustBeClosed(t, second.Ch())
	require.True(t, first.IsClosed())
	require.True(t, second.IsClosed())
}

func TestObservable_ClosingPublishChannelUnsubscribesAll(t *testing.T) {
	ctx := context.Background()
	obs, publishCh := channel.NewObservable[int]()
	observer := obs.Subscribe(ctx)

	publishCh <- 1
	require.Equal(t, 1, mustReceive(t, observer.Ch()))

	close(publishCh)
	mustBeClosed(t, observer.Ch())
}

func TestObservable_ContextCancelUnsubscribes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	obs, _ := channel.NewObservable[int]()
	observer := obs.Subscribe(ctx)

	cancel()
	mustBeClosed(t, observer.Ch())

	require.Eventually(t, observer.IsClosed, notifyTimeout, 10*time.Millisecond)
}
