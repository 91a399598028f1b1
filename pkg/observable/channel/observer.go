package channel

import (
	"context"
	"sync"

	"github.com/virtengine/virtengine-sub005/pkg/observable"
)

// defaultObserverBufferSize is the buffer size of an observer's channel. It
// absorbs observers which consume at different rates; an observer whose
// buffer is full blocks the fan-out until it drains or unsubscribes.
const defaultObserverBufferSize = 50

var _ observable.Observer[any] = (*channelObserver[any])(nil)

// channelObserver implements the observable.Observer interface.
type channelObserver[V any] struct {
	ctx context.Context
	// onUnsubscribe removes this observer from its observable's observer list.
	onUnsubscribe func(toRemove *channelObserver[V])
	// mu protects observerCh and closed.
	mu sync.Mutex
	// observerCh is the channel on which values are emitted to the observer.
	observerCh chan V
	// closed is set in Unsubscribe; closed observers cannot be reused.
	closed bool
}

func newObserver[V any](
	ctx context.Context,
	onUnsubscribe func(toRemove *channelObserver[V]),
) *channelObserver[V] {
	return &channelObserver[V]{
		ctx:           ctx,
		onUnsubscribe: onUnsubscribe,
		observerCh:    make(chan V, defaultObserverBufferSize),
	}
}

// Unsubscribe closes the observer's channel and removes it from its
// observable. It is idempotent.
func (obsvr *channelObserver[V]) Unsubscribe() {
	obsvr.mu.Lock()
	if obsvr.closed {
		obsvr.mu.Unlock()
		return
	}
	obsvr.closed = true
	close(obsvr.observerCh)
	obsvr.mu.Unlock()

	obsvr.onUnsubscribe(obsvr)
}

// Ch returns a receive-only notification channel.
func (obsvr *channelObserver[V]) Ch() <-chan V {
	return obsvr.observerCh
}

// IsClosed returns true if the observer has been unsubscribed.
func (obsvr *channelObserver[V]) IsClosed() bool {
	obsvr.mu.Lock()
	defer obsvr.mu.Unlock()

	return obsvr.closed
}

// notify sends a value on the observer's channel. The observer's mutex is
// held for the duration of the send so that a concurrent Unsubscribe cannot
// close the channel mid-send. Returns without sending if the observer is
// closed or its context is done.
func (obsvr *channelObserver[V]) notify(value V) {
	obsvr.mu.Lock()
	defer obsvr.mu.Unlock()

	if obsvr.closed {
		return
	}

	if obsvr.ctx != nil {
		select {
		case obsvr.observerCh <- value:
		case <-obsvr.ctx.Done():
		}
		return
	}

	obsvr.observerCh <- value
}
