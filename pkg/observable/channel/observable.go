package channel

import (
	"context"
	"sync"

	"github.com/virtengine/virtengine-sub005/pkg/observable"
)

var _ observable.Observable[any] = (*channelObservable[any])(nil)

// channelObservable implements the observable.Observable interface. It is
// notified via its corresponding publish channel and fans each value out to
// all subscribed observers.
type channelObservable[V any] struct {
	// publishCh is the channel whose received values are fanned out to observers.
	publishCh chan V
	// observersMu protects the observers slice.
	observersMu sync.Mutex
	// observers is the list of currently subscribed observers.
	observers []*channelObserver[V]
}

// NewObservable returns a new observable along with the channel used to
// publish values to it. Closing the publish channel unsubscribes all
// observers, closing their channels.
func NewObservable[V any]() (observable.Observable[V], chan<- V) {
	obs := &channelObservable[V]{
		publishCh: make(chan V),
	}

	go obs.goFanOut()

	return obs, obs.publishCh
}

// Subscribe returns an observer which is notified when the publish channel
// receives a value. The observer is unsubscribed when ctx is canceled.
func (obs *channelObservable[V]) Subscribe(ctx context.Context) observable.Observer[V] {
	observer := newObserver(ctx, obs.remove)

	obs.observersMu.Lock()
	obs.observers = append(obs.observers, observer)
	obs.observersMu.Unlock()

	if ctx != nil {
		go func() {
			<-ctx.Done()
			observer.Unsubscribe()
		}()
	}

	return observer
}

// UnsubscribeAll unsubscribes and removes all observers from the observable.
func (obs *channelObservable[V]) UnsubscribeAll() {
	obs.observersMu.Lock()
	observers := make([]*channelObserver[V], len(obs.observers))
	copy(observers, obs.observers)
	obs.observersMu.Unlock()

	// Unsubscribe outside the lock; each observer removes itself via remove().
	for _, observer := range observers {
		observer.Unsubscribe()
	}
}

// goFanOut receives from the publish channel and notifies all observers of
// each value. It is blocking and runs in its own goroutine for the lifetime
// of the publish channel.
func (obs *channelObservable[V]) goFanOut() {
	for value := range obs.publishCh {
		obs.observersMu.Lock()
		observers := make([]*channelObserver[V], len(obs.observers))
		copy(observers, obs.observers)
		obs.observersMu.Unlock()

		for _, observer := range observers {
			observer.notify(value)
		}
	}

	// The publish channel was closed; all observers are closed as well.
	obs.UnsubscribeAll()
}

// remove deletes the given observer from the observable's observer list.
func (obs *channelObservable[V]) remove(toRemove *channelObserver[V]) {
	obs.observersMu.Lock()
	defer obs.observersMu.Unlock()

	for i, observer := range obs.observers {
		if observer == toRemove {
			obs.observers = append(obs.observers[:i], obs.observers[i+1:]...)
			return
		}
	}
}
