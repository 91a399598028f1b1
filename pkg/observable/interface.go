package observable

import "context"

// NOTE: This is intentionally a small, custom notifications package rather
// than a dependency on a full reactive-streams library; the SDK only needs
// multi-observer fan-out over channels.

// Observable allows multiple observers to be notified of new values
// asynchronously. It is analogous to a publisher in a fan-out design.
type Observable[V any] interface {
	// Subscribe returns an observer which is notified, in FIFO order, when the
	// observable's publish channel receives a value. The observer is
	// unsubscribed when the given context is canceled.
	Subscribe(context.Context) Observer[V]
	// UnsubscribeAll unsubscribes and removes all observers from the observable.
	UnsubscribeAll()
}

// Observer provides access to the notified channel and allows unsubscribing
// from an Observable.
type Observer[V any] interface {
	// Unsubscribe closes the observer's channel and removes it from its
	// observable's observer list.
	Unsubscribe()
	// Ch returns a receive-only notification channel.
	Ch() <-chan V
	// IsClosed returns true if the observer has been unsubscribed; a closed
	// observer cannot be reused.
	IsClosed() bool
}
