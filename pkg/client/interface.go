package client

import (
	"context"
	"time"

	"github.com/virtengine/virtengine-sub005/pkg/either"
	"github.com/virtengine/virtengine-sub005/pkg/observable"
)

// KeyStore holds private key material and produces signatures over byte
// strings. Keys are referenced by name; raw private key bytes never cross
// this boundary.
type KeyStore interface {
	// Sign produces a signature over the given payload using the named key.
	Sign(name string, payload []byte) ([]byte, error)
	// PublicKey returns the compressed public key of the named key.
	PublicKey(name string) ([]byte, error)
	// Address returns the bech32 account address of the named key.
	Address(name string) (string, error)
}

// AccountQueryClient fetches the chain's current view of an account: its
// number and sequence.
type AccountQueryClient interface {
	Account(ctx context.Context, address string) (*Account, error)
}

// SequenceTracker hands out per-account sequence numbers. It caches the
// node's view on first use and increments optimistically so that
// back-to-back submissions from one process never reuse a sequence.
type SequenceTracker interface {
	// NextSequence returns the account number and the next unused sequence
	// for the given address, fetching from the node on first use. Sequences
	// returned for one address are strictly increasing within a process.
	NextSequence(ctx context.Context, address string) (accountNumber, sequence uint64, err error)
	// Invalidate drops the cached entry for the given address so the next
	// NextSequence call re-fetches from the node.
	Invalidate(address string)
}

// TxContext consolidates the operational dependencies of the sender side of
// the transaction lifecycle: build, sign, encode, broadcast, query.
type TxContext interface {
	// BuildTx assembles an unsigned transaction from the given messages, fee,
	// memo, and signing metadata, validating all construction constraints.
	BuildTx(
		msgs []EncodedMessage,
		fee Fee,
		memo string,
		accountNumber, sequence uint64,
	) (*UnsignedTx, error)

	// SignTx produces a signed transaction carrying one signature per given
	// key name, in order.
	SignTx(unsignedTx *UnsignedTx, keyNames ...string) (*SignedTx, error)

	// EncodeTx returns the deterministic byte encoding of the signed
	// transaction, suitable for broadcast.
	EncodeTx(signedTx *SignedTx) ([]byte, error)

	// BroadcastTx submits the encoded transaction and returns the node's
	// synchronous check-tx result.
	BroadcastTx(ctx context.Context, txBytes []byte) (*BroadcastResult, error)

	// SignerAddress returns the bech32 address of the given signing key.
	SignerAddress(keyName string) (string, error)
}

// TxClient orchestrates building, signing, and broadcasting of transactions,
// including sequence management and bounded retry on sequence conflicts.
type TxClient interface {
	// Broadcast submits an already-signed transaction and interprets the
	// node's synchronous result. It never blocks for block inclusion.
	Broadcast(ctx context.Context, signedTx *SignedTx) (*BroadcastResult, error)
	// SubmitWithRetry composes sequence tracking, building, signing, and
	// broadcast in a bounded retry loop. Sequence conflicts and transient
	// network errors are retried with backoff up to the configured attempt
	// limit; validation and signing errors and node rejections are terminal.
	SubmitWithRetry(
		ctx context.Context,
		msgs []EncodedMessage,
		fee Fee,
		memo string,
	) (*BroadcastResult, error)
}

// EventsBytesObservable is an observable which is notified with an either
// value containing the raw event frame bytes or the transport error which
// terminated the stream.
type EventsBytesObservable = observable.Observable[either.Bytes]

// EventsQueryClient subscribes to chain event messages matching a query and
// exposes the raw frame stream.
type EventsQueryClient interface {
	// EventsBytes returns an observable notified about chain event frames
	// matching the given query. At most one error is delivered per
	// subscription, immediately before it closes.
	EventsBytes(ctx context.Context, query string) (EventsBytesObservable, error)
	// Close unsubscribes all observers of every active query and releases
	// the underlying connections. It is idempotent.
	Close()
}

// Subscription is a live, typed chain event stream. Closing it terminates
// delivery and releases the underlying connection.
type Subscription interface {
	// Events returns the channel on which chain events are delivered. The
	// channel is closed when the subscription is closed or its retry budget
	// is exhausted.
	Events() <-chan ChainEvent
	// Close terminates delivery and releases the transport. It is idempotent.
	Close()
}

// EventsClient delivers typed chain events for caller-supplied queries,
// reconnecting with backoff when the transport drops and marking delivery
// gaps in-band.
type EventsClient interface {
	// Subscribe opens a typed event subscription for the given query. After
	// a transport drop and successful reconnect, exactly one gap marker event
	// (EventTypeGapDetected) is delivered before delivery resumes.
	Subscribe(ctx context.Context, query string) (Subscription, error)
	// AwaitConfirmation blocks until an event for the given transaction hash
	// arrives, the timeout elapses, or ctx is done.
	AwaitConfirmation(ctx context.Context, txHash string, timeout time.Duration) (ChainEvent, error)
	// Close releases all subscriptions and the underlying query client.
	Close()
}

// Connection is a transport-agnostic, bi-directional, message-passing
// interface.
type Connection interface {
	// Receive blocks until a message is received or an error occurs.
	Receive() (msg []byte, err error)
	// Send sends a message and may return a synchronous error.
	Send(msg []byte) error
	// Close closes the connection.
	Close() error
}

// Dialer encapsulates the construction of connections.
type Dialer interface {
	// DialContext constructs a connection to the given URL and returns it or
	// a synchronous error.
	DialContext(ctx context.Context, urlStr string) (Connection, error)
}

// TxClientOption customizes a TxClient during construction.
type TxClientOption func(TxClient)

// EventsQueryClientOption customizes an EventsQueryClient during construction.
type EventsQueryClientOption func(EventsQueryClient)

// EventsClientOption customizes an EventsClient during construction.
type EventsClientOption func(EventsClient)
