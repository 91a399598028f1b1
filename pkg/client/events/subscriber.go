package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cosmossdk.io/depinject"
	"github.com/rs/zerolog"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/config"
	"github.com/virtengine/virtengine-sub005/pkg/either"
	"github.com/virtengine/virtengine-sub005/pkg/observable"
	"github.com/virtengine/virtengine-sub005/pkg/retry"
)

var _ client.EventsClient = (*eventsClient)(nil)

const (
	// defaultConnRetryLimit is the number of reconnect attempts a subscription
	// makes before giving up and closing its event channel.
	defaultConnRetryLimit = 10
	// reconnectInitialDelay is the backoff before the first reconnect attempt;
	// it doubles per attempt up to the configured ceiling.
	reconnectInitialDelay = time.Second
	// subscriptionBufferSize absorbs bursts between the frame consumer and the
	// subscription's consumer.
	subscriptionBufferSize = 50
)

// eventsClient turns raw event frames into typed chain events. Each
// subscription owns a serving goroutine which reconnects with exponential
// backoff when the transport drops and delivers exactly one gap marker event
// after each successful reconnect, since events which occurred while the
// transport was down are not replayed.
type eventsClient struct {
	logger      zerolog.Logger
	queryClient client.EventsQueryClient

	connRetryLimit int
	backoffCeiling time.Duration

	subsMu sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

// NewEventsClient returns a client.EventsClient backed by the given
// dependencies.
//
// Required dependencies:
//   - zerolog.Logger
//   - client.EventsQueryClient
//   - *config.ClientConfig
//
// Available options:
//   - WithConnRetryLimit
//   - WithReconnectBackoffCeiling
func NewEventsClient(
	ctx context.Context,
	deps depinject.Config,
	opts ...client.EventsClientOption,
) (client.EventsClient, error) {
	evtClient := &eventsClient{
		connRetryLimit: defaultConnRetryLimit,
		subs:           make(map[*subscription]struct{}),
	}

	var clientConfig *config.ClientConfig
	if err := depinject.Inject(
		deps,
		&evtClient.logger,
		&evtClient.queryClient,
		&clientConfig,
	); err != nil {
		return nil, err
	}
	evtClient.backoffCeiling = clientConfig.ReconnectBackoffCeiling

	for _, opt := range opts {
		opt(evtClient)
	}

	return evtClient, nil
}

// subscription is a live typed event stream served by its own goroutine.
type subscription struct {
	eventsCh  chan client.ChainEvent
	closedCh  chan struct{}
	closeOnce sync.Once
}

// Events implements client.Subscription.
func (sub *subscription) Events() <-chan client.ChainEvent {
	return sub.eventsCh
}

// Close implements client.Subscription. It is idempotent; the events channel
// is closed by the serving goroutine once it observes the close.
func (sub *subscription) Close() {
	sub.closeOnce.Do(func() {
		close(sub.closedCh)
	})
}

// Subscribe implements client.EventsClient.
func (evtClient *eventsClient) Subscribe(ctx context.Context, query string) (client.Subscription, error) {
	evtClient.subsMu.Lock()
	defer evtClient.subsMu.Unlock()

	if evtClient.closed {
		return nil, ErrSubscriptionClosed.Wrap("client is closed")
	}

	sub := &subscription{
		eventsCh: make(chan client.ChainEvent, subscriptionBufferSize),
		closedCh: make(chan struct{}),
	}
	evtClient.subs[sub] = struct{}{}

	go evtClient.goServe(ctx, sub, query)

	return sub, nil
}

// AwaitConfirmation implements client.EventsClient. A gap marker observed
// while waiting does not abort the wait; the confirmation may still arrive
// or the timeout fires.
func (evtClient *eventsClient) AwaitConfirmation(
	ctx context.Context,
	txHash string,
	timeout time.Duration,
) (client.ChainEvent, error) {
	query := fmt.Sprintf("tm.event='Tx' AND tx.hash='%s'", txHash)

	sub, err := evtClient.Subscribe(ctx, query)
	if err != nil {
		return client.ChainEvent{}, err
	}
	defer sub.Close()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return client.ChainEvent{}, ctx.Err()

		case <-timer.C:
			return client.ChainEvent{}, ErrConfirmationTimeout.Wrapf("tx %s after %s", txHash, timeout)

		case event, ok := <-sub.Events():
			if !ok {
				return client.ChainEvent{}, ErrSubscriptionClosed.Wrapf("awaiting tx %s", txHash)
			}
			if event.GapDetected() {
				evtClient.logger.Debug().
					Str("tx_hash", txHash).
					Msg("gap detected while awaiting confirmation")
				continue
			}
			if event.TxHash == txHash {
				return event, nil
			}
		}
	}
}

// Close implements client.EventsClient.
func (evtClient *eventsClient) Close() {
	evtClient.subsMu.Lock()
	if evtClient.closed {
		evtClient.subsMu.Unlock()
		return
	}
	evtClient.closed = true
	subs := make([]*subscription, 0, len(evtClient.subs))
	for sub := range evtClient.subs {
		subs = append(subs, sub)
	}
	evtClient.subsMu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	evtClient.queryClient.Close()
}

// goServe drives one subscription: it subscribes to the raw frame stream,
// decodes frames into typed events, and reconnects with backoff when the
// stream terminates with a transport error. After every successful reconnect
// it delivers one gap marker before resuming. It is intended to be called in
// a goroutine and closes the subscription's event channel on return.
func (evtClient *eventsClient) goServe(ctx context.Context, sub *subscription, query string) {
	defer func() {
		evtClient.removeSub(sub)
		close(sub.eventsCh)
	}()

	reconnects := 0
	// gapPending is set when an established stream drops and stays set across
	// failed re-dials: the marker is owed to the consumer until a stream opens
	// again, however many attempts that takes.
	gapPending := false

	for {
		eventsBytes, err := evtClient.queryClient.EventsBytes(ctx, query)
		if err != nil {
			evtClient.logger.Warn().
				Err(err).
				Str("query", query).
				Int("reconnects", reconnects).
				Msg("failed to open events stream")

			if !evtClient.backoff(ctx, sub, &reconnects, query) {
				return
			}
			continue
		}

		observer := eventsBytes.Subscribe(ctx)

		if gapPending {
			// The stream was re-established after a drop: events emitted in
			// the interim were not buffered, so mark the discontinuity.
			if !evtClient.deliver(ctx, sub, client.ChainEvent{Type: client.EventTypeGapDetected}) {
				observer.Unsubscribe()
				return
			}
			gapPending = false
		}
		reconnects = 0

		streamErr, done := evtClient.consume(ctx, sub, observer)
		observer.Unsubscribe()

		if done {
			return
		}
		gapPending = true

		evtClient.logger.Warn().
			Err(streamErr).
			Str("query", query).
			Msg("events stream terminated, reconnecting")

		if !evtClient.backoff(ctx, sub, &reconnects, query) {
			return
		}
	}
}

// consume drains the raw frame observer, decoding and delivering typed
// events. It returns done=true when the subscription or context terminated;
// otherwise it returns the stream error which ended delivery so the caller
// can reconnect.
func (evtClient *eventsClient) consume(
	ctx context.Context,
	sub *subscription,
	observer observable.Observer[either.Bytes],
) (error, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, true

		case <-sub.closedCh:
			return nil, true

		case eventsBzEither, ok := <-observer.Ch():
			if !ok {
				// The observable closed without an in-band error: the query
				// client was closed or the context canceled upstream.
				return nil, true
			}

			frameBz, err := eventsBzEither.ValueOrError()
			if err != nil {
				return err, false
			}

			chainEvents, err := ParseEvents(frameBz)
			if err != nil {
				// Acknowledgement or unparseable frame; skip it.
				evtClient.logger.Debug().Err(err).Msg("skipping non-event frame")
				continue
			}

			for _, event := range chainEvents {
				if !evtClient.deliver(ctx, sub, event) {
					return nil, true
				}
			}
		}
	}
}

// deliver sends one event to the subscription's consumer, returning false if
// the subscription or context terminated first.
func (evtClient *eventsClient) deliver(ctx context.Context, sub *subscription, event client.ChainEvent) bool {
	select {
	case sub.eventsCh <- event:
		return true
	case <-sub.closedCh:
		return false
	case <-ctx.Done():
		return false
	}
}

// backoff sleeps before the next reconnect attempt, returning false when the
// retry budget is exhausted or the subscription or context terminated.
func (evtClient *eventsClient) backoff(
	ctx context.Context,
	sub *subscription,
	reconnects *int,
	query string,
) bool {
	*reconnects++
	if evtClient.connRetryLimit >= 0 && *reconnects > evtClient.connRetryLimit {
		evtClient.logger.Error().
			Str("query", query).
			Int("conn_retry_limit", evtClient.connRetryLimit).
			Msg("reconnect budget exhausted, closing subscription")
		return false
	}

	delay := retry.ExponentialDelay(*reconnects-1, reconnectInitialDelay, evtClient.backoffCeiling)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-sub.closedCh:
		return false
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// removeSub drops the subscription from the client's live set.
func (evtClient *eventsClient) removeSub(sub *subscription) {
	evtClient.subsMu.Lock()
	defer evtClient.subsMu.Unlock()

	delete(evtClient.subs, sub)
}
