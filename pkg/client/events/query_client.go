package events

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/events/websocket"
	"github.com/virtengine/virtengine-sub005/pkg/either"
	"github.com/virtengine/virtengine-sub005/pkg/observable"
	"github.com/virtengine/virtengine-sub005/pkg/observable/channel"
)

var _ client.EventsQueryClient = (*eventsQueryClient)(nil)

// eventsQueryClient maintains one websocket connection per distinct query and
// fans each connection's raw frames out to any number of observers. A
// connection error is delivered in-band as the observable's terminal value,
// after which the query's state is dropped so the next EventsBytes call for
// it re-dials.
type eventsQueryClient struct {
	// endpointURL is the websocket URL of the node's event subscription
	// endpoint.
	endpointURL string
	dialer      client.Dialer

	// eventsBytesAndConnsMu guards the eventsBytesAndConns map.
	eventsBytesAndConnsMu sync.RWMutex
	// eventsBytesAndConns maps event subscription queries to their connection
	// and observable state.
	eventsBytesAndConns map[string]*eventsBytesAndConn

	closed bool
}

// eventsBytesAndConn pairs an eventsBytes observable with the connection
// which produces its notifications.
type eventsBytesAndConn struct {
	eventsBytes observable.Observable[either.Bytes]
	publishCh   chan<- either.Bytes
	conn        client.Connection
}

// NewEventsQueryClient returns an EventsQueryClient for the websocket
// endpoint at the given URL.
//
// Available options:
//   - WithDialer
func NewEventsQueryClient(endpointURL string, opts ...client.EventsQueryClientOption) client.EventsQueryClient {
	evtClient := &eventsQueryClient{
		endpointURL:         endpointURL,
		eventsBytesAndConns: make(map[string]*eventsBytesAndConn),
	}

	for _, opt := range opts {
		opt(evtClient)
	}

	if evtClient.dialer == nil {
		evtClient.dialer = websocket.NewWebsocketDialer()
	}

	return evtClient
}

// EventsBytes implements client.EventsQueryClient. Concurrent calls with the
// same query share a single connection.
func (evtClient *eventsQueryClient) EventsBytes(
	ctx context.Context,
	query string,
) (client.EventsBytesObservable, error) {
	evtClient.eventsBytesAndConnsMu.Lock()
	defer evtClient.eventsBytesAndConnsMu.Unlock()

	if evtClient.closed {
		return nil, ErrEventsSubscribe.Wrap("client is closed")
	}

	if existing, ok := evtClient.eventsBytesAndConns[query]; ok {
		return existing.eventsBytes, nil
	}

	conn, err := evtClient.openEventsConn(ctx, query)
	if err != nil {
		return nil, err
	}

	eventsBytes, publishCh := channel.NewObservable[either.Bytes]()
	evtConn := &eventsBytesAndConn{
		eventsBytes: eventsBytes,
		publishCh:   publishCh,
		conn:        conn,
	}
	evtClient.eventsBytesAndConns[query] = evtConn

	go evtClient.goPublishEventsBz(ctx, query, evtConn)

	return eventsBytes, nil
}

// Close implements client.EventsQueryClient. It closes every active
// connection, unsubscribes all observers, and rejects subsequent EventsBytes
// calls. It is idempotent.
func (evtClient *eventsQueryClient) Close() {
	evtClient.eventsBytesAndConnsMu.Lock()
	defer evtClient.eventsBytesAndConnsMu.Unlock()

	if evtClient.closed {
		return
	}
	evtClient.closed = true

	for query, evtConn := range evtClient.eventsBytesAndConns {
		_ = evtConn.conn.Close()
		evtConn.eventsBytes.UnsubscribeAll()
		delete(evtClient.eventsBytesAndConns, query)
	}
}

// openEventsConn dials the endpoint and sends the subscription request for
// the given query.
func (evtClient *eventsQueryClient) openEventsConn(ctx context.Context, query string) (client.Connection, error) {
	conn, err := evtClient.dialer.DialContext(ctx, evtClient.endpointURL)
	if err != nil {
		return nil, ErrEventsDial.Wrapf("%s: %s", evtClient.endpointURL, err)
	}

	requestBz, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      randRequestID(),
		"method":  "subscribe",
		"params": map[string]any{
			"query": query,
		},
	})
	if err != nil {
		_ = conn.Close()
		return nil, ErrEventsSubscribe.Wrapf("marshaling request: %s", err)
	}

	if err := conn.Send(requestBz); err != nil {
		_ = conn.Close()
		return nil, ErrEventsSubscribe.Wrapf("%q: %s", query, err)
	}

	return conn, nil
}

// goPublishEventsBz blocks on receiving from the connection and publishes
// each received frame to the query's observable. On a receive error it
// publishes the error in-band as the observable's terminal value, closes the
// observable, and drops the query's state. It is intended to be called in a
// goroutine.
func (evtClient *eventsQueryClient) goPublishEventsBz(
	ctx context.Context,
	query string,
	evtConn *eventsBytesAndConn,
) {
	// Closing the publish channel terminates the observable's fan-out and
	// unsubscribes all of its observers.
	defer close(evtConn.publishCh)

	for {
		eventBz, err := evtConn.conn.Receive()
		if err != nil {
			evtClient.dropQuery(query, evtConn)

			select {
			case evtConn.publishCh <- either.Error[[]byte](ErrEventsConnClosed.Wrapf("%s", err)):
			case <-ctx.Done():
			}
			return
		}

		select {
		case evtConn.publishCh <- either.Success(eventBz):
		case <-ctx.Done():
			evtClient.dropQuery(query, evtConn)
			_ = evtConn.conn.Close()
			return
		}
	}
}

// dropQuery removes the query's state if it is still the current one, so a
// subsequent EventsBytes call re-dials.
func (evtClient *eventsQueryClient) dropQuery(query string, evtConn *eventsBytesAndConn) {
	evtClient.eventsBytesAndConnsMu.Lock()
	defer evtClient.eventsBytesAndConnsMu.Unlock()

	if current, ok := evtClient.eventsBytesAndConns[query]; ok && current == evtConn {
		delete(evtClient.eventsBytesAndConns, query)
	}
}

// randRequestID returns a random 8 byte, base64 request ID used to correlate
// JSON-RPC requests and responses.
func randRequestID() string {
	requestIDBz := make([]byte, 8)
	if _, err := rand.Read(requestIDBz); err != nil {
		panic(fmt.Sprintf("failed to generate random request ID: %s", err))
	}
	return base64.StdEncoding.EncodeToString(requestIDBz)
}
