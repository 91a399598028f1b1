package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/events"
	"github.com/virtengine/virtengine-sub005/pkg/either"
)

const (
	testEndpointURL = "ws://127.0.0.1:26657/websocket"
	testQuery       = "tm.event='Tx'"
	recvTimeout     = 3 * time.Second
)

func newTestQueryClient(dialer *fakeDialer) client.EventsQueryClient {
	return events.NewEventsQueryClient(testEndpointURL, events.WithDialer(dialer))
}

// nextEventsBz receives the next either.Bytes notification or fails the test.
func nextEventsBz(t *testing.T, ch <-chan either.Bytes) either.Bytes {
	t.Helper()

	select {
	case eventsBzEither, ok := <-ch:
		require.True(t, ok, "observer channel closed")
		return eventsBzEither
	case <-time.After(recvTimeout):
		t.Fatal("timed out waiting for event bytes")
		return either.Bytes{}
	}
}

func TestEventsQueryClient_SendsSubscribeRequest(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	queryClient := newTestQueryClient(dialer)
	defer queryClient.Close()

	_, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)

	require.Equal(t, 1, dialer.dialCount())
	sent := dialer.conn(0).sentMessages()
	require.Len(t, sent, 1)

	var request map[string]any
	require.NoError(t, json.Unmarshal(sent[0], &request))
	require.Equal(t, "subscribe", request["method"])
	params, ok := request["params"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, testQuery, params["query"])
}

func TestEventsQueryClient_PublishesFrames(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	queryClient := newTestQueryClient(dialer)
	defer queryClient.Close()

	eventsBytes, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)
	observer := eventsBytes.Subscribe(ctx)

	dialer.conn(0).pushFrame([]byte("frame-1"))
	dialer.conn(0).pushFrame([]byte("frame-2"))

	for _, expected := range []string{"frame-1", "frame-2"} {
		frameBz, err := nextEventsBz(t, observer.Ch()).ValueOrError()
		require.NoError(t, err)
		require.Equal(t, expected, string(frameBz))
	}
}

func TestEventsQueryClient_SameQuerySharesConnection(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	queryClient := newTestQueryClient(dialer)
	defer queryClient.Close()

	first, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)
	second, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, 1, dialer.dialCount())

	_, err = queryClient.EventsBytes(ctx, "tm.event='NewBlock'")
	require.NoError(t, err)
	require.Equal(t, 2, dialer.dialCount())
}

func TestEventsQueryClient_ConnErrorIsTerminalInBand(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	queryClient := newTestQueryClient(dialer)
	defer queryClient.Close()

	eventsBytes, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)
	observer := eventsBytes.Subscribe(ctx)

	dialer.conn(0).fail(errors.New("connection reset by peer"))

	_, streamErr := nextEventsBz(t, observer.Ch()).ValueOrError()
	require.ErrorIs(t, streamErr, events.ErrEventsConnClosed)

	// The error is terminal: the observer channel closes after it.
	select {
	case _, ok := <-observer.Ch():
		require.False(t, ok)
	case <-time.After(recvTimeout):
		t.Fatal("observer channel not closed after terminal error")
	}

	// A fresh EventsBytes call for the same query re-dials.
	_, err = queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)
	require.Equal(t, 2, dialer.dialCount())
}

func TestEventsQueryClient_Close(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	queryClient := newTestQueryClient(dialer)

	eventsBytes, err := queryClient.EventsBytes(ctx, testQuery)
	require.NoError(t, err)
	observer := eventsBytes.Subscribe(ctx)

	queryClient.Close()
	// Idempotent.
	queryClient.Close()

	require.True(t, dialer.conn(0).isClosed())

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-observer.Ch():
			return !ok
		default:
			return false
		}
	}, recvTimeout, 10*time.Millisecond)

	_, err = queryClient.EventsBytes(ctx, testQuery)
	require.ErrorIs(t, err, events.ErrEventsSubscribe)
}

func TestEventsQueryClient_DialError(t *testing.T) {
	dialer := &fakeDialer{dialErr: errors.New("connection refused")}
	queryClient := newTestQueryClient(dialer)
	defer queryClient.Close()

	_, err := queryClient.EventsBytes(context.Background(), testQuery)
	require.ErrorIs(t, err, events.ErrEventsDial)
}
