package events

import (
	"time"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

// WithDialer overrides the events query client's default websocket dialer,
// e.g. to inject a test transport.
func WithDialer(dialer client.Dialer) client.EventsQueryClientOption {
	return func(c client.EventsQueryClient) {
		c.(*eventsQueryClient).dialer = dialer
	}
}

// WithConnRetryLimit bounds the number of reconnect attempts a subscription
// makes before closing its event channel. A negative limit retries forever.
func WithConnRetryLimit(limit int) client.EventsClientOption {
	return func(c client.EventsClient) {
		c.(*eventsClient).connRetryLimit = limit
	}
}

// WithReconnectBackoffCeiling overrides the configured cap on the reconnect
// backoff delay.
func WithReconnectBackoffCeiling(ceiling time.Duration) client.EventsClientOption {
	return func(c client.EventsClient) {
		c.(*eventsClient).backoffCeiling = ceiling
	}
}
