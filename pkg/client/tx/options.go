package tx

import (
	"time"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

// WithSigningKeyName sets the key store name of the key which transactions
// submitted by this client are signed with.
func WithSigningKeyName(keyName string) client.TxClientOption {
	return func(c client.TxClient) {
		c.(*txClient).signingKeyName = keyName
	}
}

// WithMaxAttempts overrides the configured bound on the submit retry loop,
// counting the first try.
func WithMaxAttempts(maxAttempts int) client.TxClientOption {
	return func(c client.TxClient) {
		c.(*txClient).maxAttempts = maxAttempts
	}
}

// WithRetryDelay sets the initial backoff delay between submit attempts. The
// delay doubles per retry up to the given ceiling.
func WithRetryDelay(delay, ceiling time.Duration) client.TxClientOption {
	return func(c client.TxClient) {
		tClient := c.(*txClient)
		tClient.retryDelay = delay
		tClient.retryDelayCeiling = ceiling
	}
}
