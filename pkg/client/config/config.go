package config

import (
	"net/url"
	"time"

	"go.uber.org/multierr"
	yaml "gopkg.in/yaml.v2"
)

// Defaults applied by ParseClientConfig when a field is omitted.
const (
	DefaultMaxAttempts             = 3
	DefaultBroadcastTimeout        = 10 * time.Second
	DefaultReconnectBackoffCeiling = 30 * time.Second
	DefaultMaxMessageBytes         = 1 << 20 // 1 MiB
	DefaultMemoLimit               = 256
)

// YAMLClientConfig is the raw YAML shape of the client configuration.
// Durations are strings in Go duration syntax (e.g. "10s").
type YAMLClientConfig struct {
	ChainID                 string `yaml:"chain_id"`
	RPCURL                  string `yaml:"rpc_url"`
	WebsocketURL            string `yaml:"websocket_url"`
	MaxAttempts             int    `yaml:"max_attempts"`
	BroadcastTimeout        string `yaml:"broadcast_timeout"`
	ReconnectBackoffCeiling string `yaml:"reconnect_backoff_ceiling"`
	MaxMessageBytes         int    `yaml:"max_message_bytes"`
	MemoLimit               int    `yaml:"memo_limit"`
}

// ClientConfig is the hydrated, validated client configuration.
type ClientConfig struct {
	// ChainID is the identifier of the chain transactions are signed for.
	ChainID string
	// RPCURL is the node's JSON-RPC over HTTP endpoint.
	RPCURL *url.URL
	// WebsocketURL is the node's event subscription endpoint. Derived from
	// RPCURL when omitted.
	WebsocketURL string
	// MaxAttempts bounds the submit-with-retry loop, including the first try.
	MaxAttempts int
	// BroadcastTimeout bounds a single broadcast round trip.
	BroadcastTimeout time.Duration
	// ReconnectBackoffCeiling caps the event subscription reconnect backoff.
	ReconnectBackoffCeiling time.Duration
	// MaxMessageBytes is the per-message encoded size ceiling.
	MaxMessageBytes int
	// MemoLimit is the maximum memo length in bytes.
	MemoLimit int
}

// ParseClientConfig deserializes the given YAML into a validated
// ClientConfig, applying defaults for omitted fields. Validation failures are
// combined so a bad config reports every problem at once.
func ParseClientConfig(configContent []byte) (*ClientConfig, error) {
	var yamlConfig YAMLClientConfig

	if len(configContent) == 0 {
		return nil, ErrClientConfigEmpty
	}

	if err := yaml.Unmarshal(configContent, &yamlConfig); err != nil {
		return nil, ErrClientConfigUnmarshalYAML.Wrapf("%s", err)
	}

	var validationErr error

	if yamlConfig.ChainID == "" {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidChainID.Wrap("chain_id is required"))
	}

	var rpcURL *url.URL
	if yamlConfig.RPCURL == "" {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidURL.Wrap("rpc_url is required"))
	} else {
		var err error
		if rpcURL, err = url.Parse(yamlConfig.RPCURL); err != nil {
			validationErr = multierr.Append(validationErr,
				ErrClientConfigInvalidURL.Wrapf("rpc_url: %s", err))
		}
	}

	if yamlConfig.MaxAttempts < 0 {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidRetry.Wrapf("max_attempts must be >= 1, got %d", yamlConfig.MaxAttempts))
	}

	broadcastTimeout, err := parseDuration(yamlConfig.BroadcastTimeout, DefaultBroadcastTimeout)
	if err != nil {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidDuration.Wrapf("broadcast_timeout: %s", err))
	}

	reconnectBackoffCeiling, err := parseDuration(yamlConfig.ReconnectBackoffCeiling, DefaultReconnectBackoffCeiling)
	if err != nil {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidDuration.Wrapf("reconnect_backoff_ceiling: %s", err))
	}

	if yamlConfig.MaxMessageBytes < 0 {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidSize.Wrapf("max_message_bytes must be > 0, got %d", yamlConfig.MaxMessageBytes))
	}

	if yamlConfig.MemoLimit < 0 {
		validationErr = multierr.Append(validationErr,
			ErrClientConfigInvalidSize.Wrapf("memo_limit must be > 0, got %d", yamlConfig.MemoLimit))
	}

	if validationErr != nil {
		return nil, validationErr
	}

	websocketURL := yamlConfig.WebsocketURL
	if websocketURL == "" {
		websocketURL = RPCToWebsocketURL(rpcURL)
	}

	maxAttempts := yamlConfig.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}

	maxMessageBytes := yamlConfig.MaxMessageBytes
	if maxMessageBytes == 0 {
		maxMessageBytes = DefaultMaxMessageBytes
	}

	memoLimit := yamlConfig.MemoLimit
	if memoLimit == 0 {
		memoLimit = DefaultMemoLimit
	}

	return &ClientConfig{
		ChainID:                 yamlConfig.ChainID,
		RPCURL:                  rpcURL,
		WebsocketURL:            websocketURL,
		MaxAttempts:             maxAttempts,
		BroadcastTimeout:        broadcastTimeout,
		ReconnectBackoffCeiling: reconnectBackoffCeiling,
		MaxMessageBytes:         maxMessageBytes,
		MemoLimit:               memoLimit,
	}, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if duration <= 0 {
		return 0, ErrClientConfigInvalidDuration.Wrapf("must be positive, got %s", duration)
	}
	return duration, nil
}

// RPCToWebsocketURL converts a node RPC URL into the websocket URL used to
// subscribe to chain events.
func RPCToWebsocketURL(hostURL *url.URL) string {
	switch hostURL.Scheme {
	case "http", "ws", "tcp":
		return "ws://" + hostURL.Host + "/websocket"
	default:
		return "wss://" + hostURL.Host + "/websocket"
	}
}
