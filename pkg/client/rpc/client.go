package rpc

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	rpctypes "github.com/cometbft/cometbft/rpc/jsonrpc/types"
)

// defaultRequestTimeout bounds a single JSON-RPC round trip when the caller's
// context carries no deadline of its own.
const defaultRequestTimeout = 10 * time.Second

// Client is a JSON-RPC over HTTP client for a VirtEngine node's RPC endpoint.
type Client struct {
	url        string
	httpClient *http.Client
}

// ClientOption customizes a Client during construction.
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client, e.g. to configure transport
// timeouts or test doubles.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient returns a JSON-RPC client for the node at the given URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// URL returns the node RPC endpoint this client targets.
func (c *Client) URL() string {
	return c.url
}

// Call performs a single JSON-RPC request for the given method and params,
// unmarshaling the response result into result when it is non-nil. Transport
// and decoding failures are wrapped in ErrRequestFailed; error responses from
// the node are wrapped in ErrResponse.
func (c *Client) Call(ctx context.Context, method string, params map[string]any, result any) error {
	requestBz, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      randRequestID(),
		"method":  method,
		"params":  params,
	})
	if err != nil {
		return ErrRequestFailed.Wrapf("marshaling %s request: %s", method, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(requestBz))
	if err != nil {
		return ErrRequestFailed.Wrapf("constructing %s request: %s", method, err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return ErrRequestFailed.Wrapf("%s: %s", method, err)
	}
	defer response.Body.Close()

	responseBz, err := io.ReadAll(response.Body)
	if err != nil {
		return ErrRequestFailed.Wrapf("reading %s response: %s", method, err)
	}

	var rpcResponse rpctypes.RPCResponse
	if err = json.Unmarshal(responseBz, &rpcResponse); err != nil {
		return ErrRequestFailed.Wrapf("unmarshaling %s response: %s", method, err)
	}

	if rpcResponse.Error != nil {
		return ErrResponse.Wrapf(
			"%s: code %d: %s: %s",
			method, rpcResponse.Error.Code, rpcResponse.Error.Message, rpcResponse.Error.Data,
		)
	}

	if result != nil {
		if err = json.Unmarshal(rpcResponse.Result, result); err != nil {
			return ErrRequestFailed.Wrapf("unmarshaling %s result: %s", method, err)
		}
	}

	return nil
}

// randRequestID returns a random 8 byte, base64 request ID used to correlate
// JSON-RPC requests and responses. Uniqueness only matters per client, so the
// size and keyspace are arbitrary.
func randRequestID() string {
	requestIDBz := make([]byte, 8)
	if _, err := rand.Read(requestIDBz); err != nil {
		panic(fmt.Sprintf("failed to generate random request ID: %s", err))
	}
	return base64.StdEncoding.EncodeToString(requestIDBz)
}
