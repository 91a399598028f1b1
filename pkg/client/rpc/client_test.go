package rpc_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
)

func TestClient_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "2.0", request["jsonrpc"])
		require.Equal(t, "status", request["method"])
		require.NotEmpty(t, request["id"])

		params, ok := request["params"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "value", params["key"])

		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%q,"result":{"field":"hello"}}`, request["id"])
	}))
	defer server.Close()

	client := rpc.NewClient(server.URL)

	var result struct {
		Field string `json:"field"`
	}
	err := client.Call(context.Background(), "status", map[string]any{"key": "value"}, &result)
	require.NoError(t, err)
	require.Equal(t, "hello", result.Field)
}

func TestClient_CallErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"error":{"code":-32601,"message":"Method not found","data":""}}`,
			request["id"],
		)
	}))
	defer server.Close()

	client := rpc.NewClient(server.URL)

	err := client.Call(context.Background(), "nope", nil, nil)
	require.ErrorIs(t, err, rpc.ErrResponse)
	require.ErrorContains(t, err, "Method not found")
}

func TestClient_CallTransportError(t *testing.T) {
	// Nothing listens here.
	client := rpc.NewClient("http://127.0.0.1:1")

	err := client.Call(context.Background(), "status", nil, nil)
	require.ErrorIs(t, err, rpc.ErrRequestFailed)
}

func TestClient_CallContextCanceled(t *testing.T) {
	blockCh := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blockCh
	}))
	defer server.Close()
	defer close(blockCh)

	client := rpc.NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Call(ctx, "status", nil, nil)
	require.ErrorIs(t, err, rpc.ErrRequestFailed)
}

func TestClient_CallGarbageResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	client := rpc.NewClient(server.URL)

	err := client.Call(context.Background(), "status", nil, nil)
	require.ErrorIs(t, err, rpc.ErrRequestFailed)
}
