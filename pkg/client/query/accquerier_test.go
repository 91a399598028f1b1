package query_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"cosmossdk.io/depinject"
	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/query"
	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
)

func newTestAccountQuerier(t *testing.T, handler http.HandlerFunc) client.AccountQueryClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	querier, err := query.NewAccountQuerier(depinject.Supply(rpc.NewClient(server.URL)))
	require.NoError(t, err)
	return querier
}

func TestAccountQuerier_Account(t *testing.T) {
	querier := newTestAccountQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Equal(t, "account", request["method"])

		params, ok := request["params"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "ve1alice", params["address"])

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"result":{"address":"ve1alice","account_number":"42","sequence":"7"}}`,
			request["id"],
		)
	})

	account, err := querier.Account(context.Background(), "ve1alice")
	require.NoError(t, err)
	require.Equal(t, "ve1alice", account.Address)
	require.Equal(t, uint64(42), account.AccountNumber)
	require.Equal(t, uint64(7), account.Sequence)
}

func TestAccountQuerier_AccountNotFound(t *testing.T) {
	querier := newTestAccountQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"error":{"code":-32000,"message":"account not found","data":""}}`,
			request["id"],
		)
	})

	_, err := querier.Account(context.Background(), "ve1ghost")
	require.ErrorIs(t, err, query.ErrQueryAccountNotFound)
}

func TestAccountQuerier_MalformedResult(t *testing.T) {
	querier := newTestAccountQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"result":{"address":"ve1alice","account_number":"not-a-number","sequence":"7"}}`,
			request["id"],
		)
	})

	_, err := querier.Account(context.Background(), "ve1alice")
	require.ErrorIs(t, err, query.ErrQueryInvalidAccount)
}

func TestAccountQuerier_RetriesTransportFailure(t *testing.T) {
	var calls int32
	querier := newTestAccountQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))

		// Kill the first request's connection mid-flight; the querier retries
		// and the second request succeeds.
		if atomic.AddInt32(&calls, 1) == 1 {
			hijacker, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hijacker.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"result":{"address":"ve1alice","account_number":"42","sequence":"7"}}`,
			request["id"],
		)
	})

	account, err := querier.Account(context.Background(), "ve1alice")
	require.NoError(t, err)
	require.Equal(t, uint64(7), account.Sequence)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAccountQuerier_DoesNotRetryErrorResponse(t *testing.T) {
	var calls int32
	querier := newTestAccountQuerier(t, func(w http.ResponseWriter, r *http.Request) {
		var request map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		atomic.AddInt32(&calls, 1)

		fmt.Fprintf(w,
			`{"jsonrpc":"2.0","id":%q,"error":{"code":-32000,"message":"account not found","data":""}}`,
			request["id"],
		)
	})

	_, err := querier.Account(context.Background(), "ve1ghost")
	require.ErrorIs(t, err, query.ErrQueryAccountNotFound)
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAccountQuerier_TransportError(t *testing.T) {
	querier, err := query.NewAccountQuerier(depinject.Supply(rpc.NewClient("http://127.0.0.1:1")))
	require.NoError(t, err)

	_, err = querier.Account(context.Background(), "ve1alice")
	require.ErrorIs(t, err, rpc.ErrRequestFailed)
}
