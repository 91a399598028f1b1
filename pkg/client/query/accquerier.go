package query

import (
	"context"
	"strconv"
	"time"

	"cosmossdk.io/depinject"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
	"github.com/virtengine/virtengine-sub005/pkg/retry"
)

const (
	// queryRetryLimit is the number of retries an account query makes on
	// transport failure. Queries are idempotent reads, so retrying is safe.
	queryRetryLimit        = 2
	queryRetryInitialDelay = 100 * time.Millisecond
	queryRetryMaxDelay     = time.Second
)

var _ client.AccountQueryClient = (*accQuerier)(nil)

// accQuerier fetches accounts through the node's JSON-RPC account endpoint.
type accQuerier struct {
	rpcClient *rpc.Client
}

// accountResult mirrors the node's account query result. Unsigned 64-bit
// fields travel as decimal strings, matching cosmos JSON conventions.
type accountResult struct {
	Address       string `json:"address"`
	AccountNumber string `json:"account_number"`
	Sequence      string `json:"sequence"`
}

// NewAccountQuerier returns a client.AccountQueryClient backed by the node
// RPC endpoint.
//
// Required dependencies:
//   - *rpc.Client
func NewAccountQuerier(deps depinject.Config) (client.AccountQueryClient, error) {
	aq := &accQuerier{}

	if err := depinject.Inject(deps, &aq.rpcClient); err != nil {
		return nil, err
	}

	return aq, nil
}

// Account returns the chain's current view of the account with the given
// address: its chain-assigned account number and its sequence.
func (aq *accQuerier) Account(ctx context.Context, address string) (*client.Account, error) {
	backoff := retry.WithExponentialBackoff(ctx, queryRetryLimit, queryRetryInitialDelay, queryRetryMaxDelay)

	result, err := retry.Call(
		func() (accountResult, error) {
			var result accountResult
			callErr := aq.rpcClient.Call(ctx, "account", map[string]any{"address": address}, &result)
			return result, callErr
		},
		func(retryCount int, err error) bool {
			// An error response is the node's answer; only transport failures
			// are worth retrying.
			if !rpc.ErrRequestFailed.Is(err) {
				return false
			}
			return backoff(retryCount, err)
		},
	)
	if err != nil {
		if rpc.ErrResponse.Is(err) {
			return nil, ErrQueryAccountNotFound.Wrapf("address %s: %s", address, err)
		}
		return nil, err
	}

	accountNumber, err := strconv.ParseUint(result.AccountNumber, 10, 64)
	if err != nil {
		return nil, ErrQueryInvalidAccount.Wrapf("account number %q: %s", result.AccountNumber, err)
	}

	sequence, err := strconv.ParseUint(result.Sequence, 10, 64)
	if err != nil {
		return nil, ErrQueryInvalidAccount.Wrapf("sequence %q: %s", result.Sequence, err)
	}

	return &client.Account{
		Address:       address,
		AccountNumber: accountNumber,
		Sequence:      sequence,
	}, nil
}
