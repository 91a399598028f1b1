package tx

import (
	"context"
	"time"

	"cosmossdk.io/depinject"
	"github.com/rs/zerolog"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/config"
	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
	"github.com/virtengine/virtengine-sub005/pkg/retry"
)

var _ client.TxClient = (*txClient)(nil)

// Backoff bounds for the submit retry loop.
const (
	defaultRetryDelay        = 500 * time.Millisecond
	defaultRetryDelayCeiling = 30 * time.Second
)

// txClient orchestrates the full submission pipeline: sequence acquisition,
// build, sign, encode, broadcast, and bounded retry. Retries are reserved for
// sequence conflicts and transient transport failures; everything the node
// decided deterministically is terminal.
type txClient struct {
	logger          zerolog.Logger
	txCtx           client.TxContext
	sequenceTracker client.SequenceTracker
	clientConfig    *config.ClientConfig

	// signingKeyName is the key store name of the key every submission is
	// signed with. Set via WithSigningKeyName; required.
	signingKeyName string
	// signingAddress is resolved from signingKeyName at construction.
	signingAddress string

	// maxAttempts bounds SubmitWithRetry, counting the first try.
	maxAttempts       int
	retryDelay        time.Duration
	retryDelayCeiling time.Duration
}

// NewTxClient returns a client.TxClient backed by the given dependencies.
//
// Required dependencies:
//   - zerolog.Logger
//   - client.TxContext
//   - client.SequenceTracker
//   - *config.ClientConfig
//
// Available options:
//   - WithSigningKeyName (required)
//   - WithMaxAttempts
//   - WithRetryDelay
func NewTxClient(
	ctx context.Context,
	deps depinject.Config,
	opts ...client.TxClientOption,
) (client.TxClient, error) {
	tClient := &txClient{
		retryDelay:        defaultRetryDelay,
		retryDelayCeiling: defaultRetryDelayCeiling,
	}

	if err := depinject.Inject(
		deps,
		&tClient.logger,
		&tClient.txCtx,
		&tClient.sequenceTracker,
		&tClient.clientConfig,
	); err != nil {
		return nil, err
	}

	tClient.maxAttempts = tClient.clientConfig.MaxAttempts

	for _, opt := range opts {
		opt(tClient)
	}

	if tClient.signingKeyName == "" {
		return nil, ErrEmptySigningKeyName
	}
	if tClient.maxAttempts < 1 {
		tClient.maxAttempts = 1
	}

	signingAddress, err := tClient.txCtx.SignerAddress(tClient.signingKeyName)
	if err != nil {
		return nil, err
	}
	tClient.signingAddress = signingAddress

	return tClient, nil
}

// Broadcast submits an already-signed transaction and interprets the node's
// synchronous check-tx result. A sequence conflict or rejection is returned
// as an error alongside the result so callers can inspect the node's log.
func (tClient *txClient) Broadcast(ctx context.Context, signedTx *client.SignedTx) (*client.BroadcastResult, error) {
	txBytes, err := tClient.txCtx.EncodeTx(signedTx)
	if err != nil {
		return nil, err
	}

	result, err := tClient.txCtx.BroadcastTx(ctx, txBytes)
	if err != nil {
		return nil, err
	}

	switch {
	case result.Accepted():
		return result, nil
	case result.SequenceConflict():
		return result, ErrSequenceConflict.Wrapf(
			"expected sequence %d: %s", result.ExpectedSequence, result.Log,
		)
	default:
		return result, ErrTxRejected.Wrapf("code %d: %s", result.Code, result.Log)
	}
}

// SubmitWithRetry composes sequence tracking, building, signing, and
// broadcast in a bounded retry loop of at most maxAttempts tries. Each retry
// rebuilds and re-signs the transaction against a fresh sequence. Sequence
// conflicts and transient transport errors invalidate the cached sequence
// and retry after exponential backoff; validation and signing errors and
// deterministic node rejections are returned immediately.
func (tClient *txClient) SubmitWithRetry(
	ctx context.Context,
	msgs []client.EncodedMessage,
	fee client.Fee,
	memo string,
) (*client.BroadcastResult, error) {
	var lastErr error

	for attempt := 1; attempt <= tClient.maxAttempts; attempt++ {
		result, err := tClient.submitOnce(ctx, msgs, fee, memo)
		if err == nil {
			return result, nil
		}

		switch {
		case ErrInvalidTransaction.Is(err), ErrSign.Is(err):
			// Local failure; a retry would fail identically.
			return nil, err

		case ErrTxRejected.Is(err):
			// The node decided deterministically; surface it verbatim.
			return result, err

		case ErrSequenceConflict.Is(err):
			tClient.sequenceTracker.Invalidate(tClient.signingAddress)
			lastErr = err

		case rpc.ErrRequestFailed.Is(err), rpc.ErrResponse.Is(err):
			// The broadcast outcome is unknown: the tx may have landed and
			// consumed its sequence. Invalidate so the retry re-fetches.
			tClient.sequenceTracker.Invalidate(tClient.signingAddress)
			lastErr = err

		default:
			return nil, err
		}

		if attempt == tClient.maxAttempts {
			break
		}

		delay := retry.ExponentialDelay(attempt-1, tClient.retryDelay, tClient.retryDelayCeiling)
		tClient.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", tClient.maxAttempts).
			Dur("backoff", delay).
			Str("signer", tClient.signingAddress).
			Msg("retrying transaction submission")

		if err := retry.Wait(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, ErrRetryExhausted.Wrapf("%d attempts: %s", tClient.maxAttempts, lastErr)
}

// submitOnce runs a single pass of the pipeline: acquire a sequence, build,
// sign, and broadcast. Sequence acquisition failures propagate unwrapped so
// the retry loop can classify the underlying transport error.
func (tClient *txClient) submitOnce(
	ctx context.Context,
	msgs []client.EncodedMessage,
	fee client.Fee,
	memo string,
) (*client.BroadcastResult, error) {
	accountNumber, sequence, err := tClient.sequenceTracker.NextSequence(ctx, tClient.signingAddress)
	if err != nil {
		return nil, err
	}

	unsignedTx, err := tClient.txCtx.BuildTx(msgs, fee, memo, accountNumber, sequence)
	if err != nil {
		return nil, err
	}

	signedTx, err := tClient.txCtx.SignTx(unsignedTx, tClient.signingKeyName)
	if err != nil {
		return nil, err
	}

	result, err := tClient.Broadcast(ctx, signedTx)
	if err != nil {
		return result, err
	}

	tClient.logger.Debug().
		Str("tx_hash", result.TxHash).
		Uint64("sequence", sequence).
		Int("num_messages", len(msgs)).
		Msg("transaction accepted")

	return result, nil
}
