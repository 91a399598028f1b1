package tx

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "tx"

	// ErrInvalidTransaction is a construction-time validation failure. It is
	// local and never retried.
	ErrInvalidTransaction = sdkerrors.Register(codespace, 1, "invalid transaction")
	// ErrSign is a key store failure while signing. It is local and never
	// retried automatically.
	ErrSign = sdkerrors.Register(codespace, 2, "failed to sign transaction")
	// ErrEmptySigningKeyName indicates the tx client was constructed without
	// a signing key name.
	ErrEmptySigningKeyName = sdkerrors.Register(codespace, 3, "empty signing key name")
	// ErrTxRejected is a deterministic chain-side rejection, surfaced
	// verbatim and never retried.
	ErrTxRejected = sdkerrors.Register(codespace, 4, "transaction rejected by node")
	// ErrSequenceConflict indicates the node rejected the transaction because
	// its sequence was stale.
	ErrSequenceConflict = sdkerrors.Register(codespace, 5, "account sequence conflict")
	// ErrRetryExhausted is terminal and wraps the last underlying conflict or
	// transient error after the attempt bound is exceeded.
	ErrRetryExhausted = sdkerrors.Register(codespace, 6, "broadcast retries exhausted")
)
