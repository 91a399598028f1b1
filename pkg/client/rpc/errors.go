package rpc

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "rpc"

	// ErrRequestFailed is a transient transport or decoding failure; callers
	// may safely retry with backoff.
	ErrRequestFailed = sdkerrors.Register(codespace, 1, "rpc request failed")
	// ErrResponse is an error response returned by the node itself.
	ErrResponse = sdkerrors.Register(codespace, 2, "rpc error response")
)
