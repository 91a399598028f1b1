package query

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "query"

	ErrQueryAccountNotFound = sdkerrors.Register(codespace, 1, "account not found")
	ErrQueryInvalidAccount  = sdkerrors.Register(codespace, 2, "malformed account query result")
)
