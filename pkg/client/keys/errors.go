package keys

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "keys"

	ErrKeyNotFound     = sdkerrors.Register(codespace, 1, "no key with the given name")
	ErrKeyExists       = sdkerrors.Register(codespace, 2, "a key with the given name already exists")
	ErrInvalidMnemonic = sdkerrors.Register(codespace, 3, "invalid bip39 mnemonic")
	ErrKeyDerivation   = sdkerrors.Register(codespace, 4, "key derivation failed")
)
