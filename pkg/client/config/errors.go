package config

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "client_config"

	ErrClientConfigEmpty           = sdkerrors.Register(codespace, 1, "empty client config")
	ErrClientConfigUnmarshalYAML   = sdkerrors.Register(codespace, 2, "config reader cannot unmarshal yaml content")
	ErrClientConfigInvalidChainID  = sdkerrors.Register(codespace, 3, "invalid chain id in client config")
	ErrClientConfigInvalidURL      = sdkerrors.Register(codespace, 4, "invalid url in client config")
	ErrClientConfigInvalidRetry    = sdkerrors.Register(codespace, 5, "invalid retry bound in client config")
	ErrClientConfigInvalidDuration = sdkerrors.Register(codespace, 6, "invalid duration in client config")
	ErrClientConfigInvalidSize     = sdkerrors.Register(codespace, 7, "invalid size limit in client config")
)
