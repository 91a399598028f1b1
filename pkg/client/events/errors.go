package events

import (
	sdkerrors "cosmossdk.io/errors"
)

var (
	codespace = "events"

	// ErrEventsDial wraps errors returned by the dialer.
	ErrEventsDial = sdkerrors.Register(codespace, 1, "dialing for connection failed")
	// ErrEventsConnClosed is delivered in-band as the terminal value of an
	// events bytes observable when its connection drops.
	ErrEventsConnClosed = sdkerrors.Register(codespace, 2, "connection closed")
	// ErrEventsSubscribe wraps errors sending the subscription request frame.
	ErrEventsSubscribe = sdkerrors.Register(codespace, 3, "failed to subscribe to events")
	// ErrEventsUnmarshalEvent indicates a received frame does not carry chain
	// events, e.g. a subscription acknowledgement.
	ErrEventsUnmarshalEvent = sdkerrors.Register(codespace, 4, "failed to unmarshal event bytes")
	// ErrSubscriptionClosed indicates a subscription terminated, either
	// explicitly or by exhausting its reconnect budget.
	ErrSubscriptionClosed = sdkerrors.Register(codespace, 5, "subscription closed")
	// ErrConfirmationTimeout indicates no confirmation event for the awaited
	// transaction arrived within the timeout. The transaction may still have
	// been included.
	ErrConfirmationTimeout = sdkerrors.Register(codespace, 6, "transaction confirmation timed out")
)
