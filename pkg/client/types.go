package client

import (
	"cosmossdk.io/math"
)

// Broadcast result codes mirrored from the node's check-tx response. CodeOK
// is universal; CodeWrongSequence matches the cosmos-sdk "incorrect account
// sequence" error code which VirtEngine nodes return on a stale sequence.
const (
	CodeOK            uint32 = 0
	CodeWrongSequence uint32 = 32
)

// EventTypeGapDetected is the type of the marker event emitted by a
// subscription after it reconnects. Events occurring while the transport was
// down are not buffered; the marker tells the consumer a discontinuity
// occurred.
const EventTypeGapDetected = "client.gap_detected"

// Known VirtEngine message type URLs. The pipeline never inspects message
// contents; these are provided for callers constructing EncodedMessages from
// generated module codecs.
const (
	TypeURLMsgDelegate        = "/virtengine.staking.v1.MsgDelegate"
	TypeURLMsgUndelegate      = "/virtengine.staking.v1.MsgUndelegate"
	TypeURLMsgReportFraud     = "/virtengine.fraud.v1.MsgReportFraud"
	TypeURLMsgSubmitHeartbeat = "/virtengine.downtime.v1.MsgSubmitHeartbeat"
)

// EncodedMessage is an opaque, wire-encoded chain message: the payload bytes
// produced by a generated module codec plus the type URL which lets the node
// dispatch to the correct decoder.
type EncodedMessage struct {
	TypeURL string
	Bytes   []byte
}

// Fee is the transaction fee: an amount of a single denomination plus the gas
// limit the transaction may consume.
type Fee struct {
	Amount   math.Int
	Denom    string
	GasLimit uint64
}

// Account is the chain's view of an account: its bech32 address, the
// chain-assigned immutable account number, and the current sequence.
type Account struct {
	Address       string
	AccountNumber uint64
	Sequence      uint64
}

// UnsignedTx is an ordered set of encoded messages together with everything
// the canonical signing payload commits to. It is treated as immutable once
// built; rebuilding is required after any sequence conflict.
type UnsignedTx struct {
	ChainID       string
	AccountNumber uint64
	Sequence      uint64
	Messages      []EncodedMessage
	Fee           Fee
	Memo          string
}

// Signature pairs a signature with the compressed public key it verifies
// against.
type Signature struct {
	PubKey []byte
	Bytes  []byte
}

// SignedTx is an UnsignedTx plus one signature per required signer, ordered
// to match the signer list it was signed with. Mutating the embedded
// UnsignedTx invalidates the signatures.
type SignedTx struct {
	UnsignedTx
	Signatures []Signature
}

// BroadcastResult is the synchronous outcome of submitting a signed
// transaction: accepted (code 0, tx hash populated), sequence conflict
// (ExpectedSequence populated from the node's log), or rejection (any other
// code, log verbatim).
type BroadcastResult struct {
	TxHash string
	Code   uint32
	Log    string
	// ExpectedSequence is the sequence the node expected; only meaningful
	// when SequenceConflict() is true.
	ExpectedSequence uint64
}

// Accepted returns true if the node accepted the transaction into its mempool.
func (r *BroadcastResult) Accepted() bool {
	return r.Code == CodeOK
}

// SequenceConflict returns true if the node rejected the transaction because
// its sequence was stale.
func (r *BroadcastResult) SequenceConflict() bool {
	return r.Code == CodeWrongSequence
}

// EventAttribute is a single key/value pair of a chain event. Attribute order
// is meaningful and preserved.
type EventAttribute struct {
	Key   string
	Value string
}

// ChainEvent is one event emitted by the chain: its type tag, ordered
// attributes, and the block height and transaction hash it originated from.
type ChainEvent struct {
	Type       string
	Attributes []EventAttribute
	Height     int64
	TxHash     string
}

// GapDetected returns true if this event is the reconnection discontinuity
// marker rather than a chain-originated event.
func (e ChainEvent) GapDetected() bool {
	return e.Type == EventTypeGapDetected
}

// Attribute returns the value of the first attribute with the given key and
// whether it was found.
func (e ChainEvent) Attribute(key string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}
