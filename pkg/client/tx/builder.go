package tx

import (
	"strings"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/config"
)

// Builder assembles unsigned transactions, enforcing all construction-time
// constraints. Messages are opaque; validation covers shape and size only,
// never message contents.
type Builder struct {
	chainID string
	// maxMessageBytes is the per-message encoded size ceiling.
	maxMessageBytes int
	// maxTxBytes is the ceiling on the sum of all message payloads. Scaled
	// from maxMessageBytes so a transaction can carry a handful of maximal
	// messages without an extra knob.
	maxTxBytes int
	memoLimit  int
}

// txBytesFactor scales the per-message size ceiling into the whole-transaction
// ceiling.
const txBytesFactor = 4

// NewBuilder returns a Builder for the given chain. Non-positive limits fall
// back to the config defaults.
func NewBuilder(chainID string, maxMessageBytes, memoLimit int) *Builder {
	if maxMessageBytes <= 0 {
		maxMessageBytes = config.DefaultMaxMessageBytes
	}
	if memoLimit <= 0 {
		memoLimit = config.DefaultMemoLimit
	}

	return &Builder{
		chainID:         chainID,
		maxMessageBytes: maxMessageBytes,
		maxTxBytes:      maxMessageBytes * txBytesFactor,
		memoLimit:       memoLimit,
	}
}

// Build assembles an unsigned transaction from the given messages, fee, memo,
// and signing metadata. The message slice is copied; the returned transaction
// does not alias caller memory.
func (b *Builder) Build(
	msgs []client.EncodedMessage,
	fee client.Fee,
	memo string,
	accountNumber, sequence uint64,
) (*client.UnsignedTx, error) {
	if b.chainID == "" {
		return nil, ErrInvalidTransaction.Wrap("chain id is empty")
	}

	if len(msgs) == 0 {
		return nil, ErrInvalidTransaction.Wrap("transaction carries no messages")
	}

	totalBytes := 0
	for i, msg := range msgs {
		if strings.TrimSpace(msg.TypeURL) == "" {
			return nil, ErrInvalidTransaction.Wrapf("message %d has an empty type url", i)
		}
		if len(msg.Bytes) == 0 {
			return nil, ErrInvalidTransaction.Wrapf("message %d (%s) has an empty payload", i, msg.TypeURL)
		}
		if len(msg.Bytes) > b.maxMessageBytes {
			return nil, ErrInvalidTransaction.Wrapf(
				"message %d (%s) is %d bytes, exceeding the %d byte limit",
				i, msg.TypeURL, len(msg.Bytes), b.maxMessageBytes,
			)
		}
		totalBytes += len(msg.Bytes)
	}

	if totalBytes > b.maxTxBytes {
		return nil, ErrInvalidTransaction.Wrapf(
			"transaction payload is %d bytes, exceeding the %d byte limit",
			totalBytes, b.maxTxBytes,
		)
	}

	if err := validateFee(fee); err != nil {
		return nil, err
	}

	if len(memo) > b.memoLimit {
		return nil, ErrInvalidTransaction.Wrapf(
			"memo is %d bytes, exceeding the %d byte limit", len(memo), b.memoLimit,
		)
	}

	messages := make([]client.EncodedMessage, len(msgs))
	copy(messages, msgs)

	return &client.UnsignedTx{
		ChainID:       b.chainID,
		AccountNumber: accountNumber,
		Sequence:      sequence,
		Messages:      messages,
		Fee:           fee,
		Memo:          memo,
	}, nil
}

func validateFee(fee client.Fee) error {
	if fee.Amount.IsNil() {
		return ErrInvalidTransaction.Wrap("fee amount is nil")
	}
	if fee.Amount.IsNegative() {
		return ErrInvalidTransaction.Wrapf("fee amount is negative: %s", fee.Amount)
	}
	if fee.Denom == "" {
		return ErrInvalidTransaction.Wrap("fee denom is empty")
	}
	if fee.GasLimit == 0 {
		return ErrInvalidTransaction.Wrap("gas limit is zero")
	}
	return nil
}
