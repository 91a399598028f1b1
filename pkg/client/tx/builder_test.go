package tx_test

import (
	"bytes"
	"strings"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/tx"
)

const testChainID = "virtengine-test-1"

func validFee() client.Fee {
	return client.Fee{
		Amount:   math.NewInt(1000),
		Denom:    "uve",
		GasLimit: 200000,
	}
}

func validMsgs() []client.EncodedMessage {
	return []client.EncodedMessage{{
		TypeURL: client.TypeURLMsgDelegate,
		Bytes:   []byte{0x0a, 0x02, 0x08, 0x01},
	}}
}

func TestBuilder_Build(t *testing.T) {
	builder := tx.NewBuilder(testChainID, 64, 16)

	tests := []struct {
		desc        string
		msgs        []client.EncodedMessage
		fee         client.Fee
		memo        string
		expectedErr string
	}{
		{
			desc: "valid single message",
			msgs: validMsgs(),
			fee:  validFee(),
		},
		{
			desc:        "no messages",
			msgs:        nil,
			fee:         validFee(),
			expectedErr: "no messages",
		},
		{
			desc: "empty type url",
			msgs: []client.EncodedMessage{{TypeURL: "  ", Bytes: []byte{0x01}}},
			fee:  validFee(),
			expectedErr: "empty type url",
		},
		{
			desc: "empty payload",
			msgs: []client.EncodedMessage{{TypeURL: client.TypeURLMsgReportFraud}},
			fee:  validFee(),
			expectedErr: "empty payload",
		},
		{
			desc: "oversized message",
			msgs: []client.EncodedMessage{{
				TypeURL: client.TypeURLMsgSubmitHeartbeat,
				Bytes:   bytes.Repeat([]byte{0x01}, 65),
			}},
			fee:         validFee(),
			expectedErr: "exceeding",
		},
		{
			desc: "oversized transaction",
			msgs: []client.EncodedMessage{
				{TypeURL: "/a", Bytes: bytes.Repeat([]byte{0x01}, 64)},
				{TypeURL: "/b", Bytes: bytes.Repeat([]byte{0x01}, 64)},
				{TypeURL: "/c", Bytes: bytes.Repeat([]byte{0x01}, 64)},
				{TypeURL: "/d", Bytes: bytes.Repeat([]byte{0x01}, 64)},
				{TypeURL: "/e", Bytes: []byte{0x01}},
			},
			fee:         validFee(),
			expectedErr: "transaction payload",
		},
		{
			desc:        "nil fee amount",
			msgs:        validMsgs(),
			fee:         client.Fee{Denom: "uve", GasLimit: 1},
			expectedErr: "fee amount is nil",
		},
		{
			desc: "negative fee amount",
			msgs: validMsgs(),
			fee: client.Fee{
				Amount:   math.NewInt(-1),
				Denom:    "uve",
				GasLimit: 1,
			},
			expectedErr: "negative",
		},
		{
			desc: "empty fee denom",
			msgs: validMsgs(),
			fee: client.Fee{
				Amount:   math.NewInt(1),
				GasLimit: 1,
			},
			expectedErr: "denom is empty",
		},
		{
			desc: "zero gas limit",
			msgs: validMsgs(),
			fee: client.Fee{
				Amount: math.NewInt(1),
				Denom:  "uve",
			},
			expectedErr: "gas limit is zero",
		},
		{
			desc:        "memo over limit",
			msgs:        validMsgs(),
			fee:         validFee(),
			memo:        strings.Repeat("m", 17),
			expectedErr: "memo",
		},
	}

	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			unsignedTx, err := builder.Build(test.msgs, test.fee, test.memo, 42, 7)

			if test.expectedErr != "" {
				require.ErrorIs(t, err, tx.ErrInvalidTransaction)
				require.ErrorContains(t, err, test.expectedErr)
				require.Nil(t, unsignedTx)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testChainID, unsignedTx.ChainID)
			require.Equal(t, uint64(42), unsignedTx.AccountNumber)
			require.Equal(t, uint64(7), unsignedTx.Sequence)
			require.Equal(t, test.msgs, unsignedTx.Messages)
			require.Equal(t, test.fee, unsignedTx.Fee)
		})
	}
}

func TestBuilder_BuildCopiesMessages(t *testing.T) {
	builder := tx.NewBuilder(testChainID, 64, 16)
	msgs := validMsgs()

	unsignedTx, err := builder.Build(msgs, validFee(), "", 1, 1)
	require.NoError(t, err)

	// Mutating the caller's slice must not reach the built transaction.
	msgs[0] = client.EncodedMessage{TypeURL: "/mutated", Bytes: []byte{0xff}}
	require.Equal(t, client.TypeURLMsgDelegate, unsignedTx.Messages[0].TypeURL)
}
