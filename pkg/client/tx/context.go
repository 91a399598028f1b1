package tx

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"cosmossdk.io/depinject"

	"github.com/virtengine/virtengine-sub005/pkg/client"
	"github.com/virtengine/virtengine-sub005/pkg/client/config"
	"github.com/virtengine/virtengine-sub005/pkg/client/rpc"
)

var _ client.TxContext = (*txContext)(nil)

// txContext consolidates the sender-side transaction lifecycle: build, sign,
// encode, broadcast.
type txContext struct {
	clientConfig *config.ClientConfig
	keyStore     client.KeyStore
	rpcClient    *rpc.Client

	builder *Builder
	signer  *Signer
}

// NewTxContext returns a client.TxContext backed by the given dependencies.
//
// Required dependencies:
//   - *config.ClientConfig
//   - client.KeyStore
//   - *rpc.Client
func NewTxContext(deps depinject.Config) (client.TxContext, error) {
	txCtx := &txContext{}

	if err := depinject.Inject(
		deps,
		&txCtx.clientConfig,
		&txCtx.keyStore,
		&txCtx.rpcClient,
	); err != nil {
		return nil, err
	}

	txCtx.builder = NewBuilder(
		txCtx.clientConfig.ChainID,
		txCtx.clientConfig.MaxMessageBytes,
		txCtx.clientConfig.MemoLimit,
	)
	txCtx.signer = NewSigner(txCtx.keyStore)

	return txCtx, nil
}

// BuildTx implements client.TxContext.
func (txCtx *txContext) BuildTx(
	msgs []client.EncodedMessage,
	fee client.Fee,
	memo string,
	accountNumber, sequence uint64,
) (*client.UnsignedTx, error) {
	return txCtx.builder.Build(msgs, fee, memo, accountNumber, sequence)
}

// SignTx implements client.TxContext.
func (txCtx *txContext) SignTx(unsignedTx *client.UnsignedTx, keyNames ...string) (*client.SignedTx, error) {
	return txCtx.signer.Sign(unsignedTx, keyNames...)
}

// txEnvelope is the broadcast wire encoding of a signed transaction. Field
// order is fixed by the struct, so the encoding is deterministic for a given
// signed transaction.
type txEnvelope struct {
	Body       txBody       `json:"body"`
	AuthInfo   txAuthInfo   `json:"auth_info"`
	Signatures []txSignature `json:"signatures"`
}

type txBody struct {
	Messages []txMsg `json:"messages"`
	Memo     string  `json:"memo"`
}

type txMsg struct {
	TypeURL string `json:"type_url"`
	Value   []byte `json:"value"`
}

type txAuthInfo struct {
	Fee      txFee  `json:"fee"`
	Sequence uint64 `json:"sequence,string"`
}

type txFee struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
	Gas    uint64 `json:"gas,string"`
}

type txSignature struct {
	PubKey    []byte `json:"pub_key"`
	Signature []byte `json:"signature"`
}

// EncodeTx implements client.TxContext.
func (txCtx *txContext) EncodeTx(signedTx *client.SignedTx) ([]byte, error) {
	if signedTx == nil {
		return nil, ErrInvalidTransaction.Wrap("signed transaction is nil")
	}
	if len(signedTx.Signatures) == 0 {
		return nil, ErrInvalidTransaction.Wrap("signed transaction carries no signatures")
	}

	msgs := make([]txMsg, len(signedTx.Messages))
	for i, msg := range signedTx.Messages {
		msgs[i] = txMsg{TypeURL: msg.TypeURL, Value: msg.Bytes}
	}

	sigs := make([]txSignature, len(signedTx.Signatures))
	for i, sig := range signedTx.Signatures {
		sigs[i] = txSignature{PubKey: sig.PubKey, Signature: sig.Bytes}
	}

	envelope := txEnvelope{
		Body: txBody{
			Messages: msgs,
			Memo:     signedTx.Memo,
		},
		AuthInfo: txAuthInfo{
			Fee: txFee{
				Amount: signedTx.Fee.Amount.String(),
				Denom:  signedTx.Fee.Denom,
				Gas:    signedTx.Fee.GasLimit,
			},
			Sequence: signedTx.Sequence,
		},
		Signatures: sigs,
	}

	return json.Marshal(&envelope)
}

// broadcastTxResult is the node's synchronous check-tx response.
type broadcastTxResult struct {
	Code uint32 `json:"code"`
	Data string `json:"data"`
	Log  string `json:"log"`
	Hash string `json:"hash"`
}

// expectedSequenceRe extracts the node's expected sequence from the check-tx
// log of a sequence conflict, e.g.
// "account sequence mismatch, expected 7, got 5: incorrect account sequence".
var expectedSequenceRe = regexp.MustCompile(`expected (\d+)`)

// BroadcastTx implements client.TxContext. It submits the encoded transaction
// via broadcast_tx_sync, bounded by the configured broadcast timeout, and
// maps the node's check-tx response onto a BroadcastResult. Transport and
// node-level RPC errors are returned as-is for the caller to classify.
func (txCtx *txContext) BroadcastTx(ctx context.Context, txBytes []byte) (*client.BroadcastResult, error) {
	ctx, cancel := context.WithTimeout(ctx, txCtx.clientConfig.BroadcastTimeout)
	defer cancel()

	params := map[string]any{
		"tx": base64.StdEncoding.EncodeToString(txBytes),
	}

	var txResult broadcastTxResult
	if err := txCtx.rpcClient.Call(ctx, "broadcast_tx_sync", params, &txResult); err != nil {
		return nil, err
	}

	result := &client.BroadcastResult{
		TxHash: txResult.Hash,
		Code:   txResult.Code,
		Log:    txResult.Log,
	}
	if result.TxHash == "" {
		result.TxHash = TxHash(txBytes)
	}

	if result.SequenceConflict() {
		if expected, ok := parseExpectedSequence(txResult.Log); ok {
			result.ExpectedSequence = expected
		}
	}

	return result, nil
}

// SignerAddress implements client.TxContext.
func (txCtx *txContext) SignerAddress(keyName string) (string, error) {
	return txCtx.keyStore.Address(keyName)
}

// TxHash returns the canonical hash of an encoded transaction: the uppercase
// hex sha256 of its broadcast bytes, matching the node's event attribute.
func TxHash(txBytes []byte) string {
	digest := sha256.Sum256(txBytes)
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

func parseExpectedSequence(log string) (uint64, bool) {
	match := expectedSequenceRe.FindStringSubmatch(log)
	if match == nil {
		return 0, false
	}
	expected, err := strconv.ParseUint(match[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return expected, true
}
