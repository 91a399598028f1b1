package tx

import (
	"encoding/json"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

// signDoc is the canonical signing payload. Its JSON rendering commits to the
// chain id, account number, sequence, fee, memo, and the ordered messages, so
// a signature over it cannot be replayed across chains, accounts, or
// sequences.
type signDoc struct {
	AccountNumber uint64       `json:"account_number,string"`
	ChainID       string       `json:"chain_id"`
	Fee           signDocFee   `json:"fee"`
	Memo          string       `json:"memo"`
	Msgs          []signDocMsg `json:"msgs"`
	Sequence      uint64       `json:"sequence,string"`
}

type signDocFee struct {
	Amount string `json:"amount"`
	Denom  string `json:"denom"`
	Gas    uint64 `json:"gas,string"`
}

type signDocMsg struct {
	Type string `json:"type"`
	// Value is the opaque wire-encoded message; JSON renders it as base64.
	Value []byte `json:"value"`
}

// SignBytes returns the canonical byte string a signer commits to for the
// given unsigned transaction. The rendering is deterministic: object keys are
// emitted in a fixed sorted order and message order is preserved.
func SignBytes(unsignedTx *client.UnsignedTx) ([]byte, error) {
	if unsignedTx == nil {
		return nil, ErrInvalidTransaction.Wrap("unsigned transaction is nil")
	}

	msgs := make([]signDocMsg, len(unsignedTx.Messages))
	for i, msg := range unsignedTx.Messages {
		msgs[i] = signDocMsg{Type: msg.TypeURL, Value: msg.Bytes}
	}

	doc := signDoc{
		AccountNumber: unsignedTx.AccountNumber,
		ChainID:       unsignedTx.ChainID,
		Fee: signDocFee{
			Amount: unsignedTx.Fee.Amount.String(),
			Denom:  unsignedTx.Fee.Denom,
			Gas:    unsignedTx.Fee.GasLimit,
		},
		Memo:     unsignedTx.Memo,
		Msgs:     msgs,
		Sequence: unsignedTx.Sequence,
	}

	return json.Marshal(&doc)
}

// Signer produces signed transactions using keys held by a KeyStore.
type Signer struct {
	keyStore client.KeyStore
}

// NewSigner returns a Signer backed by the given key store.
func NewSigner(keyStore client.KeyStore) *Signer {
	return &Signer{keyStore: keyStore}
}

// Sign returns a signed transaction carrying one signature per given key
// name, in the order the names were given. The unsigned transaction is not
// mutated.
func (s *Signer) Sign(unsignedTx *client.UnsignedTx, keyNames ...string) (*client.SignedTx, error) {
	if len(keyNames) == 0 {
		return nil, ErrSign.Wrap("no signing key names given")
	}

	signBz, err := SignBytes(unsignedTx)
	if err != nil {
		return nil, err
	}

	signatures := make([]client.Signature, 0, len(keyNames))
	for _, keyName := range keyNames {
		sigBz, err := s.keyStore.Sign(keyName, signBz)
		if err != nil {
			return nil, ErrSign.Wrapf("key %q: %s", keyName, err)
		}
		pubKey, err := s.keyStore.PublicKey(keyName)
		if err != nil {
			return nil, ErrSign.Wrapf("key %q: %s", keyName, err)
		}
		signatures = append(signatures, client.Signature{
			PubKey: pubKey,
			Bytes:  sigBz,
		})
	}

	return &client.SignedTx{
		UnsignedTx: *unsignedTx,
		Signatures: signatures,
	}, nil
}
