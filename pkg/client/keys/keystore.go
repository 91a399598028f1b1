package keys

import (
	"crypto/sha256"
	"sync"

	"github.com/cosmos/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/ripemd160"

	"github.com/virtengine/virtengine-sub005/pkg/client"
)

// BIP-44 derivation path constants. Full path: m/44'/CoinType'/account'/0/0.
const (
	purposeBIP44 = bip32.FirstHardenedChild + 44
	// coinTypeCosmos is the cosmos-registered coin type, shared by
	// cosmos-style chains including VirtEngine.
	coinTypeCosmos = bip32.FirstHardenedChild + 118
)

// Bech32Prefix is the human-readable part of VirtEngine account addresses.
const Bech32Prefix = "ve"

var _ client.KeyStore = (*KeyStore)(nil)

// KeyStore is an in-memory named key store. Private key scalars never leave
// the package; callers reference keys by name and receive signatures,
// compressed public keys, and bech32 addresses.
type KeyStore struct {
	bech32Prefix string

	mu      sync.RWMutex
	records map[string]*keyRecord
}

type keyRecord struct {
	privKey *secp256k1.PrivateKey
	address string
}

// NewKeyStore returns an empty key store issuing addresses with the given
// bech32 prefix, defaulting to Bech32Prefix when empty.
func NewKeyStore(bech32Prefix string) *KeyStore {
	if bech32Prefix == "" {
		bech32Prefix = Bech32Prefix
	}
	return &KeyStore{
		bech32Prefix: bech32Prefix,
		records:      make(map[string]*keyRecord),
	}
}

// ImportMnemonic derives a key from the given BIP-39 mnemonic at the BIP-44
// path m/44'/118'/account'/0/0 and stores it under name, returning the
// derived bech32 address.
func (ks *KeyStore) ImportMnemonic(name, mnemonic, passphrase string, account uint32) (string, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return "", ErrInvalidMnemonic.Wrapf("for key %q", name)
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return "", ErrKeyDerivation.Wrapf("master key: %s", err)
	}

	for _, childIdx := range []uint32{
		purposeBIP44,
		coinTypeCosmos,
		bip32.FirstHardenedChild + account,
		0,
		0,
	} {
		if key, err = key.NewChildKey(childIdx); err != nil {
			return "", ErrKeyDerivation.Wrapf("child %d: %s", childIdx, err)
		}
	}

	return ks.ImportPrivateKey(name, privKeyBytes(key))
}

// ImportPrivateKey stores the given raw 32-byte secp256k1 private key under
// name and returns its bech32 address.
func (ks *KeyStore) ImportPrivateKey(name string, privKeyBz []byte) (string, error) {
	if len(privKeyBz) != 32 {
		return "", ErrKeyDerivation.Wrapf("private key must be 32 bytes, got %d", len(privKeyBz))
	}

	privKey := secp256k1.PrivKeyFromBytes(privKeyBz)
	address, err := pubKeyToBech32(ks.bech32Prefix, privKey.PubKey())
	if err != nil {
		return "", err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if _, ok := ks.records[name]; ok {
		return "", ErrKeyExists.Wrapf("name %q", name)
	}
	ks.records[name] = &keyRecord{privKey: privKey, address: address}

	return address, nil
}

// Sign produces a deterministic (RFC 6979) DER-encoded ECDSA signature over
// the sha256 digest of payload using the named key. Signing is stateless and
// repeat-safe.
func (ks *KeyStore) Sign(name string, payload []byte) ([]byte, error) {
	record, err := ks.record(name)
	if err != nil {
		return nil, err
	}

	digest := sha256.Sum256(payload)
	return ecdsa.Sign(record.privKey, digest[:]).Serialize(), nil
}

// PublicKey returns the compressed 33-byte public key of the named key.
func (ks *KeyStore) PublicKey(name string) ([]byte, error) {
	record, err := ks.record(name)
	if err != nil {
		return nil, err
	}
	return record.privKey.PubKey().SerializeCompressed(), nil
}

// Address returns the bech32 account address of the named key.
func (ks *KeyStore) Address(name string) (string, error) {
	record, err := ks.record(name)
	if err != nil {
		return "", err
	}
	return record.address, nil
}

// Names returns the names of all stored keys.
func (ks *KeyStore) Names() []string {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	names := make([]string, 0, len(ks.records))
	for name := range ks.records {
		names = append(names, name)
	}
	return names
}

func (ks *KeyStore) record(name string) (*keyRecord, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()

	record, ok := ks.records[name]
	if !ok {
		return nil, ErrKeyNotFound.Wrapf("name %q", name)
	}
	return record, nil
}

// privKeyBytes returns the raw 32-byte private scalar of a bip32 key. The
// bip32 key bytes carry a leading zero pad byte for private keys.
func privKeyBytes(key *bip32.Key) []byte {
	raw := key.Key
	if len(raw) == 33 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

// pubKeyToBech32 derives the cosmos-style account address of a public key:
// bech32(prefix, ripemd160(sha256(compressed_pubkey))).
func pubKeyToBech32(prefix string, pubKey *secp256k1.PublicKey) (string, error) {
	sha := sha256.Sum256(pubKey.SerializeCompressed())

	hasher := ripemd160.New()
	hasher.Write(sha[:])
	addrBz := hasher.Sum(nil)

	converted, err := bech32.ConvertBits(addrBz, 8, 5, true)
	if err != nil {
		return "", ErrKeyDerivation.Wrapf("bech32 conversion: %s", err)
	}

	address, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", ErrKeyDerivation.Wrapf("bech32 encoding: %s", err)
	}
	return address, nil
}
