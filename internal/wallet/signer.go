package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs EVM transactions with an in-memory secp256k1 key.
type Signer struct {
	name    string
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSignerFromHex builds a signer from a hex private key (0x optional).
func NewSignerFromHex(name, hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(normaliseHexKey(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return &Signer{name: name, key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// LoadSigner retrieves the key of a signing wallet from ks.
func LoadSigner(w *Wallet, ks KeystoreBackend) (*Signer, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("wallet %q is watch-only and cannot sign", w.Name)
	}
	hexKey, err := ks.Retrieve(w.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	s, err := NewSignerFromHex(w.Name, hexKey)
	if err != nil {
		return nil, err
	}
	if w.Address != "" && !equalAddress(s.address, w.Address) {
		return nil, fmt.Errorf("stored key for %q does not match address %s", w.Name, w.Address)
	}
	return s, nil
}

// SignTx signs tx for chainID with the London signer (EIP-1559 capable).
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.NewLondonSigner(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// Address returns the signer's address.
func (s *Signer) Address() common.Address { return s.address }

// Name returns the wallet or role name the signer was loaded for.
func (s *Signer) Name() string { return s.name }

func equalAddress(a common.Address, hex string) bool {
	return common.IsHexAddress(hex) && common.HexToAddress(hex) == a
}
