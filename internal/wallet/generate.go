package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Generated is a freshly created keypair.
type Generated struct {
	PrivateKey string // 0x-prefixed, 32 bytes
	Address    common.Address
}

// Generate creates a random secp256k1 wallet.
func Generate() (*Generated, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return &Generated{
		PrivateKey: hexutil.Encode(crypto.FromECDSA(key)),
		Address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}
