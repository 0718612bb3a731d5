// Package contracttest provides an in-memory contract.Backend for tests.
package contracttest

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sent is one transaction accepted by the backend.
type Sent struct {
	From common.Address
	Tx   *types.Transaction
}

// Backend records signed transactions and mines them instantly.
type Backend struct {
	ID *big.Int

	// Call answers eth_call. Nil returns an empty result.
	Call func(msg chain.CallMsg) ([]byte, error)
	// Revert marks a sent transaction as reverted in its receipt.
	Revert func(s Sent) bool
	// SendErr fails eth_sendRawTransaction for the n-th (0-based) send.
	SendErr func(n int) error
	// EstimateErr is returned from every EstimateGas call when set.
	EstimateErr error
	// Gas is the estimate returned when EstimateErr is nil.
	Gas uint64

	mu       sync.Mutex
	nonces   map[common.Address]uint64
	sent     []Sent
	receipts map[common.Hash]*chain.TxReceipt
	waits    int
	budgets  []time.Duration
}

// New returns a backend for chainID.
func New(chainID int64) *Backend {
	return &Backend{
		ID:       big.NewInt(chainID),
		Gas:      150_000,
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*chain.TxReceipt),
	}
}

// SetNonce sets the next nonce for addr.
func (b *Backend) SetNonce(addr common.Address, n uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nonces[addr] = n
}

// Sent returns a copy of every accepted transaction in order.
func (b *Backend) Sent() []Sent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Sent(nil), b.sent...)
}

// WaitBudgets returns, per receipt wait, the time left before the context
// deadline. Waits without a deadline record 0.
func (b *Backend) WaitBudgets() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Duration(nil), b.budgets...)
}

// Waits returns how many receipt waits completed.
func (b *Backend) Waits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waits
}

func (b *Backend) ChainID(context.Context) (*big.Int, error) {
	return new(big.Int).Set(b.ID), nil
}

func (b *Backend) PendingNonceAt(_ context.Context, addr common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonces[addr], nil
}

func (b *Backend) EstimateGas(context.Context, chain.CallMsg) (uint64, error) {
	if b.EstimateErr != nil {
		return 0, b.EstimateErr
	}
	return b.Gas, nil
}

func (b *Backend) CallContract(_ context.Context, msg chain.CallMsg) ([]byte, error) {
	if b.Call == nil {
		return nil, nil
	}
	return b.Call(msg)
}

func (b *Backend) SendRawTransaction(_ context.Context, raw []byte) (common.Hash, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	from, err := types.Sender(types.LatestSignerForChainID(b.ID), tx)
	if err != nil {
		return common.Hash{}, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.SendErr != nil {
		if err := b.SendErr(len(b.sent)); err != nil {
			return common.Hash{}, err
		}
	}
	if tx.Nonce() != b.nonces[from] {
		return common.Hash{}, errors.New("nonce too low")
	}
	b.nonces[from]++

	s := Sent{From: from, Tx: tx}
	b.sent = append(b.sent, s)

	receipt := &chain.TxReceipt{
		Hash:        tx.Hash(),
		Status:      1,
		BlockNumber: uint64(len(b.sent)),
		GasUsed:     tx.Gas(),
	}
	if tx.To() == nil {
		receipt.ContractAddress = crypto.CreateAddress(from, tx.Nonce())
	}
	if b.Revert != nil && b.Revert(s) {
		receipt.Status = 0
	}
	b.receipts[tx.Hash()] = receipt
	return tx.Hash(), nil
}

func (b *Backend) WaitForReceipt(ctx context.Context, hash common.Hash, _ time.Duration) (*chain.TxReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	var budget time.Duration
	if d, ok := ctx.Deadline(); ok {
		budget = time.Until(d)
	}
	b.budgets = append(b.budgets, budget)

	r, ok := b.receipts[hash]
	if !ok {
		return nil, errors.New("unknown transaction")
	}
	b.waits++
	if r.Status == 0 {
		return r, chain.ErrTxReverted
	}
	return r, nil
}
