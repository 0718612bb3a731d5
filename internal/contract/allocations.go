package contract

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/ethereum/go-ethereum/common"
)

// DeployAllocations deploys the allocations contract. cliff and vesting are
// in seconds.
func DeployAllocations(ctx context.Context, from *Transactor, art *Artifact, fees Fees,
	allocationsWallet, admin, token common.Address, cliff, vesting uint64) (*SentTx, error) {
	return from.Deploy(ctx, art, allocationsABI, fees, allocationsWallet, admin, token, cliff, vesting)
}

// Allocations is a handle on a deployed BITMarketsTokenAllocations.
type Allocations struct {
	Address common.Address
	caller  *Caller
}

// NewAllocations binds the allocations contract at addr.
func NewAllocations(addr common.Address, backend ContractCaller) *Allocations {
	return &Allocations{Address: addr, caller: NewCaller(backend, addr, allocationsABI)}
}

// Allocate creates a vesting wallet for beneficiary funded with amount (wei).
// cliff adjusts the contract's default cliff; 0 keeps it. Without a gas
// estimate the tx carries config.GasLimitAllocate.
func (a *Allocations) Allocate(ctx context.Context, from *Transactor, fees Fees, beneficiary common.Address, amount *big.Int, cliff uint64) (*SentTx, error) {
	return from.TransactWithGas(ctx, a.Address, allocationsABI, "allocate", fees, config.GasLimitAllocate, beneficiary, amount, cliff)
}

// Withdraw releases vested tokens to beneficiary.
func (a *Allocations) Withdraw(ctx context.Context, from *Transactor, fees Fees, beneficiary common.Address) (*SentTx, error) {
	return from.Transact(ctx, a.Address, allocationsABI, "withdraw", fees, beneficiary)
}

func (a *Allocations) Token(ctx context.Context) (common.Address, error) {
	return a.caller.Address(ctx, "token")
}

func (a *Allocations) VestedAmount(ctx context.Context, beneficiary common.Address) (*big.Int, error) {
	return a.caller.Uint(ctx, "vestedAmount", beneficiary)
}

// VestingWallet returns the zero address when beneficiary has no allocation.
func (a *Allocations) VestingWallet(ctx context.Context, beneficiary common.Address) (common.Address, error) {
	return a.caller.Address(ctx, "vestingWallet", beneficiary)
}

func (a *Allocations) VestingWalletCliff(ctx context.Context, beneficiary common.Address) (uint64, error) {
	return a.caller.Uint64(ctx, "getVestingWalletCliff", beneficiary)
}
