package contract

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// PrivateSaleParams is the private sale constructor's struct argument.
// Times are unix seconds; tariff and cap are wei.
type PrivateSaleParams struct {
	Rate            *big.Int       `abi:"rate"`
	Wallet          common.Address `abi:"wallet"`
	Purchaser       common.Address `abi:"purchaser"`
	Token           common.Address `abi:"token"`
	Whitelister     common.Address `abi:"whitelister"`
	OpeningTime     *big.Int       `abi:"openingTime"`
	ClosingTime     *big.Int       `abi:"closingTime"`
	InvestorTariff  *big.Int       `abi:"investorTariff"`
	InvestorCap     *big.Int       `abi:"investorCap"`
	Cliff           uint64         `abi:"cliff"`
	VestingDuration uint64         `abi:"vestingDuration"`
}

// DeployPrivateSale deploys the private sale artifact.
func DeployPrivateSale(ctx context.Context, from *Transactor, art *Artifact, fees Fees, p PrivateSaleParams) (*SentTx, error) {
	return from.Deploy(ctx, art, privateSaleABI, fees, p)
}

// PrivateSale is a handle on a deployed BITMarketsTokenPrivateSale.
type PrivateSale struct {
	Address common.Address
	caller  *Caller
}

// NewPrivateSale binds the private sale at addr.
func NewPrivateSale(addr common.Address, backend ContractCaller) *PrivateSale {
	return &PrivateSale{Address: addr, caller: NewCaller(backend, addr, privateSaleABI)}
}

func (p *PrivateSale) Token(ctx context.Context) (common.Address, error) {
	return p.caller.Address(ctx, "token")
}

func (p *PrivateSale) Rate(ctx context.Context) (*big.Int, error) {
	return p.caller.Uint(ctx, "rate")
}

// Window returns the sale's opening and closing times.
func (p *PrivateSale) Window(ctx context.Context) (opening, closing time.Time, err error) {
	o, err := p.caller.Uint(ctx, "openingTime")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	c, err := p.caller.Uint(ctx, "closingTime")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return time.Unix(o.Int64(), 0).UTC(), time.Unix(c.Int64(), 0).UTC(), nil
}

func (p *PrivateSale) IsOpen(ctx context.Context) (bool, error) {
	return p.caller.Bool(ctx, "isOpen")
}

func (p *PrivateSale) HasClosed(ctx context.Context) (bool, error) {
	return p.caller.Bool(ctx, "hasClosed")
}
