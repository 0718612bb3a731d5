package chain

import (
	"context"
	"math/big"
)

// defaultTip is used when the node does not implement eth_maxPriorityFeePerGas.
var defaultTip = big.NewInt(1_500_000_000)

// FeeData holds the fee parameters used to price EIP-1559 transactions.
type FeeData struct {
	GasPrice             *big.Int // legacy eth_gasPrice (Wei)
	BaseFee              *big.Int // latest block base fee, nil on legacy chains
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
}

// FeeData fetches current fee data. The tip is the node's suggestion (or 1.5
// gwei) raised to floor; maxFee is 2 x baseFee + tip. Chains without a base
// fee price both fields at gasPrice.
func (c *EVMClient) FeeData(ctx context.Context, floor *big.Int) (*FeeData, error) {
	gp, err := c.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	base, err := c.LatestBaseFee(ctx)
	if err != nil {
		return nil, err
	}

	fd := &FeeData{GasPrice: gp, BaseFee: base}
	if base == nil {
		fd.MaxPriorityFeePerGas = new(big.Int).Set(gp)
		fd.MaxFeePerGas = new(big.Int).Set(gp)
		return fd, nil
	}

	tip, err := c.MaxPriorityFeePerGas(ctx)
	if err != nil {
		tip = new(big.Int).Set(defaultTip)
	}
	if floor != nil && tip.Cmp(floor) < 0 {
		tip = new(big.Int).Set(floor)
	}

	fd.MaxPriorityFeePerGas = tip
	fd.MaxFeePerGas = new(big.Int).Add(new(big.Int).Mul(base, big.NewInt(2)), tip)
	return fd, nil
}

// MaxFeeGwei returns MaxFeePerGas in gwei for display.
func (f *FeeData) MaxFeeGwei() float64 { return WeiToGwei(f.MaxFeePerGas) }

// TipGwei returns MaxPriorityFeePerGas in gwei for display.
func (f *FeeData) TipGwei() float64 { return WeiToGwei(f.MaxPriorityFeePerGas) }
