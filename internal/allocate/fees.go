package allocate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
)

// FeeSource fetches current fee data. *chain.EVMClient implements it.
type FeeSource interface {
	FeeData(ctx context.Context, floor *big.Int) (*chain.FeeData, error)
}

// FeeCache refetches fee data every Every iterations and reuses the last
// values in between.
type FeeCache struct {
	src     FeeSource
	floor   *big.Int
	every   int
	current *chain.FeeData
	fetches int
}

// NewFeeCache returns a cache over src. every < 1 refetches each iteration.
func NewFeeCache(src FeeSource, floor *big.Int, every int) *FeeCache {
	if every < 1 {
		every = 1
	}
	return &FeeCache{src: src, floor: floor, every: every}
}

// At returns the fees for iteration i.
func (f *FeeCache) At(ctx context.Context, i int) (contract.Fees, *chain.FeeData, error) {
	if f.current == nil || i%f.every == 0 {
		fd, err := f.src.FeeData(ctx, f.floor)
		if err != nil {
			return contract.Fees{}, nil, fmt.Errorf("fetching fee data: %w", err)
		}
		f.current = fd
		f.fetches++
	}
	return contract.FeesFrom(f.current), f.current, nil
}

// Fetches reports how many times the source was queried.
func (f *FeeCache) Fetches() int { return f.fetches }
