package allocate_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/btmtctl/internal/allocate"
	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFees returns a distinct fee each call so reuse is observable.
type countingFees struct {
	calls []int
	floor *big.Int
	err   error
}

func (f *countingFees) FeeData(_ context.Context, floor *big.Int) (*chain.FeeData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.floor = floor
	n := int64(len(f.calls) + 1)
	f.calls = append(f.calls, int(n))
	return &chain.FeeData{
		BaseFee:              chain.Gwei(n),
		MaxPriorityFeePerGas: chain.Gwei(30),
		MaxFeePerGas:         chain.Gwei(2*n + 30),
	}, nil
}

func TestFeeCacheRefreshCadence(t *testing.T) {
	src := &countingFees{}
	fc := allocate.NewFeeCache(src, chain.Gwei(30), 5)

	var fetchedAt []int
	for i := 0; i < 12; i++ {
		before := fc.Fetches()
		fees, _, err := fc.At(context.Background(), i)
		require.NoError(t, err)
		if fc.Fetches() > before {
			fetchedAt = append(fetchedAt, i)
		}
		want := chain.Gwei(int64(2*fc.Fetches() + 30))
		assert.Equal(t, want, fees.MaxFeePerGas, "iteration %d", i)
	}
	assert.Equal(t, []int{0, 5, 10}, fetchedAt)
	assert.Equal(t, chain.Gwei(30), src.floor)
}

func TestFeeCacheFetchesOnFirstUseMidCycle(t *testing.T) {
	src := &countingFees{}
	fc := allocate.NewFeeCache(src, nil, 5)

	_, _, err := fc.At(context.Background(), 7)
	require.NoError(t, err)
	_, _, err = fc.At(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.Fetches())
}

func TestFeeCacheEveryIteration(t *testing.T) {
	fc := allocate.NewFeeCache(&countingFees{}, nil, 0)
	for i := 0; i < 3; i++ {
		_, _, err := fc.At(context.Background(), i)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, fc.Fetches())
}

func TestFeeCacheError(t *testing.T) {
	fc := allocate.NewFeeCache(&countingFees{err: errors.New("boom")}, nil, 5)
	_, _, err := fc.At(context.Background(), 0)
	assert.ErrorContains(t, err, "fetching fee data")
}
