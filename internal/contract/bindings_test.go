package contract

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/contract/contracttest"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answer returns a Call handler that packs results[method] for the
// method selected by the call data.
func answer(t *testing.T, parsed abi.ABI, results map[string][]any) func(chain.CallMsg) ([]byte, error) {
	return func(msg chain.CallMsg) ([]byte, error) {
		m, err := parsed.MethodById(msg.Data[:4])
		require.NoError(t, err)
		vals, ok := results[m.Name]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return m.Outputs.Pack(vals...)
	}
}

func TestTokenViews(t *testing.T) {
	supply, _ := new(big.Int).SetString("300000000000000000000000000", 10)
	b := contracttest.New(1)
	b.Call = answer(t, tokenABI, map[string][]any{
		"symbol":      {"BTMT"},
		"totalSupply": {supply},
		"allowance":   {big.NewInt(42)},
		"isFeeless":   {true},
	})
	tok := NewToken(common.HexToAddress(hardhatAddr0), b)

	sym, err := tok.Symbol(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BTMT", sym)

	ts, err := tok.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, supply, ts)

	al, err := tok.Allowance(ctx, common.HexToAddress(hardhatAddr0), common.HexToAddress(hardhatAddr1))
	require.NoError(t, err)
	assert.Equal(t, int64(42), al.Int64())

	fl, err := tok.IsFeeless(ctx, common.HexToAddress(hardhatAddr1))
	require.NoError(t, err)
	assert.True(t, fl)

	_, err = tok.BalanceOf(ctx, common.Address{})
	assert.ErrorContains(t, err, "calling balanceOf")
}

func TestCallerEmptyResult(t *testing.T) {
	tok := NewToken(common.HexToAddress(hardhatAddr0), contracttest.New(1))
	_, err := tok.TotalSupply(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no contract at")
}

func TestAllocationsViews(t *testing.T) {
	vw := common.HexToAddress("0x2000000000000000000000000000000000000002")
	b := contracttest.New(1)
	b.Call = answer(t, allocationsABI, map[string][]any{
		"vestingWallet":         {vw},
		"getVestingWalletCliff": {uint64(3600)},
		"vestedAmount":          {big.NewInt(5)},
	})
	a := NewAllocations(common.HexToAddress(hardhatAddr1), b)

	got, err := a.VestingWallet(ctx, common.HexToAddress(hardhatAddr0))
	require.NoError(t, err)
	assert.Equal(t, vw, got)

	cliff, err := a.VestingWalletCliff(ctx, common.HexToAddress(hardhatAddr0))
	require.NoError(t, err)
	assert.Equal(t, uint64(3600), cliff)

	v, err := a.VestedAmount(ctx, common.HexToAddress(hardhatAddr0))
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int64())
}

func TestAllocateEncodesArguments(t *testing.T) {
	b := contracttest.New(80002)
	tr := newTransactor(t, b, hardhatKey1)
	a := NewAllocations(common.HexToAddress(hardhatAddr0), b)
	amount := new(big.Int).Mul(big.NewInt(10_000), big.NewInt(1e18))

	_, err := a.Allocate(ctx, tr, testFees, common.HexToAddress(hardhatAddr0), amount, 0)
	require.NoError(t, err)

	data := b.Sent()[0].Tx.Data()
	m, err := allocationsABI.MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, "allocate", m.Name)
	args, err := m.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(hardhatAddr0), args[0])
	assert.Equal(t, amount, args[1])
	assert.Equal(t, uint64(0), args[2])
}

func TestWithdrawEncodesBeneficiary(t *testing.T) {
	b := contracttest.New(80002)
	tr := newTransactor(t, b, hardhatKey1)
	a := NewAllocations(common.HexToAddress(hardhatAddr0), b)

	_, err := a.Withdraw(ctx, tr, testFees, common.HexToAddress(hardhatAddr1))
	require.NoError(t, err)

	data := b.Sent()[0].Tx.Data()
	m, err := allocationsABI.MethodById(data[:4])
	require.NoError(t, err)
	assert.Equal(t, "withdraw", m.Name)
	args, err := m.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(hardhatAddr1), args[0])
}

func TestPrivateSaleWindow(t *testing.T) {
	open := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	closeAt := open.Add(20 * 24 * time.Hour)
	b := contracttest.New(1)
	b.Call = answer(t, privateSaleABI, map[string][]any{
		"openingTime": {big.NewInt(open.Unix())},
		"closingTime": {big.NewInt(closeAt.Unix())},
		"rate":        {big.NewInt(20)},
		"isOpen":      {false},
	})
	ps := NewPrivateSale(common.HexToAddress(hardhatAddr0), b)

	o, c, err := ps.Window(ctx)
	require.NoError(t, err)
	assert.Equal(t, open, o)
	assert.Equal(t, closeAt, c)

	rate, err := ps.Rate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), rate.Int64())

	isOpen, err := ps.IsOpen(ctx)
	require.NoError(t, err)
	assert.False(t, isOpen)
}

func TestSingleTypeMismatch(t *testing.T) {
	_, err := single[bool]("x", []any{big.NewInt(1)})
	assert.ErrorContains(t, err, "unexpected output type")

	_, err = single[bool]("x", nil)
	assert.ErrorContains(t, err, "expected 1 output")
}

func TestTokenUnits(t *testing.T) {
	want, _ := new(big.Int).SetString("100000000000000000000000000", 10)
	assert.Equal(t, want, TokenUnits(big.NewInt(100_000_000)))
	assert.Equal(t, "0", TokenUnits(big.NewInt(0)).String())
}
