package deploy_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/contract/contracttest"
	"github.com/Mohsinsiddi/btmtctl/internal/deploy"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	tokenABI = contract.MustBuiltinABI(contract.TokenID)
	start    = time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC)
	supply   = contract.TokenUnits(big.NewInt(300_000_000))
)

// stepFees hands out 1, 2, 3... gwei so each tx shows which fetch priced it.
type stepFees struct{ n int64 }

func (f *stepFees) FeeData(context.Context, *big.Int) (*chain.FeeData, error) {
	f.n++
	return &chain.FeeData{MaxFeePerGas: chain.Gwei(f.n), MaxPriorityFeePerGas: chain.Gwei(f.n)}, nil
}

type failingFees struct{}

func (failingFees) FeeData(context.Context, *big.Int) (*chain.FeeData, error) {
	return nil, errors.New("rpc down")
}

func newRoles(t *testing.T) *wallet.RoleSet {
	t.Helper()
	rs := wallet.NewRoleSet()
	for _, r := range wallet.AllRoles {
		g, err := wallet.Generate()
		require.NoError(t, err)
		s, err := wallet.NewSignerFromHex(string(r), g.PrivateKey)
		require.NoError(t, err)
		rs.SetSigner(r, s, "test")
	}
	return rs
}

func artifacts() map[string]*contract.Artifact {
	out := map[string]*contract.Artifact{}
	for _, id := range []string{contract.TokenID, contract.AllocationsID, contract.PrivateSaleID} {
		b, _ := contract.GetBuiltin(id)
		out[id] = &contract.Artifact{Name: b.ArtifactName, ABI: b.ABI, Bytecode: []byte{0x60, 0x80}}
	}
	return out
}

func newBackend(t *testing.T) *contracttest.Backend {
	b := contracttest.New(31337)
	b.Call = func(msg chain.CallMsg) ([]byte, error) {
		m, err := tokenABI.MethodById(msg.Data[:4])
		require.NoError(t, err)
		require.Equal(t, "totalSupply", m.Name)
		return m.Outputs.Pack(supply)
	}
	return b
}

func newDeployer(t *testing.T, b *contracttest.Backend, rs *wallet.RoleSet) *deploy.Deployer {
	return &deploy.Deployer{
		Backend:   b,
		Fees:      &stepFees{},
		Roles:     rs,
		Artifacts: artifacts(),
		Params:    deploy.ParamsFor(config.Development),
		Now:       func() time.Time { return start },
	}
}

func addr(t *testing.T, rs *wallet.RoleSet, r wallet.Role) common.Address {
	a, err := rs.Address(r)
	require.NoError(t, err)
	return a
}

func unpack(t *testing.T, s contracttest.Sent) (string, []any) {
	t.Helper()
	m, err := tokenABI.MethodById(s.Tx.Data()[:4])
	require.NoError(t, err)
	args, err := m.Inputs.Unpack(s.Tx.Data()[4:])
	require.NoError(t, err)
	return m.Name, args
}

func word(data []byte, i int) *big.Int {
	return new(big.Int).SetBytes(data[i*32 : (i+1)*32])
}

func TestRunFullChoreography(t *testing.T) {
	b := newBackend(t)
	rs := newRoles(t)
	d := newDeployer(t, b, rs)
	core, logs := observer.New(zap.InfoLevel)
	d.Log = zap.New(core)

	var deployed []string
	d.OnDeployed = func(id string, _ *contract.SentTx) { deployed = append(deployed, id) }

	res, err := d.Run(context.Background(), 1, deploy.Addresses{})
	require.NoError(t, err)

	liq := addr(t, rs, wallet.CompanyLiquidity)
	allocWallet := addr(t, rs, wallet.Allocations)
	crowdWallet := addr(t, rs, wallet.Crowdsales)
	token := crypto.CreateAddress(liq, 0)
	allocations := crypto.CreateAddress(liq, 1)
	privateSale := crypto.CreateAddress(liq, 3)

	assert.Equal(t, token, res.Token)
	assert.Equal(t, allocations, res.Allocations)
	assert.Equal(t, privateSale, res.PrivateSale)
	assert.Equal(t, supply, res.TotalSupply)
	assert.Equal(t, 5, res.FeeFetches)
	assert.Equal(t, []string{contract.TokenID, contract.AllocationsID, contract.PrivateSaleID}, deployed)
	require.Len(t, res.Steps, 17)

	walletTokens := contract.TokenUnits(big.NewInt(100_000_000))
	privateSaleCap := contract.TokenUnits(big.NewInt(40_000_000))

	type want struct {
		role   wallet.Role
		method string // "" for deployments
		args   []any
		feeN   int64
	}
	wants := []want{
		{wallet.CompanyLiquidity, "", nil, 1},
		{wallet.CompanyLiquidity, "", nil, 2},
		{wallet.FeelessAdmin, "addFeeless", []any{allocations}, 3},
		{wallet.FeelessAdmin, "addFeeless", []any{allocWallet}, 3},
		{wallet.CompanyRestrictionWhitelist, "addUnrestrictedReceiver", []any{liq, allocWallet, walletTokens}, 3},
		{wallet.CompanyLiquidity, "transfer", []any{allocWallet, walletTokens}, 3},
		{wallet.CompanyRestrictionWhitelist, "addUnrestrictedReceiver", []any{allocWallet, allocations, walletTokens}, 3},
		{wallet.FeelessAdmin, "addFeelessAdmin", []any{allocations}, 3},
		{wallet.Allocations, "approve", []any{allocations, walletTokens}, 3},
		{wallet.CompanyLiquidity, "", nil, 4},
		{wallet.FeelessAdmin, "addFeeless", []any{privateSale}, 5},
		{wallet.FeelessAdmin, "addFeeless", []any{crowdWallet}, 5},
		{wallet.CompanyRestrictionWhitelist, "addUnrestrictedReceiver", []any{liq, crowdWallet, walletTokens}, 5},
		{wallet.CompanyLiquidity, "transfer", []any{crowdWallet, walletTokens}, 5},
		{wallet.CompanyRestrictionWhitelist, "addUnrestrictedReceiver", []any{crowdWallet, privateSale, privateSaleCap}, 5},
		{wallet.FeelessAdmin, "addFeelessAdmin", []any{privateSale}, 5},
		{wallet.Crowdsales, "approve", []any{privateSale, privateSaleCap}, 5},
	}

	sent := b.Sent()
	require.Len(t, sent, 17)
	for i, w := range wants {
		s := sent[i]
		assert.Equal(t, addr(t, rs, w.role), s.From, "step %d sender", i+1)
		assert.Equal(t, chain.Gwei(w.feeN), s.Tx.GasFeeCap(), "step %d fees", i+1)
		assert.Equal(t, i+1, res.Steps[i].Step)
		assert.Equal(t, s.Tx.Hash(), res.Steps[i].Hash)
		if w.method == "" {
			assert.Nil(t, s.Tx.To(), "step %d should deploy", i+1)
			continue
		}
		require.NotNil(t, s.Tx.To())
		assert.Equal(t, token, *s.Tx.To(), "step %d target", i+1)
		name, args := unpack(t, s)
		assert.Equal(t, w.method, name, "step %d method", i+1)
		assert.Equal(t, w.args, args, "step %d args", i+1)
	}

	// Allocations constructor: wallet, admin, token, cliff 3m, vesting 6m.
	ctor := sent[1].Tx.Data()[2:]
	assert.Equal(t, addr(t, rs, wallet.AllocationsAdmin), common.BytesToAddress(word(ctor, 1).Bytes()))
	assert.Equal(t, token, common.BytesToAddress(word(ctor, 2).Bytes()))
	assert.Equal(t, int64(180), word(ctor, 3).Int64())
	assert.Equal(t, int64(360), word(ctor, 4).Int64())

	// Private sale constructor tuple.
	ps := sent[9].Tx.Data()[2:]
	assert.Equal(t, int64(20), word(ps, 0).Int64())
	assert.Equal(t, crowdWallet, common.BytesToAddress(word(ps, 1).Bytes()))
	assert.Equal(t, token, common.BytesToAddress(word(ps, 3).Bytes()))
	assert.Equal(t, start.Add(5*time.Minute).Unix(), word(ps, 5).Int64())
	assert.Equal(t, start.Add(30*24*time.Hour).Unix(), word(ps, 6).Int64())
	assert.Equal(t, contract.TokenUnits(big.NewInt(500)), word(ps, 7))
	assert.Equal(t, int64(600), word(ps, 9).Int64())

	first := logs.FilterMessageSnippet("1) Token deployment transaction hash").All()
	require.Len(t, first, 1)
	assert.Equal(t, "1) Token deployment transaction hash "+sent[0].Tx.Hash().Hex()+" with nonce 0", first[0].Message)
	assert.Equal(t, 1, logs.FilterMessage("TOKEN_CONTRACT_ADDRESS="+token.Hex()).Len())
	assert.Equal(t, 1, logs.FilterMessage("WHITELISTED_CONTRACT_ADDRESS="+privateSale.Hex()).Len())
}

func TestRunHaltsOnRevert(t *testing.T) {
	b := newBackend(t)
	rs := newRoles(t)
	whitelist := addr(t, rs, wallet.CompanyRestrictionWhitelist)
	b.Revert = func(s contracttest.Sent) bool { return s.From == whitelist && s.Tx.Nonce() == 1 }

	res, err := newDeployer(t, b, rs).Run(context.Background(), 1, deploy.Addresses{})
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrTxReverted)
	assert.Contains(t, err.Error(), "step 7")

	assert.Len(t, b.Sent(), 7)
	assert.Len(t, res.Steps, 6)
	assert.NotEqual(t, common.Address{}, res.Token)
	assert.Equal(t, common.Address{}, res.PrivateSale)
}

func TestRunResumesFromStep(t *testing.T) {
	b := newBackend(t)
	rs := newRoles(t)
	existing := deploy.Addresses{
		Token:       common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
		Allocations: common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
	}

	res, err := newDeployer(t, b, rs).Run(context.Background(), 10, existing)
	require.NoError(t, err)

	sent := b.Sent()
	require.Len(t, sent, 8)
	assert.Nil(t, sent[0].Tx.To())
	assert.Equal(t, existing.Token, *sent[1].Tx.To())
	assert.Equal(t, 2, res.FeeFetches)
	assert.Equal(t, existing.Allocations, res.Allocations)
	assert.Equal(t, crypto.CreateAddress(addr(t, rs, wallet.CompanyLiquidity), 0), res.PrivateSale)
	assert.Equal(t, 10, res.Steps[0].Step)
}

func TestRunFetchesFeesBeforeFirstResumedStep(t *testing.T) {
	b := newBackend(t)
	existing := deploy.Addresses{
		Token:       common.HexToAddress("0x01"),
		Allocations: common.HexToAddress("0x02"),
	}
	res, err := newDeployer(t, b, newRoles(t)).Run(context.Background(), 6, existing)
	require.NoError(t, err)
	// step 6 (first run), 10, 11
	assert.Equal(t, 3, res.FeeFetches)
	assert.Len(t, b.Sent(), 12)
}

func TestRunValidatesBeforeSending(t *testing.T) {
	cases := map[string]struct {
		from     int
		existing deploy.Addresses
		mutate   func(*deploy.Deployer)
		errText  string
	}{
		"step out of range": {from: 18, errText: "out of range"},
		"resume without token": {from: 2, errText: "needs the token address"},
		"resume without allocations": {
			from: 5, existing: deploy.Addresses{Token: common.HexToAddress("0x01")},
			errText: "needs the allocations contract address",
		},
		"resume without private sale": {
			from: 12, existing: deploy.Addresses{Token: common.HexToAddress("0x01")},
			errText: "needs the private sale contract address",
		},
		"missing artifact": {
			from:    1,
			mutate:  func(d *deploy.Deployer) { delete(d.Artifacts, contract.PrivateSaleID) },
			errText: "no artifact for privatesale",
		},
		"missing role": {
			from:    1,
			mutate:  func(d *deploy.Deployer) { d.Roles = wallet.NewRoleSet() },
			errText: "role not resolved",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			b := newBackend(t)
			d := newDeployer(t, b, newRoles(t))
			if tc.mutate != nil {
				tc.mutate(d)
			}
			_, err := d.Run(context.Background(), tc.from, tc.existing)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errText)
			assert.Empty(t, b.Sent())
		})
	}
}

func TestRunWatchOnlySignerRoleFails(t *testing.T) {
	b := newBackend(t)
	rs := newRoles(t)
	rs2 := wallet.NewRoleSet()
	for _, r := range wallet.AllRoles {
		if r == wallet.FeelessAdmin {
			rs2.SetAddress(r, addr(t, rs, r), "watch")
			continue
		}
		s, err := rs.Signer(r)
		require.NoError(t, err)
		rs2.SetSigner(r, s, "test")
	}

	_, err := newDeployer(t, b, rs2).Run(context.Background(), 1, deploy.Addresses{})
	assert.ErrorIs(t, err, wallet.ErrRoleUnresolved)
	assert.Empty(t, b.Sent())
}

func TestRunFeeFailure(t *testing.T) {
	b := newBackend(t)
	d := newDeployer(t, b, newRoles(t))
	d.Fees = failingFees{}

	_, err := d.Run(context.Background(), 1, deploy.Addresses{})
	assert.ErrorContains(t, err, "step 1: fetching fee data")
	assert.Empty(t, b.Sent())
}

func TestCaps(t *testing.T) {
	assert.Equal(t, contract.TokenUnits(big.NewInt(100_000_000)), deploy.AllocationsCap(supply))
	assert.Equal(t, contract.TokenUnits(big.NewInt(40_000_000)), deploy.PrivateSaleCap(supply))
}

func TestStepsTable(t *testing.T) {
	steps := deploy.Steps()
	require.Len(t, steps, 17)

	var refresh []int
	for i, s := range steps {
		assert.Equal(t, i+1, s.N)
		if s.RefreshFees {
			refresh = append(refresh, s.N)
		}
	}
	assert.Equal(t, []int{1, 2, 3, 10, 11}, refresh)
	assert.Equal(t, "9) Give allowance to the allocations contract from the allocations wallet", steps[8].String())
	assert.Equal(t, contract.PrivateSaleID, steps[9].Deploys)
}

func TestAddressVar(t *testing.T) {
	assert.Equal(t, "TOKEN_CONTRACT_ADDRESS", deploy.AddressVar(contract.TokenID))
	assert.Equal(t, "ALLOCATIONS_CONTRACT_ADDRESS", deploy.AddressVar(contract.AllocationsID))
	assert.Equal(t, "WHITELISTED_CONTRACT_ADDRESS", deploy.AddressVar(contract.PrivateSaleID))
}
