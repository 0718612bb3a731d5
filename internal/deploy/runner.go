package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// FeeSource fetches current fee data. *chain.EVMClient implements it.
type FeeSource interface {
	FeeData(ctx context.Context, floor *big.Int) (*chain.FeeData, error)
}

// Addresses of the three deployed contracts.
type Addresses struct {
	Token       common.Address
	Allocations common.Address
	PrivateSale common.Address
}

// Get returns the address for a builtin contract ID.
func (a Addresses) Get(id string) common.Address {
	switch id {
	case contract.TokenID:
		return a.Token
	case contract.AllocationsID:
		return a.Allocations
	case contract.PrivateSaleID:
		return a.PrivateSale
	}
	return common.Address{}
}

func (a *Addresses) set(id string, addr common.Address) {
	switch id {
	case contract.TokenID:
		a.Token = addr
	case contract.AllocationsID:
		a.Allocations = addr
	case contract.PrivateSaleID:
		a.PrivateSale = addr
	}
}

// AddressVar is the environment variable name a deployed contract's address
// is printed under.
func AddressVar(id string) string {
	switch id {
	case contract.TokenID:
		return config.TokenEnvVar
	case contract.AllocationsID:
		return config.AllocationsEnvVar
	case contract.PrivateSaleID:
		return config.WhitelistedEnvVar
	}
	return ""
}

// StepResult records a mined step.
type StepResult struct {
	Step        int
	Description string
	From        common.Address
	Hash        common.Hash
	Nonce       uint64
	Contract    common.Address // set for deployments
}

// Result is the outcome of a run.
type Result struct {
	Addresses
	TotalSupply *big.Int
	Steps       []StepResult
	FeeFetches  int
}

// Deployer executes the choreography. Each step is awaited to a successful
// receipt before the next is sent; the first failure stops the run.
type Deployer struct {
	Backend   contract.Backend
	Fees      FeeSource
	FeeFloor  *big.Int
	Roles     *wallet.RoleSet
	Artifacts map[string]*contract.Artifact // by builtin ID
	Params    Params
	Log       *zap.Logger
	Now       func() time.Time
	Poll      time.Duration

	// OnStep is called after each step is mined.
	OnStep func(StepResult)
	// OnDeployed is called after a deployment step is mined.
	OnDeployed func(id string, tx *contract.SentTx)
}

type run struct {
	*Deployer
	chainID     *big.Int
	fees        contract.Fees
	addrs       Addresses
	token       *contract.Token
	totalSupply *big.Int
	roles       *wallet.RoleSet
	params      Params
	artifacts   map[string]*contract.Artifact
	senders     map[wallet.Role]*contract.Transactor
}

// Run executes steps from..17. existing supplies the addresses of contracts
// deployed by earlier steps when from > 1.
func (d *Deployer) Run(ctx context.Context, from int, existing Addresses) (*Result, error) {
	steps := Steps()
	if from < 1 || from > len(steps) {
		return nil, fmt.Errorf("step %d out of range 1..%d", from, len(steps))
	}
	steps = steps[from-1:]

	if err := d.check(steps, existing); err != nil {
		return nil, err
	}

	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	chainID, err := d.Backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain ID: %w", err)
	}

	r := &run{
		Deployer:  d,
		chainID:   chainID,
		addrs:     existing,
		roles:     d.Roles,
		params:    d.Params,
		artifacts: d.Artifacts,
		senders:   make(map[wallet.Role]*contract.Transactor),
	}
	res := &Result{}

	if from > 1 {
		log.Info("Resuming deployment", zap.Int("from_step", from), zap.String("token", existing.Token.Hex()))
		if err := r.bindToken(ctx, existing.Token); err != nil {
			return res, err
		}
	}

	for i, s := range steps {
		if s.RefreshFees || i == 0 {
			fd, err := d.Fees.FeeData(ctx, d.FeeFloor)
			if err != nil {
				return r.result(res), fmt.Errorf("step %d: fetching fee data: %w", s.N, err)
			}
			r.fees = contract.FeesFrom(fd)
			res.FeeFetches++
			log.Debug("Fee data",
				zap.Int("step", s.N),
				zap.Stringer("max_fee", fd.MaxFeePerGas),
				zap.Stringer("max_priority_fee", fd.MaxPriorityFeePerGas))
		}

		sender, err := r.sender(s.Signer)
		if err != nil {
			return r.result(res), fmt.Errorf("step %d: %w", s.N, err)
		}
		tx, err := s.send(ctx, r, sender)
		if err != nil {
			return r.result(res), fmt.Errorf("step %d (%s): %w", s.N, s.Description, err)
		}
		log.Info(fmt.Sprintf("%d) %s transaction hash %s with nonce %d", s.N, s.Description, tx.Hash.Hex(), tx.Nonce),
			zap.Int("step", s.N),
			zap.String("from", tx.From.Hex()),
			zap.String("tx_hash", tx.Hash.Hex()),
			zap.Uint64("nonce", tx.Nonce))

		if _, err := sender.Wait(ctx, tx); err != nil {
			return r.result(res), fmt.Errorf("step %d (%s): %w", s.N, s.Description, err)
		}

		sr := StepResult{Step: s.N, Description: s.Description, From: tx.From, Hash: tx.Hash, Nonce: tx.Nonce}
		if s.Deploys != "" {
			sr.Contract = tx.ContractAddress
			r.addrs.set(s.Deploys, tx.ContractAddress)
			log.Info(AddressVar(s.Deploys)+"="+tx.ContractAddress.Hex(), zap.String("contract", s.Deploys))
			if d.OnDeployed != nil {
				d.OnDeployed(s.Deploys, tx)
			}
			if s.Deploys == contract.TokenID {
				if err := r.bindToken(ctx, tx.ContractAddress); err != nil {
					return r.result(res), err
				}
			}
		}
		res.Steps = append(res.Steps, sr)
		if d.OnStep != nil {
			d.OnStep(sr)
		}
	}
	return r.result(res), nil
}

// check validates inputs before anything is sent.
func (d *Deployer) check(steps []Step, existing Addresses) error {
	signing := map[wallet.Role]bool{}
	var signers []wallet.Role
	var errs []error
	for _, s := range steps {
		if !signing[s.Signer] {
			signing[s.Signer] = true
			signers = append(signers, s.Signer)
		}
		if s.Deploys != "" && d.Artifacts[s.Deploys] == nil {
			errs = append(errs, fmt.Errorf("step %d: no artifact for %s", s.N, s.Deploys))
		}
	}
	if d.Roles == nil {
		return errors.New("no roles configured")
	}
	if err := d.Roles.Require(signers, AddressRoles()); err != nil {
		errs = append(errs, err)
	}

	from := steps[0].N
	zero := common.Address{}
	if from > 1 && existing.Token == zero {
		errs = append(errs, fmt.Errorf("starting at step %d needs the token address", from))
	}
	if from > 2 && from <= 9 && existing.Allocations == zero {
		errs = append(errs, fmt.Errorf("starting at step %d needs the allocations contract address", from))
	}
	if from > 10 && existing.PrivateSale == zero {
		errs = append(errs, fmt.Errorf("starting at step %d needs the private sale contract address", from))
	}
	return errors.Join(errs...)
}

func (r *run) bindToken(ctx context.Context, addr common.Address) error {
	r.token = contract.NewToken(addr, r.Backend)
	supply, err := r.token.TotalSupply(ctx)
	if err != nil {
		return fmt.Errorf("reading token total supply: %w", err)
	}
	r.totalSupply = supply
	return nil
}

func (r *run) sender(role wallet.Role) (*contract.Transactor, error) {
	if t, ok := r.senders[role]; ok {
		return t, nil
	}
	s, err := r.roles.Signer(role)
	if err != nil {
		return nil, err
	}
	t := contract.NewTransactor(r.Backend, s, r.chainID)
	if r.Poll > 0 {
		t.WithPoll(r.Poll)
	}
	r.senders[role] = t
	return t, nil
}

// role returns a role address already validated by check.
func (r *run) role(role wallet.Role) common.Address {
	addr, _ := r.roles.Address(role)
	return addr
}

func (r *run) walletTokensWei() *big.Int {
	return contract.TokenUnits(r.params.WalletTokens())
}

func (r *run) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *run) result(res *Result) *Result {
	res.Addresses = r.addrs
	res.TotalSupply = r.totalSupply
	return res
}
