// Package deploy runs the fixed deployment choreography: three contract
// deployments interleaved with the fee, transfer-restriction and allowance
// wiring the token needs before sales can start.
package deploy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
)

// Step is one transaction of the choreography.
type Step struct {
	N           int
	Description string
	Signer      wallet.Role
	// RefreshFees fetches new fee data before the step runs.
	RefreshFees bool
	// Deploys names the builtin contract this step creates, if any.
	Deploys string

	send func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error)
}

// Steps returns the choreography in execution order.
func Steps() []Step {
	return []Step{
		{1, "Token deployment", wallet.CompanyLiquidity, true, contract.TokenID, deployToken},
		{2, "Allocations contract deployment", wallet.CompanyLiquidity, true, contract.AllocationsID, deployAllocations},
		{3, "Make allocations contract feeless", wallet.FeelessAdmin, true, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeeless(ctx, from, r.fees, r.addrs.Allocations)
		}},
		{4, "Make allocations wallet feeless", wallet.FeelessAdmin, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeeless(ctx, from, r.fees, r.role(wallet.Allocations))
		}},
		{5, "Make allocations wallet an unrestricted receiver for company liquidity", wallet.CompanyRestrictionWhitelist, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddUnrestrictedReceiver(ctx, from, r.fees, r.role(wallet.CompanyLiquidity), r.role(wallet.Allocations), r.walletTokensWei())
		}},
		{6, "Do the unrestricted transfer from liquidity to allocations wallet", wallet.CompanyLiquidity, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.Transfer(ctx, from, r.fees, r.role(wallet.Allocations), r.walletTokensWei())
		}},
		{7, "Make allocations contract an unrestricted receiver for allocations wallet", wallet.CompanyRestrictionWhitelist, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddUnrestrictedReceiver(ctx, from, r.fees, r.role(wallet.Allocations), r.addrs.Allocations, r.walletTokensWei())
		}},
		{8, "Make allocations contract a feeless admin", wallet.FeelessAdmin, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeelessAdmin(ctx, from, r.fees, r.addrs.Allocations)
		}},
		{9, "Give allowance to the allocations contract from the allocations wallet", wallet.Allocations, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.Approve(ctx, from, r.fees, r.addrs.Allocations, AllocationsCap(r.totalSupply))
		}},
		{10, "Private sale deployment", wallet.CompanyLiquidity, true, contract.PrivateSaleID, deployPrivateSale},
		{11, "Make private sale contract feeless", wallet.FeelessAdmin, true, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeeless(ctx, from, r.fees, r.addrs.PrivateSale)
		}},
		{12, "Make crowdsales wallet feeless", wallet.FeelessAdmin, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeeless(ctx, from, r.fees, r.role(wallet.Crowdsales))
		}},
		{13, "Make crowdsales wallet an unrestricted receiver for company liquidity", wallet.CompanyRestrictionWhitelist, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddUnrestrictedReceiver(ctx, from, r.fees, r.role(wallet.CompanyLiquidity), r.role(wallet.Crowdsales), r.walletTokensWei())
		}},
		{14, "Do the unrestricted transfer from liquidity to crowdsales wallet", wallet.CompanyLiquidity, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.Transfer(ctx, from, r.fees, r.role(wallet.Crowdsales), r.walletTokensWei())
		}},
		{15, "Make private sale contract an unrestricted receiver for crowdsales wallet", wallet.CompanyRestrictionWhitelist, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddUnrestrictedReceiver(ctx, from, r.fees, r.role(wallet.Crowdsales), r.addrs.PrivateSale, PrivateSaleCap(r.totalSupply))
		}},
		{16, "Make private sale contract a feeless admin", wallet.FeelessAdmin, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.AddFeelessAdmin(ctx, from, r.fees, r.addrs.PrivateSale)
		}},
		{17, "Give allowance to the private sale contract from the crowdsales wallet", wallet.Crowdsales, false, "", func(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
			return r.token.Approve(ctx, from, r.fees, r.addrs.PrivateSale, PrivateSaleCap(r.totalSupply))
		}},
	}
}

// AllocationsCap is the allowance granted to the allocations contract: a
// third of the supply.
func AllocationsCap(totalSupply *big.Int) *big.Int {
	return new(big.Int).Div(totalSupply, big.NewInt(3))
}

// PrivateSaleCap is 40% of the sales third of the supply.
func PrivateSaleCap(totalSupply *big.Int) *big.Int {
	sales := new(big.Int).Div(totalSupply, big.NewInt(3))
	return sales.Mul(sales, big.NewInt(4)).Div(sales, big.NewInt(10))
}

// SigningRoles are the roles that send at least one step's transaction.
func SigningRoles() []wallet.Role {
	return []wallet.Role{
		wallet.CompanyLiquidity,
		wallet.Allocations,
		wallet.Crowdsales,
		wallet.FeelessAdmin,
		wallet.CompanyRestrictionWhitelist,
	}
}

// AddressRoles are passed to constructors but never sign.
func AddressRoles() []wallet.Role {
	return []wallet.Role{
		wallet.CompanyRewards,
		wallet.ESGFund,
		wallet.Whitelister,
		wallet.AllocationsAdmin,
		wallet.CrowdsalesClientPurchaser,
	}
}

func deployToken(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
	tp, err := r.params.TokenParams(r.roles)
	if err != nil {
		return nil, err
	}
	return contract.DeployToken(ctx, from, r.artifacts[contract.TokenID], r.fees, tp)
}

func deployAllocations(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
	return contract.DeployAllocations(ctx, from, r.artifacts[contract.AllocationsID], r.fees,
		r.role(wallet.Allocations), r.role(wallet.AllocationsAdmin), r.addrs.Token,
		seconds(r.params.AllocationsCliff), seconds(r.params.AllocationsVesting))
}

func deployPrivateSale(ctx context.Context, r *run, from *contract.Transactor) (*contract.SentTx, error) {
	ps, err := r.params.PrivateSaleParams(r.roles, r.addrs.Token, r.now())
	if err != nil {
		return nil, err
	}
	return contract.DeployPrivateSale(ctx, from, r.artifacts[contract.PrivateSaleID], r.fees, ps)
}

func (s Step) String() string { return fmt.Sprintf("%d) %s", s.N, s.Description) }
