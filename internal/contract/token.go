package contract

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var weiPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// TokenUnits converts whole tokens to 18-decimal base units.
func TokenUnits(whole *big.Int) *big.Int {
	return new(big.Int).Mul(whole, weiPerToken)
}

// TokenParams is the token constructor's struct argument. Supplies and wallet
// token counts are whole tokens; rates are per mille.
type TokenParams struct {
	InitialSupply                     *big.Int       `abi:"initialSupply"`
	FinalSupply                       *big.Int       `abi:"finalSupply"`
	AllocationsWalletTokens           *big.Int       `abi:"allocationsWalletTokens"`
	CrowdsalesWalletTokens            *big.Int       `abi:"crowdsalesWalletTokens"`
	MaxCompanyWalletTransfer          *big.Int       `abi:"maxCompanyWalletTransfer"`
	CompanyRate                       *big.Int       `abi:"companyRate"`
	EsgFundRate                       *big.Int       `abi:"esgFundRate"`
	BurnRate                          *big.Int       `abi:"burnRate"`
	AllocationsWallet                 common.Address `abi:"allocationsWallet"`
	CrowdsalesWallet                  common.Address `abi:"crowdsalesWallet"`
	CompanyRewardsWallet              common.Address `abi:"companyRewardsWallet"`
	EsgFundWallet                     common.Address `abi:"esgFundWallet"`
	FeelessAdminWallet                common.Address `abi:"feelessAdminWallet"`
	CompanyRestrictionWhitelistWallet common.Address `abi:"companyRestrictionWhitelistWallet"`
}

// DeployToken deploys the token artifact.
func DeployToken(ctx context.Context, from *Transactor, art *Artifact, fees Fees, p TokenParams) (*SentTx, error) {
	return from.Deploy(ctx, art, tokenABI, fees, p)
}

// Token is a handle on a deployed BITMarketsToken.
type Token struct {
	Address common.Address
	caller  *Caller
}

// NewToken binds the token at addr.
func NewToken(addr common.Address, backend ContractCaller) *Token {
	return &Token{Address: addr, caller: NewCaller(backend, addr, tokenABI)}
}

func (t *Token) Symbol(ctx context.Context) (string, error) {
	return t.caller.Text(ctx, "symbol")
}

func (t *Token) TotalSupply(ctx context.Context) (*big.Int, error) {
	return t.caller.Uint(ctx, "totalSupply")
}

func (t *Token) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	return t.caller.Uint(ctx, "balanceOf", account)
}

func (t *Token) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return t.caller.Uint(ctx, "allowance", owner, spender)
}

func (t *Token) IsFeeless(ctx context.Context, account common.Address) (bool, error) {
	return t.caller.Bool(ctx, "isFeeless", account)
}

func (t *Token) Transfer(ctx context.Context, from *Transactor, fees Fees, to common.Address, amount *big.Int) (*SentTx, error) {
	return from.Transact(ctx, t.Address, tokenABI, "transfer", fees, to, amount)
}

func (t *Token) Approve(ctx context.Context, from *Transactor, fees Fees, spender common.Address, amount *big.Int) (*SentTx, error) {
	return from.Transact(ctx, t.Address, tokenABI, "approve", fees, spender, amount)
}

// AddFeeless exempts account from transfer fees.
func (t *Token) AddFeeless(ctx context.Context, from *Transactor, fees Fees, account common.Address) (*SentTx, error) {
	return from.Transact(ctx, t.Address, tokenABI, "addFeeless", fees, account)
}

// AddFeelessAdmin lets account mark others feeless.
func (t *Token) AddFeelessAdmin(ctx context.Context, from *Transactor, fees Fees, account common.Address) (*SentTx, error) {
	return from.Transact(ctx, t.Address, tokenABI, "addFeelessAdmin", fees, account)
}

// AddUnrestrictedReceiver allows sender to move up to amount (wei) to receiver
// despite the company wallet transfer restriction.
func (t *Token) AddUnrestrictedReceiver(ctx context.Context, from *Transactor, fees Fees, sender, receiver common.Address, amount *big.Int) (*SentTx, error) {
	return from.Transact(ctx, t.Address, tokenABI, "addUnrestrictedReceiver", fees, sender, receiver, amount)
}
