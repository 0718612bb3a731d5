package deploy

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

const month = 30 * 24 * time.Hour

// Params are the deployment constants. Supplies are whole tokens; tariff and
// cap are whole native-currency units.
type Params struct {
	InitialSupply uint64 `yaml:"initial_supply"`
	FinalSupply   uint64 `yaml:"final_supply"`
	CompanyRate   uint64 `yaml:"company_rate"` // per mille
	EsgFundRate   uint64 `yaml:"esg_fund_rate"`
	BurnRate      uint64 `yaml:"burn_rate"`

	AllocationsCliff   time.Duration `yaml:"allocations_cliff"`
	AllocationsVesting time.Duration `yaml:"allocations_vesting"`

	WhitelistedRate    uint64        `yaml:"whitelisted_rate"` // tokens per native unit
	InvestorTariff     uint64        `yaml:"investor_tariff"`
	InvestorCap        uint64        `yaml:"investor_cap"`
	PrivateSaleCliff   time.Duration `yaml:"private_sale_cliff"`
	PrivateSaleVesting time.Duration `yaml:"private_sale_vesting"`
	OpensIn            time.Duration `yaml:"opens_in"`  // opening time = start + OpensIn
	ClosesIn           time.Duration `yaml:"closes_in"` // closing time = start + ClosesIn
}

// ParamsFor returns the defaults for profile p. Production uses real vesting
// schedules; development and testing shrink them to minutes.
func ParamsFor(p config.Profile) Params {
	params := Params{
		InitialSupply:   300_000_000,
		FinalSupply:     200_000_000,
		CompanyRate:     1,
		EsgFundRate:     1,
		BurnRate:        1,
		WhitelistedRate: 20,
		InvestorTariff:  500,
		InvestorCap:     50_000,
	}
	if p.IsProduction() {
		params.AllocationsCliff = 9 * month
		params.AllocationsVesting = 10 * month
		params.PrivateSaleCliff = 6 * month
		params.PrivateSaleVesting = 10 * month
		params.OpensIn = 15 * time.Minute
		params.ClosesIn = 20 * 24 * time.Hour
	} else {
		params.AllocationsCliff = 3 * time.Minute
		params.AllocationsVesting = 6 * time.Minute
		params.PrivateSaleCliff = 10 * time.Minute
		params.PrivateSaleVesting = 6 * time.Minute
		params.OpensIn = 5 * time.Minute
		params.ClosesIn = month
	}
	return params
}

// ApplyOverrides decodes YAML from path over p. Unknown keys are an error.
func (p *Params) ApplyOverrides(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading params: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return p.Validate()
}

// Validate rejects parameter sets the contracts would refuse.
func (p Params) Validate() error {
	var errs []error
	if p.InitialSupply == 0 {
		errs = append(errs, errors.New("initial_supply must be positive"))
	}
	if p.FinalSupply > p.InitialSupply {
		errs = append(errs, errors.New("final_supply exceeds initial_supply"))
	}
	if p.WhitelistedRate == 0 {
		errs = append(errs, errors.New("whitelisted_rate must be positive"))
	}
	if p.InvestorTariff > p.InvestorCap {
		errs = append(errs, errors.New("investor_tariff exceeds investor_cap"))
	}
	if p.ClosesIn <= p.OpensIn {
		errs = append(errs, errors.New("closes_in must be after opens_in"))
	}
	for name, d := range map[string]time.Duration{
		"allocations_cliff":    p.AllocationsCliff,
		"allocations_vesting":  p.AllocationsVesting,
		"private_sale_cliff":   p.PrivateSaleCliff,
		"private_sale_vesting": p.PrivateSaleVesting,
		"opens_in":             p.OpensIn,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s is negative", name))
		}
	}
	return errors.Join(errs...)
}

// WalletTokens is the whole-token amount minted to each of the company,
// allocations and crowdsales wallets.
func (p Params) WalletTokens() *big.Int {
	return new(big.Int).SetUint64(p.InitialSupply / 3)
}

// MaxCompanyWalletTransfer caps single transfers out of the company wallet.
func (p Params) MaxCompanyWalletTransfer() *big.Int {
	return new(big.Int).Div(p.WalletTokens(), big.NewInt(10))
}

// TokenParams builds the token constructor argument.
func (p Params) TokenParams(roles *wallet.RoleSet) (contract.TokenParams, error) {
	a := &roleAddrs{roles: roles}
	tp := contract.TokenParams{
		InitialSupply:                     new(big.Int).SetUint64(p.InitialSupply),
		FinalSupply:                       new(big.Int).SetUint64(p.FinalSupply),
		AllocationsWalletTokens:           p.WalletTokens(),
		CrowdsalesWalletTokens:            p.WalletTokens(),
		MaxCompanyWalletTransfer:          p.MaxCompanyWalletTransfer(),
		CompanyRate:                       new(big.Int).SetUint64(p.CompanyRate),
		EsgFundRate:                       new(big.Int).SetUint64(p.EsgFundRate),
		BurnRate:                          new(big.Int).SetUint64(p.BurnRate),
		AllocationsWallet:                 a.get(wallet.Allocations),
		CrowdsalesWallet:                  a.get(wallet.Crowdsales),
		CompanyRewardsWallet:              a.get(wallet.CompanyRewards),
		EsgFundWallet:                     a.get(wallet.ESGFund),
		FeelessAdminWallet:                a.get(wallet.FeelessAdmin),
		CompanyRestrictionWhitelistWallet: a.get(wallet.CompanyRestrictionWhitelist),
	}
	return tp, a.err()
}

// PrivateSaleParams builds the private sale constructor argument. start is
// the reference time for the sale window.
func (p Params) PrivateSaleParams(roles *wallet.RoleSet, token common.Address, start time.Time) (contract.PrivateSaleParams, error) {
	a := &roleAddrs{roles: roles}
	ps := contract.PrivateSaleParams{
		Rate:            new(big.Int).SetUint64(p.WhitelistedRate),
		Wallet:          a.get(wallet.Crowdsales),
		Purchaser:       a.get(wallet.CrowdsalesClientPurchaser),
		Token:           token,
		Whitelister:     a.get(wallet.Whitelister),
		OpeningTime:     big.NewInt(start.Add(p.OpensIn).Unix()),
		ClosingTime:     big.NewInt(start.Add(p.ClosesIn).Unix()),
		InvestorTariff:  contract.TokenUnits(new(big.Int).SetUint64(p.InvestorTariff)),
		InvestorCap:     contract.TokenUnits(new(big.Int).SetUint64(p.InvestorCap)),
		Cliff:           seconds(p.PrivateSaleCliff),
		VestingDuration: seconds(p.PrivateSaleVesting),
	}
	return ps, a.err()
}

func seconds(d time.Duration) uint64 { return uint64(d / time.Second) }

// roleAddrs resolves role addresses, collecting every failure.
type roleAddrs struct {
	roles *wallet.RoleSet
	errs  []error
}

func (a *roleAddrs) get(r wallet.Role) common.Address {
	addr, err := a.roles.Address(r)
	if err != nil {
		a.errs = append(a.errs, err)
	}
	return addr
}

func (a *roleAddrs) err() error { return errors.Join(a.errs...) }
