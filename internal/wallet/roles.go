package wallet

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
)

// ErrRoleUnresolved is returned when a role has no key or address configured.
var ErrRoleUnresolved = errors.New("role not resolved")

// Role names an account the deployment and allocation flows act as.
type Role string

// Roles in signer order.
const (
	CompanyLiquidity            Role = "companyLiquidityWallet"
	Allocations                 Role = "allocationsWallet"
	Crowdsales                  Role = "crowdsalesWallet"
	CompanyRewards              Role = "companyRewardsWallet"
	ESGFund                     Role = "esgFundWallet"
	Whitelister                 Role = "whitelisterWallet"
	FeelessAdmin                Role = "feelessAdminWallet"
	CompanyRestrictionWhitelist Role = "companyRestrictionWhitelistWallet"
	AllocationsAdmin            Role = "allocationsAdminWallet"
	CrowdsalesClientPurchaser   Role = "crowdsalesClientPurchaserWallet"
)

// AllRoles lists every role in signer order.
var AllRoles = []Role{
	CompanyLiquidity,
	Allocations,
	Crowdsales,
	CompanyRewards,
	ESGFund,
	Whitelister,
	FeelessAdmin,
	CompanyRestrictionWhitelist,
	AllocationsAdmin,
	CrowdsalesClientPurchaser,
}

// ParseRole matches a role by its camelCase name or its env prefix.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, r.envPrefix()) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// KeyEnvVar is the variable holding the role's private key,
// e.g. ALLOCATIONS_ADMIN_WALLET_PRIVATE_KEY.
func (r Role) KeyEnvVar() string { return r.envPrefix() + "_PRIVATE_KEY" }

// AddressEnvVar is the variable holding a watch address for the role.
func (r Role) AddressEnvVar() string { return r.envPrefix() + "_ADDRESS" }

func (r Role) envPrefix() string {
	var b strings.Builder
	for i, c := range string(r) {
		if unicode.IsUpper(c) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(c))
	}
	return b.String()
}

// RoleSet holds what each role resolved to.
type RoleSet struct {
	signers   map[Role]*Signer
	addresses map[Role]common.Address
	sources   map[Role]string
}

// NewRoleSet returns an empty set.
func NewRoleSet() *RoleSet {
	return &RoleSet{
		signers:   make(map[Role]*Signer),
		addresses: make(map[Role]common.Address),
		sources:   make(map[Role]string),
	}
}

// SetSigner binds a signing key to r.
func (rs *RoleSet) SetSigner(r Role, s *Signer, source string) {
	rs.signers[r] = s
	rs.addresses[r] = s.Address()
	rs.sources[r] = source
}

// SetAddress binds a watch address to r.
func (rs *RoleSet) SetAddress(r Role, addr common.Address, source string) {
	rs.addresses[r] = addr
	rs.sources[r] = source
}

// Signer returns the signer for r.
func (rs *RoleSet) Signer(r Role) (*Signer, error) {
	s, ok := rs.signers[r]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no signing key (set %s or assign a signing wallet)", ErrRoleUnresolved, r, r.KeyEnvVar())
	}
	return s, nil
}

// Address returns the address for r.
func (rs *RoleSet) Address(r Role) (common.Address, error) {
	a, ok := rs.addresses[r]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s has no address", ErrRoleUnresolved, r)
	}
	return a, nil
}

// Source describes where r was resolved from ("" when unresolved).
func (rs *RoleSet) Source(r Role) string { return rs.sources[r] }

// Require checks that every role in signing has a key and every role in
// watch has at least an address.
func (rs *RoleSet) Require(signing, watch []Role) error {
	var errs []error
	for _, r := range signing {
		if _, err := rs.Signer(r); err != nil {
			errs = append(errs, err)
		}
	}
	for _, r := range watch {
		if _, err := rs.Address(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolver maps roles to keys. Environment variables win over wallet
// assignments from config.
type Resolver struct {
	Manager     *Manager
	Assignments map[string]string // role -> wallet name
	LookupEnv   func(string) (string, bool)
}

// Resolve resolves every role it can. Roles with nothing configured are left
// out of the set; malformed configuration is an error.
func (res Resolver) Resolve() (*RoleSet, error) {
	lookup := res.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	rs := NewRoleSet()
	for _, r := range AllRoles {
		if hexKey, ok := lookup(r.KeyEnvVar()); ok && hexKey != "" {
			s, err := NewSignerFromHex(string(r), hexKey)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.KeyEnvVar(), err)
			}
			rs.SetSigner(r, s, "env "+r.KeyEnvVar())
			continue
		}

		if name, ok := res.Assignments[string(r)]; ok && res.Manager != nil {
			w, err := res.Manager.Get(name)
			if err != nil {
				return nil, fmt.Errorf("role %s: %w", r, err)
			}
			if w.Type == TypeSigning {
				s, err := LoadSigner(w, res.Manager.Keystore())
				if err != nil {
					return nil, fmt.Errorf("role %s: %w", r, err)
				}
				rs.SetSigner(r, s, "wallet "+name)
			} else {
				rs.SetAddress(r, common.HexToAddress(w.Address), "wallet "+name+" (watch-only)")
			}
			continue
		}

		if addr, ok := lookup(r.AddressEnvVar()); ok && addr != "" {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("%s: %w: %s", r.AddressEnvVar(), ErrInvalidAddress, addr)
			}
			rs.SetAddress(r, common.HexToAddress(addr), "env "+r.AddressEnvVar())
		}
	}
	return rs, nil
}
