package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusBeneficiary string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read the deployed contracts for the active profile",
	Long: `Show the token supply, the allocations contract's allowance from the
allocations wallet and the private sale window. Addresses come from the
*_CONTRACT_ADDRESS variables, else from deployments.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		n, client, err := connect(ctx)
		if err != nil {
			return err
		}

		addrs, missing, err := deployedContracts(func(id string) (common.Address, string, error) {
			return contractAddress(id, n.Name)
		})
		if err != nil {
			return err
		}
		for _, b := range missing {
			fmt.Println(ui.Warn(fmt.Sprintf("%s: not deployed on %s", b.Name, n.Name)))
		}
		if len(addrs) == 0 {
			fmt.Println(ui.Hint("Deploy first: btmtctl deploy --env " + string(profile)))
			return nil
		}

		if addr, ok := addrs[contract.TokenID]; ok {
			if err := tokenStatus(ctx, client, addr, addrs[contract.AllocationsID]); err != nil {
				return err
			}
		}
		if addr, ok := addrs[contract.AllocationsID]; ok {
			if err := allocationsStatus(ctx, client, addr); err != nil {
				return err
			}
		}
		if addr, ok := addrs[contract.PrivateSaleID]; ok {
			if err := privateSaleStatus(ctx, client, addr); err != nil {
				return err
			}
		}
		return nil
	},
}

// deployedContracts looks up every builtin contract. Contracts with no known
// address are returned in missing; any other lookup error is fatal.
func deployedContracts(find func(id string) (common.Address, string, error)) (map[string]common.Address, []contract.BuiltinKind, error) {
	addrs := map[string]common.Address{}
	var missing []contract.BuiltinKind
	for _, b := range contract.AllBuiltins() {
		addr, source, err := find(b.ID)
		if errors.Is(err, contract.ErrContractNotFound) {
			missing = append(missing, b)
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%s address: %w", b.Name, err)
		}
		addrs[b.ID] = addr
		logger.Debug("Contract address", zap.String("contract", b.ID), zap.String("source", source))
	}
	return addrs, missing, nil
}

func tokenStatus(ctx context.Context, client *chain.EVMClient, addr, allocations common.Address) error {
	tok := contract.NewToken(addr, client)
	symbol, err := tok.Symbol(ctx)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	supply, err := tok.TotalSupply(ctx)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	pairs := [][2]string{
		{"Address", addr.Hex()},
		{"Total supply", chain.WeiToETH(supply) + " " + symbol},
	}

	if allocations != (common.Address{}) {
		feeless, err := tok.IsFeeless(ctx, allocations)
		if err != nil {
			return fmt.Errorf("token: %w", err)
		}
		pairs = append(pairs, [2]string{"Allocations feeless", fmt.Sprintf("%t", feeless)})

		if holder, ok := allocationsWallet(); ok {
			allowance, err := tok.Allowance(ctx, holder, allocations)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			balance, err := tok.BalanceOf(ctx, holder)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			pairs = append(pairs,
				[2]string{"Allocations wallet", chain.WeiToETH(balance) + " " + symbol},
				[2]string{"Allowance", chain.WeiToETH(allowance) + " " + symbol})
		}
	}
	fmt.Println(ui.KeyValueBlock("Token", pairs))
	return nil
}

// allocationsWallet returns the allocations wallet address when it resolves.
func allocationsWallet() (common.Address, bool) {
	roles, err := resolveRoles()
	if err != nil {
		logger.Debug("Roles unresolved", zap.Error(err))
		return common.Address{}, false
	}
	addr, err := roles.Address(wallet.Allocations)
	return addr, err == nil
}

func allocationsStatus(ctx context.Context, client *chain.EVMClient, addr common.Address) error {
	a := contract.NewAllocations(addr, client)
	tok, err := a.Token(ctx)
	if err != nil {
		return fmt.Errorf("allocations: %w", err)
	}
	pairs := [][2]string{
		{"Address", addr.Hex()},
		{"Token", tok.Hex()},
	}

	if statusBeneficiary != "" {
		if !common.IsHexAddress(statusBeneficiary) {
			return fmt.Errorf("%w: %s", wallet.ErrInvalidAddress, statusBeneficiary)
		}
		b := common.HexToAddress(statusBeneficiary)
		vw, err := a.VestingWallet(ctx, b)
		if err != nil {
			return fmt.Errorf("allocations: %w", err)
		}
		cliff, err := a.VestingWalletCliff(ctx, b)
		if err != nil {
			return fmt.Errorf("allocations: %w", err)
		}
		vested, err := a.VestedAmount(ctx, b)
		if err != nil {
			return fmt.Errorf("allocations: %w", err)
		}
		pairs = append(pairs,
			[2]string{"Beneficiary", b.Hex()},
			[2]string{"Vesting wallet", vw.Hex()},
			[2]string{"Cliff", fmt.Sprintf("%ds", cliff)},
			[2]string{"Vested", chain.WeiToETH(vested)})
	}
	fmt.Println(ui.KeyValueBlock("Allocations", pairs))
	return nil
}

func privateSaleStatus(ctx context.Context, client *chain.EVMClient, addr common.Address) error {
	ps := contract.NewPrivateSale(addr, client)
	rate, err := ps.Rate(ctx)
	if err != nil {
		return fmt.Errorf("private sale: %w", err)
	}
	opening, closing, err := ps.Window(ctx)
	if err != nil {
		return fmt.Errorf("private sale: %w", err)
	}
	open, err := ps.IsOpen(ctx)
	if err != nil {
		return fmt.Errorf("private sale: %w", err)
	}
	closed, err := ps.HasClosed(ctx)
	if err != nil {
		return fmt.Errorf("private sale: %w", err)
	}

	state := ui.StyleWarning.Render("not open yet")
	switch {
	case open:
		state = ui.StyleSuccess.Render("open")
	case closed:
		state = ui.StyleError.Render("closed")
	}
	fmt.Println(ui.KeyValueBlock("Private sale", [][2]string{
		{"Address", addr.Hex()},
		{"Rate", rate.String() + " tokens per native unit"},
		{"Opens", opening.Format("2006-01-02 15:04:05 MST") + "  " + ui.Meta(humanize.Time(opening))},
		{"Closes", closing.Format("2006-01-02 15:04:05 MST") + "  " + ui.Meta(humanize.Time(closing))},
		{"State", state},
	}))
	return nil
}

func init() {
	statusCmd.Flags().StringVar(&statusBeneficiary, "beneficiary", "", "also show the vesting wallet of this allocation address")
}
