package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/spf13/cobra"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets and role assignments",
	Long: `Store signing keys in the OS keychain and assign them to the deployment
roles. A <ROLE>_PRIVATE_KEY environment variable always wins over the
assigned wallet, e.g. ALLOCATIONS_ADMIN_WALLET_PRIVATE_KEY.`,
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a signing wallet (--key) or a watch-only address",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr := newWalletManager()

		if walletKeyFlag != "" {
			if err := mgr.AddWithKey(name, walletKeyFlag); err != nil {
				return err
			}
			w, err := mgr.Get(name)
			if err != nil {
				return err
			}
			fmt.Println(ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Println(ui.Hint(fmt.Sprintf("Assign it with: btmtctl wallet assign <role> %s", name)))
			return nil
		}

		if len(args) < 2 {
			return errors.New("address required for watch-only wallet\n  Usage: btmtctl wallet add <name> <address>\n  Or for signing: btmtctl wallet add <name> --key <private-key>")
		}
		if err := mgr.AddWatchOnly(name, args[1]); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(args[1]))))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a new keypair and store the private key in the OS keychain.
The private key is printed once.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		g, err := wallet.Generate()
		if err != nil {
			return err
		}
		if err := newWalletManager().AddWithKey(name, g.PrivateKey); err != nil {
			return err
		}

		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q generated: %s", name, ui.Addr(g.Address.Hex()))))
		fmt.Println(ui.StyleBorder.BorderForeground(ui.ColorError).Render(
			ui.Warn("SAVE YOUR PRIVATE KEY. It is shown only once.") + "\n\n" + ui.Val(g.PrivateKey)))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored wallets and the roles they hold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		wallets, err := newWalletManager().List()
		if err != nil {
			return err
		}
		if len(wallets) == 0 {
			fmt.Println(ui.Info("No wallets configured yet."))
			fmt.Println(ui.Hint("Add one with: btmtctl wallet add <name> --key <private-key>"))
			return nil
		}

		held := map[string][]string{}
		for _, r := range wallet.AllRoles {
			if name, ok := cfg.Roles[string(r)]; ok {
				held[name] = append(held[name], string(r))
			}
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 11},
			{Title: "Roles", Width: 40},
		})
		for _, w := range wallets {
			roles := "-"
			if rs := held[w.Name]; len(rs) > 0 {
				roles = fmt.Sprint(rs)
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), roles})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !ui.ConfirmDanger(os.Stdin, os.Stdout, fmt.Sprintf("Remove wallet %q and delete its key?", name)) {
			fmt.Println(ui.Meta("Cancelled."))
			return nil
		}
		if err := newWalletManager().Remove(name); err != nil {
			return err
		}

		var dropped int
		for role, w := range cfg.Roles {
			if w == name && cfg.UnassignRole(role) {
				dropped++
			}
		}
		if dropped > 0 {
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println(ui.Warn(fmt.Sprintf("%d role assignment(s) cleared.", dropped)))
		}
		fmt.Println(ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletAssignCmd = &cobra.Command{
	Use:   "assign <role> <wallet>",
	Short: "Assign a stored wallet to a role",
	Long: `Map a role to a stored wallet. Roles may be given by name
(allocationsAdminWallet) or env prefix (ALLOCATIONS_ADMIN_WALLET).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := wallet.ParseRole(args[0])
		if err != nil {
			return err
		}
		w, err := newWalletManager().Get(args[1])
		if err != nil {
			return err
		}
		cfg.AssignRole(string(role), w.Name)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s → %s (%s)", role, w.Name, ui.Addr(w.Address))))
		if w.Type != wallet.TypeSigning {
			fmt.Println(ui.Warn("Watch-only wallets can only serve roles that never sign."))
		}
		return nil
	},
}

var walletUnassignCmd = &cobra.Command{
	Use:   "unassign <role>",
	Short: "Clear a role assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		role, err := wallet.ParseRole(args[0])
		if err != nil {
			return err
		}
		if !cfg.UnassignRole(string(role)) {
			fmt.Println(ui.Meta(fmt.Sprintf("%s is not assigned.", role)))
			return nil
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s unassigned.", role)))
		return nil
	},
}

var walletRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show how every role resolves",
	Long: `Resolve every role the way deploy and allocate do: <ROLE>_PRIVATE_KEY,
then the assigned wallet, then <ROLE>_ADDRESS (watch-only).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rs, err := resolveRoles()
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Role", Width: 34},
			{Title: "Address", Width: 42},
			{Title: "Signs", Width: 5},
			{Title: "Source", Width: 40},
		})
		var missing int
		for _, r := range wallet.AllRoles {
			addr, err := rs.Address(r)
			if err != nil {
				missing++
				t.AddRow(ui.Row{string(r), "-", "-", "unresolved"})
				continue
			}
			signs := "no"
			if _, err := rs.Signer(r); err == nil {
				signs = "yes"
			}
			t.AddRow(ui.Row{string(r), addr.Hex(), signs, rs.Source(r)})
		}
		fmt.Println(t.Render())
		if missing > 0 {
			fmt.Println(ui.Warn(fmt.Sprintf("%d role(s) unresolved.", missing)))
			fmt.Println(ui.Hint("Assign with: btmtctl wallet assign <role> <wallet>, or set <ROLE>_PRIVATE_KEY"))
		}
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletRemoveCmd,
		walletAssignCmd, walletUnassignCmd, walletRolesCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "read-write"
	default:
		return t
	}
}
