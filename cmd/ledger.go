package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/btmtctl/internal/allocate"
	"github.com/Mohsinsiddi/btmtctl/internal/ledger"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/spf13/cobra"
)

var ledgerDirFlag string

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the allocation ledger CSVs",
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [team|sales|all]",
	Short: "Show row counts, totals and the last transaction per cohort",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cohorts, err := cohortsArg(args)
		if err != nil {
			return err
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Cohort", Width: 8},
			{Title: "Rows", Width: 11, Right: true},
			{Title: "Tokens", Width: 14, Right: true},
			{Title: "Last tx", Width: 24},
			{Title: "Nonce", Width: 6, Right: true},
		})
		for _, c := range cohorts {
			rows, err := readLedger(c)
			if err != nil {
				return err
			}
			var total uint64
			for _, r := range rows {
				total += r.Amount
			}
			last, nonce := "-", "-"
			if len(rows) > 0 {
				lr := rows[len(rows)-1]
				last = ui.TruncateAddr(lr.TxHash)
				nonce = fmt.Sprintf("%d", lr.Nonce)
			}
			t.AddRow(ui.Row{
				c.Name,
				fmt.Sprintf("%d/%d", len(rows), c.Wallets),
				ui.Tokens(total) + "/" + ui.Tokens(c.Total()),
				last,
				nonce,
			})
		}
		fmt.Println(t.Render())
		fmt.Println(ui.Meta("Ledger dir: " + ledgerDir()))
		return nil
	},
}

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify [team|sales|all]",
	Short: "Check every ledger row's receipt on chain",
	Long: `Fetch the receipt of each recorded transaction and report how many were
mined successfully, reverted, or are still unknown to the node.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cohorts, err := cohortsArg(args)
		if err != nil {
			return err
		}
		ctx, stop := signalContext()
		defer stop()

		_, client, err := connect(ctx)
		if err != nil {
			return err
		}

		var failed bool
		for _, c := range cohorts {
			rows, err := readLedger(c)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println(ui.Meta(fmt.Sprintf("%s: ledger is empty", c.Name)))
				continue
			}

			sp := ui.NewSpinner(os.Stderr, fmt.Sprintf("Verifying %s 0/%d", c.Name, len(rows)))
			sp.Start()
			rep, err := ledger.Verify(ctx, client, rows, func(done int) {
				sp.Update(fmt.Sprintf("Verifying %s %d/%d", c.Name, done, len(rows)))
			})
			sp.Stop()
			if err != nil {
				return fmt.Errorf("%s: %w", c.Name, err)
			}

			fmt.Println(ui.KeyValueBlock(c.Name, [][2]string{
				{"Rows", fmt.Sprintf("%d", len(rows))},
				{"Confirmed", fmt.Sprintf("%d", rep.Confirmed)},
				{"Reverted", fmt.Sprintf("%d", len(rep.Reverted))},
				{"Pending", fmt.Sprintf("%d", len(rep.Pending))},
			}))
			for _, r := range rep.Reverted {
				fmt.Println(ui.Err(fmt.Sprintf("reverted  %s  nonce %d  %s", r.TxHash, r.Nonce, r.Address)))
			}
			for _, r := range rep.Pending {
				fmt.Println(ui.Warn(fmt.Sprintf("pending   %s  nonce %d  %s", r.TxHash, r.Nonce, r.Address)))
			}
			failed = failed || len(rep.Reverted) > 0 || len(rep.Pending) > 0
		}
		if failed {
			return errors.New("ledger has unconfirmed rows")
		}
		fmt.Println(ui.Success("All recorded allocations are confirmed."))
		return nil
	},
}

func ledgerDir() string {
	if ledgerDirFlag != "" {
		return ledgerDirFlag
	}
	return cfg.LedgerDir
}

func cohortsArg(args []string) ([]allocate.Cohort, error) {
	if len(args) == 0 {
		return allocate.ParseCohorts("all")
	}
	return allocate.ParseCohorts(args[0])
}

// readLedger reads a cohort's rows without creating a missing file.
func readLedger(c allocate.Cohort) ([]*ledger.Row, error) {
	path := filepath.Join(ledgerDir(), c.File)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	l, err := ledger.Open(path)
	if err != nil {
		return nil, err
	}
	return l.Rows()
}

func init() {
	ledgerCmd.PersistentFlags().StringVar(&ledgerDirFlag, "ledger-dir", "", "directory holding the ledger CSVs (default: config ledger_dir)")
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerVerifyCmd)
}
