package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mohsinsiddi/btmtctl/internal/allocate"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/ledger"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	allocateCohort    string
	allocateLedgerDir string
	allocateResume    bool
	allocateTUI       bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Allocate vesting tokens to the team and sales cohorts",
	Long: `Create one random wallet per allocation and call allocate() on the
allocations contract, signed by allocationsAdminWallet. The team cohort
(1070 wallets, 30,000,000 tokens) runs first, then sales (565 wallets,
20,000,000 tokens).

Every submitted transaction is appended to the cohort's ledger CSV
(teamAllocationsWallets.csv, salesAllocationsWallets.csv) together with the generated
private key, before its receipt is awaited. The first failure stops the run.

The allocations contract address comes from ALLOCATIONS_CONTRACT_ADDRESS,
else from deployments.json.

Examples:
  btmtctl allocate --env testing
  btmtctl allocate --env testing --cohort sales --resume
  btmtctl allocate --env production --tui`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cohorts, err := allocate.ParseCohorts(allocateCohort)
		if err != nil {
			return err
		}
		dir := allocateLedgerDir
		if dir == "" {
			dir = cfg.LedgerDir
		}

		ctx, stop := signalContext()
		defer stop()

		n, client, err := connect(ctx)
		if err != nil {
			return err
		}
		addr, source, err := contractAddress(contract.AllocationsID, n.Name)
		if err != nil {
			return fmt.Errorf("allocations contract: %w (set %s or run deploy)", err, config.AllocationsEnvVar)
		}

		roles, err := resolveRoles()
		if err != nil {
			return err
		}
		signer, err := roles.Signer(wallet.AllocationsAdmin)
		if err != nil {
			return err
		}
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("getting chain ID: %w", err)
		}

		fmt.Println(ui.KeyValueBlock("Allocation", [][2]string{
			{"Profile", string(profile)},
			{"Network", fmt.Sprintf("%s (%d)", n.DisplayName, n.ChainID)},
			{"Allocations contract", addr.Hex() + "  " + ui.Meta(source)},
			{"Signer", signer.Address().Hex() + "  " + ui.Meta(roles.Source(wallet.AllocationsAdmin))},
			{"Ledger dir", dir},
		}))

		base := logger
		if allocateTUI {
			base = zap.NewNop()
		}
		log, closeLog, logPath, err := startRunLog(base, "allocate")
		if err != nil {
			return err
		}
		defer closeLog() //nolint:errcheck

		runner := &allocate.Runner{
			Allocations: contract.NewAllocations(addr, client),
			From:        contract.NewTransactor(client, signer, chainID).WithPoll(config.ReceiptPoll),
			Fees:        allocate.NewFeeCache(client, n.MinTip(), cfg.FeeRefreshEvery),
			Delay:       allocate.RandomDelay(cfg.MaxDelayMs),
			Log:         log.With(zap.String("network", n.Name)),
		}

		var results []*allocate.Result
		if allocateTUI {
			results, err = allocateWithTUI(ctx, runner, cohorts, dir)
		} else {
			results, err = allocateCohorts(ctx, runner, cohorts, dir)
		}

		printAllocationSummary(results, dir)
		fmt.Println(ui.Hint("Run log: " + logPath))
		if err != nil {
			if !allocateResume {
				fmt.Println(ui.Hint("Continue without duplicating rows: btmtctl allocate --resume"))
			}
			return err
		}
		return nil
	},
}

// allocateCohorts runs each cohort against its own ledger file.
func allocateCohorts(ctx context.Context, r *allocate.Runner, cohorts []allocate.Cohort, dir string) ([]*allocate.Result, error) {
	var results []*allocate.Result
	for _, c := range cohorts {
		l, err := ledger.Open(filepath.Join(dir, c.File))
		if err != nil {
			return results, err
		}
		start := 0
		if allocateResume {
			if start, err = l.Len(); err != nil {
				return results, err
			}
		}
		if start >= c.Wallets {
			r.Log.Info("Cohort already allocated", zap.String("cohort", c.Name), zap.Int("rows", start))
			results = append(results, &allocate.Result{Cohort: c.Name, Start: start})
			continue
		}
		res, err := r.Run(ctx, c, l, start)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// allocateWithTUI runs the cohorts in a goroutine and renders progress with
// Bubble Tea. Quitting the view cancels the run.
func allocateWithTUI(ctx context.Context, r *allocate.Runner, cohorts []allocate.Cohort, dir string) ([]*allocate.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := ui.NewProgressModel("BTMT allocations · "+string(profile), cancel)
	p := tea.NewProgram(m, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))

	r.OnEvent = func(ev allocate.Event) {
		p.Send(ui.ProgressMsg{
			Cohort:    ev.Cohort,
			Iteration: ev.Iteration,
			Wallets:   ev.Wallets,
			Address:   ev.Address.Hex(),
			Amount:    ev.Amount,
			TxHash:    ev.TxHash.Hex(),
			Nonce:     ev.Nonce,
			Mined:     ev.Mined,
		})
	}

	type outcome struct {
		results []*allocate.Result
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		results, err := allocateCohorts(ctx, r, cohorts, dir)
		p.Send(ui.ProgressDoneMsg{Err: err})
		done <- outcome{results, err}
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("progress view: %w", err)
	}
	out := <-done
	if errors.Is(out.err, context.Canceled) && ctx.Err() != nil {
		return out.results, fmt.Errorf("allocation interrupted: %w", out.err)
	}
	return out.results, out.err
}

func printAllocationSummary(results []*allocate.Result, dir string) {
	if len(results) == 0 {
		return
	}
	t := ui.NewTable([]ui.Column{
		{Title: "Cohort", Width: 8},
		{Title: "From", Width: 6, Right: true},
		{Title: "Allocated", Width: 10, Right: true},
		{Title: "Tokens", Width: 14, Right: true},
		{Title: "Ledger", Width: 40},
	})
	byName := map[string]allocate.Cohort{"team": allocate.Team, "sales": allocate.Sales}
	for _, r := range results {
		file := byName[r.Cohort].File
		t.AddRow(ui.Row{
			r.Cohort,
			fmt.Sprintf("#%d", r.Start+1),
			fmt.Sprintf("%d", r.Allocated),
			ui.Tokens(r.Tokens),
			filepath.Join(dir, file),
		})
	}
	fmt.Println()
	fmt.Println(t.Render())
}

func init() {
	allocateCmd.Flags().StringVar(&allocateCohort, "cohort", "all", "cohort to allocate: team, sales or all")
	allocateCmd.Flags().StringVar(&allocateLedgerDir, "ledger-dir", "", "directory for the ledger CSVs (default: config ledger_dir)")
	allocateCmd.Flags().BoolVar(&allocateResume, "resume", false, "start each cohort after the rows already in its ledger")
	allocateCmd.Flags().BoolVar(&allocateTUI, "tui", false, "show a live progress view")
}
