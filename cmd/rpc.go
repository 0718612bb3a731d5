package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
	Long: `Endpoints are tried in order: Alchemy (when ALCHEMY_API_KEY is set),
custom endpoints from config, then the network's public endpoints.`,
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		n, err := chain.NewRegistry().GetByName(name)
		if err != nil {
			return err
		}
		if err := cfg.AddRPC(n.Name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(n.Name), url)))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		if err := cfg.RemoveRPC(name, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("Removed RPC for %s: %s", name, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list [network]",
	Short: "Ping every endpoint of a network in failover order",
	Long: `Ping each candidate endpoint of the network (default: the active
profile's) and show latency and head block. The first healthy row is the
one deploy and allocate would use.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := profile.Network()
		if len(args) > 0 {
			name = args[0]
		}
		n, err := chain.NewRegistry().GetByName(name)
		if err != nil {
			return err
		}
		urls := n.RPCs(os.Getenv(config.AlchemyKeyEnvVar), cfg.GetRPCs(n.Name))

		fmt.Println(ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s (chain %d)", n.DisplayName, n.ChainID)))

		ctx, stop := signalContext()
		defer stop()

		t := ui.NewTable([]ui.Column{
			{Title: "#", Width: 2, Right: true},
			{Title: "RPC URL", Width: 52},
			{Title: "Latency", Width: 8, Right: true},
			{Title: "Block #", Width: 10, Right: true},
			{Title: "Status", Width: 8},
		})
		for i, u := range urls {
			latency, block, err := ping(ctx, u)
			status, lat, blk := ui.Success("up"), fmt.Sprintf("%dms", latency.Milliseconds()), fmt.Sprintf("%d", block)
			if err != nil {
				status, lat, blk = ui.Err("down"), "-", "-"
				logger.Debug("Endpoint down", zap.String("url", chain.Redact(u)), zap.Error(err))
			}
			t.AddRow(ui.Row{fmt.Sprintf("%d", i+1), chain.Redact(u), lat, blk, status})
		}
		fmt.Println(t.Render())
		return nil
	},
}

func ping(ctx context.Context, url string) (time.Duration, uint64, error) {
	pctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	return chain.NewEVMClient(url).Ping(pctx)
}

func init() {
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd)
}
