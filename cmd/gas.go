package cmd

import (
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/spf13/cobra"
)

var gasCmd = &cobra.Command{
	Use:   "gas",
	Short: "Show the fee data transactions would be priced with",
	Long: `Fetch the fee data the deploy and allocate commands use: the node's
suggested tip raised to the network floor, and maxFee = 2 x baseFee + tip.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		n, client, err := connect(ctx)
		if err != nil {
			return err
		}
		fd, err := client.FeeData(ctx, n.MinTip())
		if err != nil {
			return fmt.Errorf("fetching fee data: %w", err)
		}

		gwei := func(f float64) string { return fmt.Sprintf("%.4f gwei", f) }
		base := "n/a (legacy pricing)"
		if fd.BaseFee != nil {
			base = gwei(chain.WeiToGwei(fd.BaseFee))
		}
		fmt.Println(ui.KeyValueBlock("Gas · "+n.DisplayName, [][2]string{
			{"Gas price", gwei(chain.WeiToGwei(fd.GasPrice))},
			{"Base fee", base},
			{"Priority fee", gwei(fd.TipGwei())},
			{"Tip floor", fmt.Sprintf("%d gwei", n.MinTipGwei)},
			{"Max fee", gwei(fd.MaxFeeGwei())},
		}))

		perCall := new(big.Int).Mul(fd.MaxFeePerGas, new(big.Int).SetUint64(config.GasLimitAllocate))
		fmt.Println(ui.Meta(fmt.Sprintf("  allocate() upper bound: %s %s per call",
			chain.WeiToETH(perCall), n.NativeCurrency)))
		return nil
	},
}
