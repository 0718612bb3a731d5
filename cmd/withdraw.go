package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <wallet>",
	Short: "Release vested tokens to a stored beneficiary wallet",
	Long: `Call withdraw(beneficiary) on the allocations contract, signed by the
stored wallet that is the beneficiary. Only the beneficiary may withdraw.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		signer, err := newWalletManager().Signer(args[0])
		if err != nil {
			return err
		}
		n, client, err := connect(ctx)
		if err != nil {
			return err
		}
		addr, _, err := contractAddress(contract.AllocationsID, n.Name)
		if err != nil {
			return err
		}
		chainID, err := client.ChainID(ctx)
		if err != nil {
			return fmt.Errorf("getting chain ID: %w", err)
		}

		a := contract.NewAllocations(addr, client)
		vested, err := a.VestedAmount(ctx, signer.Address())
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Withdraw · "+n.DisplayName, [][2]string{
			{"Allocations", addr.Hex()},
			{"Beneficiary", signer.Address().Hex()},
			{"Vested", chain.WeiToETH(vested)},
		}))

		fd, err := client.FeeData(ctx, n.MinTip())
		if err != nil {
			return fmt.Errorf("fetching fee data: %w", err)
		}
		tr := contract.NewTransactor(client, signer, chainID).WithPoll(config.ReceiptPoll)
		sent, err := a.Withdraw(ctx, tr, contract.FeesFrom(fd), signer.Address())
		if err != nil {
			return err
		}
		logger.Info("Withdraw sent", zap.String("hash", sent.Hash.Hex()), zap.Uint64("nonce", sent.Nonce))
		if u := n.TxURL(sent.Hash.Hex()); u != "" {
			fmt.Println(ui.Meta("  " + u))
		}

		sp := ui.NewSpinner(cmd.ErrOrStderr(), "Waiting for confirmation...")
		sp.Start()
		receipt, err := tr.Wait(ctx, sent)
		sp.Stop()
		if err != nil {
			return fmt.Errorf("withdraw %s: %w", sent.Hash.Hex(), err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("Withdrawn in block %d", receipt.BlockNumber)))
		return nil
	},
}
