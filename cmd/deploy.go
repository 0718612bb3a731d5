package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/deploy"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	deployArtifactsDir string
	deployParamsFile   string
	deployFromStep     int
	deployYes          bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the token, allocations and private sale contracts",
	Long: `Run the 17-step deployment: token, allocations contract and whitelisted
private sale, plus the feeless, unrestricted-receiver and allowance wiring
between them. Every step is mined before the next one is sent; the first
failure stops the run.

Contract addresses are printed as TOKEN_CONTRACT_ADDRESS,
ALLOCATIONS_CONTRACT_ADDRESS and WHITELISTED_CONTRACT_ADDRESS and recorded
in deployments.json.

Examples:
  btmtctl deploy --env testing
  btmtctl deploy --env development --params params.yaml
  btmtctl deploy --env testing --from-step 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		params := deploy.ParamsFor(profile)
		if deployParamsFile != "" {
			if err := params.ApplyOverrides(deployParamsFile); err != nil {
				return err
			}
		}

		dir := deployArtifactsDir
		if dir == "" {
			dir = cfg.ArtifactsDir
		}
		artifacts := make(map[string]*contract.Artifact)
		for _, id := range []string{contract.TokenID, contract.AllocationsID, contract.PrivateSaleID} {
			art, err := contract.LoadBuiltinArtifact(dir, id)
			if err != nil {
				return err
			}
			artifacts[id] = art
		}

		roles, err := resolveRoles()
		if err != nil {
			return err
		}

		n, client, err := connect(ctx)
		if err != nil {
			return err
		}

		var existing deploy.Addresses
		if deployFromStep > 1 {
			if existing, err = existingAddresses(n.Name); err != nil {
				return err
			}
		}

		fmt.Println(ui.KeyValueBlock("Deployment", [][2]string{
			{"Profile", string(profile)},
			{"Network", fmt.Sprintf("%s (%d)", n.DisplayName, n.ChainID)},
			{"Endpoint", chain.Redact(client.URL())},
			{"Artifacts", dir},
			{"Initial supply", ui.Tokens(params.InitialSupply)},
			{"Starting step", strconv.Itoa(deployFromStep)},
		}))

		if profile.IsProduction() && !deployYes {
			if !ui.ConfirmDanger(os.Stdin, os.Stdout, fmt.Sprintf("Deploy to %s mainnet?", n.DisplayName)) {
				fmt.Println(ui.Meta("Cancelled."))
				return nil
			}
		}

		log, closeLog, logPath, err := startRunLog(logger, "deploy")
		if err != nil {
			return err
		}
		defer closeLog() //nolint:errcheck

		reg, err := loadRegistry()
		if err != nil {
			return err
		}

		d := &deploy.Deployer{
			Backend:   client,
			Fees:      client,
			FeeFloor:  n.MinTip(),
			Roles:     roles,
			Artifacts: artifacts,
			Params:    params,
			Log:       log.With(zap.String("network", n.Name)),
			Poll:      config.ReceiptPoll,
			OnStep: func(s deploy.StepResult) {
				if u := n.TxURL(s.Hash.Hex()); u != "" {
					fmt.Println(ui.Meta("   " + u))
				}
			},
			OnDeployed: func(id string, tx *contract.SentTx) {
				reg.Add(contract.NewEntry(id, n.Name, tx))
				if err := reg.Save(); err != nil {
					log.Warn("Could not record deployment", zap.String("contract", id), zap.Error(err))
				}
			},
		}

		res, err := d.Run(ctx, deployFromStep, existing)
		if res != nil {
			printAddresses(res.Addresses)
		}
		if err != nil {
			fmt.Println(ui.Hint("Run log: " + logPath))
			if res != nil && len(res.Steps) > 0 {
				next := res.Steps[len(res.Steps)-1].Step + 1
				fmt.Println(ui.Hint(fmt.Sprintf("Resume with: btmtctl deploy --env %s --from-step %d", profile, next)))
			}
			return err
		}

		fmt.Println()
		fmt.Println(ui.Success(fmt.Sprintf("Deployment complete: %d steps, %d fee fetches, total supply %s",
			len(res.Steps), res.FeeFetches, chain.WeiToETH(res.TotalSupply))))
		fmt.Println(ui.Hint("Run log: " + logPath))
		return nil
	},
}

// existingAddresses gathers contracts deployed by earlier steps.
func existingAddresses(network string) (deploy.Addresses, error) {
	var a deploy.Addresses
	var err error
	if a.Token, err = optionalContract(contract.TokenID, network); err != nil {
		return a, err
	}
	if a.Allocations, err = optionalContract(contract.AllocationsID, network); err != nil {
		return a, err
	}
	if a.PrivateSale, err = optionalContract(contract.PrivateSaleID, network); err != nil {
		return a, err
	}
	return a, nil
}

// printAddresses writes the env-style address lines for every deployed contract.
func printAddresses(a deploy.Addresses) {
	for _, id := range []string{contract.TokenID, contract.AllocationsID, contract.PrivateSaleID} {
		addr := a.Get(id)
		if addr == (common.Address{}) {
			continue
		}
		fmt.Printf("%s=%s\n", deploy.AddressVar(id), addr.Hex())
	}
}

func init() {
	deployCmd.Flags().StringVar(&deployArtifactsDir, "artifacts", "", "Hardhat or Foundry artifacts directory (default: config artifacts_dir)")
	deployCmd.Flags().StringVar(&deployParamsFile, "params", "", "YAML file overriding deploy parameters")
	deployCmd.Flags().IntVar(&deployFromStep, "from-step", 1, "resume at this step (earlier contracts are read from env or deployments.json)")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "skip the production confirmation")
}
