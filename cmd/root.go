package cmd

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/btmtctl/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir  string
	envFlag string
	verbose bool

	cfg     *config.Config
	profile config.Profile
	logger  = zap.NewNop()
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "btmtctl",
	Short: "Deploy and allocate the BITMarkets token suite",
	Long: `btmtctl deploys the BTMT token, its allocations contract and the
whitelisted private sale, then allocates the team and sales cohorts.

The profile (development, testing, production) picks the network, the
dotenv file (.env_dev, .env_test, .env_prod) and the deploy parameters.
It comes from --env, else BTMT_ENV, else NODE_ENV; anything unrecognised
in the environment means production.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if envFlag != "" {
			if profile, err = config.ParseProfile(envFlag); err != nil {
				return err
			}
		} else {
			profile = config.ProfileFromEnv()
		}
		if _, err := config.LoadEnvFile(".", profile); err != nil {
			return err
		}

		if logger, err = logging.New(verbose); err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $BTMT_CONFIG_DIR or ~/.btmtctl)")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", "profile: development, testing or production")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		deployCmd,
		allocateCmd,
		withdrawCmd,
		ledgerCmd,
		statusCmd,
		gasCmd,
		walletCmd,
		rpcCmd,
		configCmd,
	)
}
