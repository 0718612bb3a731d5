package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current configuration and the active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(ui.KeyValueBlock("Profile", [][2]string{
			{"Profile", string(profile)},
			{"Network", profile.Network()},
			{"Env file", profile.EnvFile()},
		}))
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Keys:
  artifacts_dir      Hardhat artifacts root
  ledger_dir         directory holding the allocation CSVs
  fee_refresh_every  allocate: refetch fee data every N iterations
  max_delay_ms       allocate: upper bound of the random pause between iterations`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setConfigValue(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

func setConfigValue(key, value string) error {
	positive := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%s must be a positive integer, got %q", key, value)
		}
		return n, nil
	}

	switch key {
	case "artifacts_dir":
		cfg.ArtifactsDir = value
	case "ledger_dir":
		cfg.LedgerDir = value
	case "fee_refresh_every":
		n, err := positive()
		if err != nil {
			return err
		}
		cfg.FeeRefreshEvery = n
	case "max_delay_ms":
		n, err := positive()
		if err != nil {
			return err
		}
		cfg.MaxDelayMs = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configListCmd, configSetCmd)
}
