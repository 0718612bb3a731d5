package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/logging"
	"github.com/Mohsinsiddi/btmtctl/internal/ui"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// newWalletManager creates a Manager backed by wallets.json and the OS keychain.
func newWalletManager() *wallet.Manager {
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeystore(wallet.DefaultKeystore(cfg.Dir())),
	)
}

// resolveRoles resolves every role from env overrides and wallet assignments.
func resolveRoles() (*wallet.RoleSet, error) {
	res := wallet.Resolver{Manager: newWalletManager(), Assignments: cfg.Roles}
	return res.Resolve()
}

// activeNetwork returns the network the current profile targets.
func activeNetwork() (*chain.Network, error) {
	return chain.NewRegistry().GetByName(profile.Network())
}

// connect picks the first healthy endpoint for the profile's network and
// checks it serves the expected chain.
func connect(ctx context.Context) (*chain.Network, *chain.EVMClient, error) {
	n, err := activeNetwork()
	if err != nil {
		return nil, nil, err
	}
	urls := n.RPCs(os.Getenv(config.AlchemyKeyEnvVar), cfg.GetRPCs(n.Name))

	sp := ui.NewSpinner(os.Stderr, fmt.Sprintf("Connecting to %s...", n.DisplayName))
	sp.Start()
	client, err := chain.SelectEndpoint(ctx, urls, config.RPCSelectTimeout)
	sp.Stop()
	if err != nil {
		return nil, nil, err
	}

	id, err := client.ChainID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("getting chain ID: %w", err)
	}
	if id.Int64() != n.ChainID {
		return nil, nil, fmt.Errorf("endpoint serves chain %s, profile %s expects %s (%d)",
			id, profile, n.Name, n.ChainID)
	}
	logger.Debug("Connected", zap.String("network", n.Name), zap.Int64("chain_id", n.ChainID))
	return n, client, nil
}

// contractEnvVars lists the variables a contract address is read from, in
// priority order.
func contractEnvVars(id string) []string {
	switch id {
	case contract.TokenID:
		return []string{config.TokenEnvVar}
	case contract.AllocationsID:
		return []string{config.AllocationsEnvVar}
	case contract.PrivateSaleID:
		return []string{config.PrivateSaleEnvVar, config.WhitelistedEnvVar}
	}
	return nil
}

// lookupContract finds a deployed contract: environment first, then the
// deployments registry. It returns the address and where it came from.
func lookupContract(lookup func(string) (string, bool), reg *contract.Registry, id, network string) (common.Address, string, error) {
	for _, v := range contractEnvVars(id) {
		s, ok := lookup(v)
		if !ok || s == "" {
			continue
		}
		if !common.IsHexAddress(s) {
			return common.Address{}, "", fmt.Errorf("%s: %w: %s", v, wallet.ErrInvalidAddress, s)
		}
		return common.HexToAddress(s), "env " + v, nil
	}
	e, err := reg.Get(id, network)
	if err != nil {
		return common.Address{}, "", err
	}
	return e.Addr(), "deployments.json", nil
}

// contractAddress is lookupContract against the process environment and
// the config dir registry.
func contractAddress(id, network string) (common.Address, string, error) {
	reg, err := loadRegistry()
	if err != nil {
		return common.Address{}, "", err
	}
	return lookupContract(os.LookupEnv, reg, id, network)
}

// optionalContract is contractAddress with a missing deployment reported as
// the zero address.
func optionalContract(id, network string) (common.Address, error) {
	addr, _, err := contractAddress(id, network)
	if errors.Is(err, contract.ErrContractNotFound) {
		return common.Address{}, nil
	}
	return addr, err
}

func loadRegistry() (*contract.Registry, error) {
	reg := contract.NewRegistry(cfg.DeploymentsPath())
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading deployments: %w", err)
	}
	return reg, nil
}

// startRunLog tees base into a per-run JSON file under the config dir.
func startRunLog(base *zap.Logger, command string) (*zap.Logger, func() error, string, error) {
	dir, err := cfg.LogsDir()
	if err != nil {
		return nil, nil, "", err
	}
	path := logging.RunFile(dir, command, time.Now())
	log, closeFn, err := logging.WithRunLog(base, path)
	if err != nil {
		return nil, nil, "", err
	}
	return log.With(zap.String("profile", string(profile))), closeFn, path, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
