package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

const (
	defaultArtifactsDir    = "artifacts"
	defaultLedgerDir       = "."
	defaultFeeRefreshEvery = 5
	defaultMaxDelayMs      = 1000

	configFile      = "config.json"
	walletsFile     = "wallets.json"
	deploymentsFile = "deployments.json"
	logsDir         = "logs"
)

// DirEnvVar overrides the default config directory.
const DirEnvVar = "BTMT_CONFIG_DIR"

// Load reads config from dir (or creates defaults). dir defaults to ~/.btmtctl.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(DirEnvVar)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".btmtctl")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.Roles == nil {
		cfg.Roles = make(map[string]string)
	}
	if cfg.FeeRefreshEvery <= 0 {
		cfg.FeeRefreshEvery = defaultFeeRefreshEvery
	}
	if cfg.MaxDelayMs <= 0 {
		cfg.MaxDelayMs = defaultMaxDelayMs
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, url string) error {
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], url) {
		return fmt.Errorf("RPC %s already exists for network %s", url, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], url)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, url string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, url)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", url, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// AssignRole maps a deployment role to a stored wallet name.
func (c *Config) AssignRole(role, wallet string) {
	if c.Roles == nil {
		c.Roles = make(map[string]string)
	}
	c.Roles[role] = wallet
}

// UnassignRole drops the wallet mapped to role.
func (c *Config) UnassignRole(role string) bool {
	if _, ok := c.Roles[role]; !ok {
		return false
	}
	delete(c.Roles, role)
	return true
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the location of wallets.json.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// DeploymentsPath is the location of deployments.json.
func (c *Config) DeploymentsPath() string {
	return filepath.Join(c.configDir, deploymentsFile)
}

// LogsDir returns the run log directory, creating it when missing.
func (c *Config) LogsDir() (string, error) {
	dir := filepath.Join(c.configDir, logsDir)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create logs dir: %w", err)
	}
	return dir, nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Roles:           make(map[string]string),
		ArtifactsDir:    defaultArtifactsDir,
		LedgerDir:       defaultLedgerDir,
		CustomRPCs:      make(map[string][]string),
		FeeRefreshEvery: defaultFeeRefreshEvery,
		MaxDelayMs:      defaultMaxDelayMs,
		configDir:       dir,
	}
}

func loadJSON[T any](path string) (*T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &zero, nil
	}
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
