package config

// Config holds all btmtctl configuration.
type Config struct {
	Roles           map[string]string   `json:"roles"`             // role -> wallet name
	ArtifactsDir    string              `json:"artifacts_dir"`     // hardhat artifacts root
	LedgerDir       string              `json:"ledger_dir"`        // allocation CSVs
	CustomRPCs      map[string][]string `json:"custom_rpcs"`       // network -> extra RPC URLs
	FeeRefreshEvery int                 `json:"fee_refresh_every"` // allocate iterations per fee refetch
	MaxDelayMs      int                 `json:"max_delay_ms"`      // allocate throttle upper bound

	// internal: config dir path used for Save()
	configDir string
}
