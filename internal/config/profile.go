package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Profile selects the target network, env file and deploy parameters.
type Profile string

const (
	Development Profile = "development"
	Testing     Profile = "testing"
	Production  Profile = "production"
)

// Environment variables read by the CLI.
const (
	ProfileEnvVar       = "BTMT_ENV"
	LegacyProfileEnvVar = "NODE_ENV"

	AlchemyKeyEnvVar  = "ALCHEMY_API_KEY"
	TokenEnvVar       = "TOKEN_CONTRACT_ADDRESS"
	AllocationsEnvVar = "ALLOCATIONS_CONTRACT_ADDRESS"
	PrivateSaleEnvVar = "PRIVATE_SALE_CONTRACT_ADDRESS"
	WhitelistedEnvVar = "WHITELISTED_CONTRACT_ADDRESS" // printed by deploy; read as a fallback
)

// ErrUnknownProfile is returned by ParseProfile.
var ErrUnknownProfile = errors.New("unknown profile")

// ParseProfile accepts the full profile names and their short forms.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev":
		return Development, nil
	case "testing", "test":
		return Testing, nil
	case "production", "prod":
		return Production, nil
	}
	return "", fmt.Errorf("%w %q (want development, testing or production)", ErrUnknownProfile, s)
}

// ProfileFromEnv reads BTMT_ENV, then NODE_ENV. Only the exact values
// "development" and "testing" select those profiles; anything else,
// including the short forms --env accepts, selects production.
func ProfileFromEnv() Profile {
	v := os.Getenv(ProfileEnvVar)
	if v == "" {
		v = os.Getenv(LegacyProfileEnvVar)
	}
	switch Profile(v) {
	case Development, Testing:
		return Profile(v)
	}
	return Production
}

// EnvFile is the dotenv file name for the profile.
func (p Profile) EnvFile() string {
	switch p {
	case Development:
		return ".env_dev"
	case Testing:
		return ".env_test"
	}
	return ".env_prod"
}

// Network is the chain registry name the profile deploys to.
func (p Profile) Network() string {
	switch p {
	case Development:
		return "localhost"
	case Testing:
		return "amoy"
	}
	return "polygon"
}

// IsProduction reports whether the profile uses long vesting windows and mainnet.
func (p Profile) IsProduction() bool { return p == Production }

// LoadEnvFile loads the profile's dotenv file from dir when present.
// Variables already in the environment win. It reports whether a file was read.
func LoadEnvFile(dir string, p Profile) (bool, error) {
	path := filepath.Join(dir, p.EnvFile())
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("loading %s: %w", path, err)
	}
	return true, nil
}
