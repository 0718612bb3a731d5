package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Built-in contract IDs.
const (
	TokenID       = "token"
	AllocationsID = "allocations"
	PrivateSaleID = "privatesale"
)

// BuiltinKind describes a contract whose ABI is embedded in the binary. New
// built-ins register themselves from a package-level var in their own
// <name>_abi.go file, so the parsed ABI is ready before any other var reads it.
type BuiltinKind struct {
	ID           string  // machine key, e.g. "token"
	Name         string  // human label
	ArtifactName string  // Hardhat artifact / Solidity contract name
	Description  string  // one-line summary shown in `status`
	ABI          abi.ABI // parsed ABI, ready to use
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin parses abiJSON, adds the contract to the registry and
// returns the parsed ABI. A malformed ABI is a programming error and panics.
func RegisterBuiltin(b BuiltinKind, abiJSON string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(fmt.Sprintf("contract: builtin %s: %v", b.ID, err))
	}
	b.ABI = parsed
	builtinRegistry[b.ID] = b
	return parsed
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// MustBuiltinABI returns the ABI of a registered built-in or panics.
func MustBuiltinABI(id string) abi.ABI {
	b, ok := builtinRegistry[id]
	if !ok {
		panic("contract: unknown builtin " + id)
	}
	return b.ABI
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
