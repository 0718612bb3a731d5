package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrContractNotFound is returned when a deployment is not recorded.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a recorded deployment.
type Entry struct {
	Name       string `json:"name"` // builtin ID, e.g. "allocations"
	Network    string `json:"network"`
	Address    string `json:"address"`
	Deployer   string `json:"deployer,omitempty"`
	TxHash     string `json:"tx_hash,omitempty"`
	DeployedAt string `json:"deployed_at,omitempty"`
}

// NewEntry records tx as the deployment of name on network.
func NewEntry(name, network string, tx *SentTx) *Entry {
	return &Entry{
		Name:       name,
		Network:    network,
		Address:    tx.ContractAddress.Hex(),
		Deployer:   tx.From.Hex(),
		TxHash:     tx.Hash.Hex(),
		DeployedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Addr returns the entry's address.
func (e *Entry) Addr() common.Address { return common.HexToAddress(e.Address) }

// Registry stores deployments in a JSON file.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Load reads stored deployments from disk.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}

	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all deployments to disk.
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.entries(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or replaces a deployment.
func (r *Registry) Add(e *Entry) {
	r.contracts[key(e.Name, e.Network)] = e
}

// Get returns a deployment by name and network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// ForNetwork returns every deployment on network sorted by name.
func (r *Registry) ForNetwork(network string) []*Entry {
	var out []*Entry
	for _, e := range r.entries() {
		if e.Network == network {
			out = append(out, e)
		}
	}
	return out
}

// All returns all deployments sorted by network then name.
func (r *Registry) All() []*Entry {
	return r.entries()
}

// Remove deletes a deployment.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

func (r *Registry) entries() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Network != out[j].Network {
			return out[i].Network < out[j].Network
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func key(name, network string) string {
	return name + "@" + network
}
