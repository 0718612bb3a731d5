package chain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the metadata for one deploy target.
type Network struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	ChainID        int64    `json:"chain_id"`
	NativeCurrency string   `json:"native_currency"`
	PublicRPCs     []string `json:"public_rpcs"`
	// AlchemyNetwork is the subdomain slug, e.g. "polygon-mainnet".
	// Empty when Alchemy does not serve the network.
	AlchemyNetwork string `json:"alchemy_network,omitempty"`
	Explorer       string `json:"explorer,omitempty"`
	// MinTipGwei is the lowest priority fee the network's validators accept.
	MinTipGwei int64 `json:"min_tip_gwei"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
	byID     map[int64]*Network
}

// NewRegistry returns the registry of supported networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
		byID:     make(map[int64]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
		r.byID[n.ChainID] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by its slug name (e.g. "polygon", "amoy").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNetworkNotFound, name)
	}
	return n, nil
}

// GetByChainID finds a network by its numeric chain ID.
func (r *Registry) GetByChainID(id int64) (*Network, error) {
	n, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: chain id %d", ErrNetworkNotFound, id)
	}
	return n, nil
}

// AlchemyURL returns the Alchemy endpoint for key, or "" when the network has
// no Alchemy slug or key is empty.
func (n *Network) AlchemyURL(key string) string {
	if n.AlchemyNetwork == "" || key == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.g.alchemy.com/v2/%s", n.AlchemyNetwork, key)
}

// RPCs returns endpoints in failover order: Alchemy (when keyed), custom, public.
func (n *Network) RPCs(alchemyKey string, custom []string) []string {
	var urls []string
	if u := n.AlchemyURL(alchemyKey); u != "" {
		urls = append(urls, u)
	}
	urls = append(urls, custom...)
	return append(urls, n.PublicRPCs...)
}

// MinTip returns the network's priority fee floor in wei.
func (n *Network) MinTip() *big.Int {
	return Gwei(n.MinTipGwei)
}

// TxURL links a transaction on the network's explorer.
func (n *Network) TxURL(hash string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + hash
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name: "localhost", DisplayName: "Local node", ChainID: 31337,
			NativeCurrency: "ETH",
			PublicRPCs:     []string{"http://127.0.0.1:8545"},
		},
		{
			Name: "amoy", DisplayName: "Polygon Amoy", ChainID: 80002,
			NativeCurrency: "POL",
			PublicRPCs:     []string{"https://rpc-amoy.polygon.technology"},
			AlchemyNetwork: "polygon-amoy",
			Explorer:       "https://amoy.polygonscan.com",
			MinTipGwei:     25,
		},
		{
			Name: "polygon", DisplayName: "Polygon", ChainID: 137,
			NativeCurrency: "POL",
			PublicRPCs:     []string{"https://polygon-bor-rpc.publicnode.com", "https://polygon-pokt.nodies.app"},
			AlchemyNetwork: "polygon-mainnet",
			Explorer:       "https://polygonscan.com",
			MinTipGwei:     30,
		},
	}
}
