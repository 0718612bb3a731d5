package chain_test

import (
	"testing"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryHasAllNetworks(t *testing.T) {
	registry := chain.NewRegistry()
	assert.Len(t, registry.All(), 3)
}

func TestRegistryGetByName(t *testing.T) {
	registry := chain.NewRegistry()

	tests := []struct {
		name    string
		chainID int64
	}{
		{"localhost", 31337},
		{"amoy", 80002},
		{"polygon", 137},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := registry.GetByName(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.chainID, n.ChainID)

			byID, err := registry.GetByChainID(tt.chainID)
			require.NoError(t, err)
			assert.Equal(t, tt.name, byID.Name)
		})
	}
}

func TestRegistryGetUnknownNetwork(t *testing.T) {
	registry := chain.NewRegistry()
	_, err := registry.GetByName("mumbai")
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)

	_, err = registry.GetByChainID(1)
	assert.ErrorIs(t, err, chain.ErrNetworkNotFound)
}

func TestRPCsOrder(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("polygon")
	require.NoError(t, err)

	urls := n.RPCs("KEY", []string{"https://custom"})
	require.GreaterOrEqual(t, len(urls), 3)
	assert.Equal(t, "https://polygon-mainnet.g.alchemy.com/v2/KEY", urls[0])
	assert.Equal(t, "https://custom", urls[1])
	assert.Equal(t, n.PublicRPCs, urls[2:])
}

func TestRPCsWithoutKey(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("amoy")
	require.NoError(t, err)
	assert.Equal(t, n.PublicRPCs, n.RPCs("", nil))
	assert.Empty(t, n.AlchemyURL(""))
}

func TestLocalhostHasNoAlchemy(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("localhost")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, n.RPCs("KEY", nil))
	assert.Equal(t, int64(0), n.MinTip().Int64())
	assert.Empty(t, n.TxURL("0xabc"))
}

func TestMinTipAndTxURL(t *testing.T) {
	n, err := chain.NewRegistry().GetByName("polygon")
	require.NoError(t, err)
	assert.Equal(t, "30000000000", n.MinTip().String())
	assert.Equal(t, "https://polygonscan.com/tx/0xabc", n.TxURL("0xabc"))
}
