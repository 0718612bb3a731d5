package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectEndpointSkipsDeadURLs(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1"})
	defer srv.Close()

	c, err := SelectEndpoint(context.Background(), []string{"http://127.0.0.1:1", srv.URL}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, c.URL())
}

func TestSelectEndpointAllFail(t *testing.T) {
	bad := rpcErrorServer(t, -32000, "down")
	defer bad.Close()

	_, err := SelectEndpoint(context.Background(), []string{bad.URL}, time.Second)
	assert.ErrorIs(t, err, ErrNoHealthyEndpoint)
}

func TestSelectEndpointEmpty(t *testing.T) {
	_, err := SelectEndpoint(context.Background(), nil, time.Second)
	assert.ErrorIs(t, err, ErrNoHealthyEndpoint)
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://polygon-mainnet.g.alchemy.com/v2/***", Redact("https://polygon-mainnet.g.alchemy.com/v2/secret"))
	assert.Equal(t, "http://127.0.0.1:8545", Redact("http://127.0.0.1:8545"))
}
