package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeeDataEIP1559(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":             "0x77359400", // 2 gwei
		"eth_getBlockByNumber":     map[string]interface{}{"baseFeePerGas": "0x3b9aca00"}, // 1 gwei
		"eth_maxPriorityFeePerGas": "0x59682f00",                                         // 1.5 gwei
	})
	defer srv.Close()

	fd, err := NewEVMClient(srv.URL).FeeData(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_000_000_000), fd.BaseFee)
	assert.Equal(t, big.NewInt(1_500_000_000), fd.MaxPriorityFeePerGas)
	assert.Equal(t, big.NewInt(3_500_000_000), fd.MaxFeePerGas)
	assert.InDelta(t, 3.5, fd.MaxFeeGwei(), 1e-9)
	assert.InDelta(t, 1.5, fd.TipGwei(), 1e-9)
}

func TestFeeDataRaisesTipToFloor(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":             "0x77359400",
		"eth_getBlockByNumber":     map[string]interface{}{"baseFeePerGas": "0x3b9aca00"},
		"eth_maxPriorityFeePerGas": "0x1",
	})
	defer srv.Close()

	fd, err := NewEVMClient(srv.URL).FeeData(ctx, Gwei(30))
	require.NoError(t, err)
	assert.Equal(t, Gwei(30), fd.MaxPriorityFeePerGas)
	assert.Equal(t, new(big.Int).Add(Gwei(2), Gwei(30)), fd.MaxFeePerGas)
}

func TestFeeDataTipFallback(t *testing.T) {
	// eth_maxPriorityFeePerGas missing -> method not found -> 1.5 gwei default
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":         "0x77359400",
		"eth_getBlockByNumber": map[string]interface{}{"baseFeePerGas": "0x0"},
	})
	defer srv.Close()

	fd, err := NewEVMClient(srv.URL).FeeData(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1_500_000_000), fd.MaxPriorityFeePerGas)
	assert.Equal(t, big.NewInt(1_500_000_000), fd.MaxFeePerGas)
}

func TestFeeDataLegacyChain(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_gasPrice":         "0x77359400",
		"eth_getBlockByNumber": map[string]interface{}{"number": "0x1"},
	})
	defer srv.Close()

	fd, err := NewEVMClient(srv.URL).FeeData(ctx, Gwei(30))
	require.NoError(t, err)
	assert.Nil(t, fd.BaseFee)
	assert.Equal(t, Gwei(2), fd.MaxFeePerGas)
	assert.Equal(t, Gwei(2), fd.MaxPriorityFeePerGas)
}

func TestFeeDataGasPriceError(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "rate limited")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).FeeData(ctx, nil)
	assert.Error(t, err)
}
