package contract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, abiJSON string, bytecode any) string {
	t.Helper()
	path := ArtifactPath(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	doc := map[string]any{
		"contractName": name,
		"abi":          json.RawMessage(abiJSON),
		"bytecode":     bytecode,
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestArtifactPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("artifacts", "contracts", "BITMarketsToken.sol", "BITMarketsToken.json"),
		ArtifactPath("artifacts", "BITMarketsToken"))
}

func TestLoadArtifactHardhat(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "BITMarketsToken", tokenABIJSON, "0x6080604052")

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, "BITMarketsToken", art.Name)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, art.Bytecode)
	assert.Contains(t, art.ABI.Methods, "addFeeless")
}

func TestLoadArtifactFoundry(t *testing.T) {
	path := writeArtifact(t, t.TempDir(), "BITMarketsTokenAllocations", allocationsABIJSON,
		map[string]string{"object": "6080"})

	art, err := LoadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x80}, art.Bytecode)
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadArtifact(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "cannot read")

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = LoadArtifact(empty)
	assert.ErrorContains(t, err, "empty")

	rawABI := filepath.Join(dir, "raw.json")
	require.NoError(t, os.WriteFile(rawABI, []byte(`{"bytecode":"0x60"}`), 0o644))
	_, err = LoadArtifact(rawABI)
	assert.ErrorContains(t, err, "no valid \"abi\"")

	_, err = LoadArtifact(writeArtifact(t, dir, "Iface", tokenABIJSON, "0x"))
	assert.ErrorContains(t, err, "bytecode is empty")

	_, err = LoadArtifact(writeArtifact(t, dir, "Linked", tokenABIJSON, "0x6080__$abc$__"))
	assert.ErrorContains(t, err, "unlinked")

	_, err = LoadArtifact(writeArtifact(t, dir, "Odd", tokenABIJSON, 12))
	assert.ErrorContains(t, err, "neither a hex string")
}

func TestLoadBuiltinArtifact(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "BITMarketsTokenPrivateSale", privateSaleABIJSON, "0x60")

	art, err := LoadBuiltinArtifact(dir, PrivateSaleID)
	require.NoError(t, err)
	assert.Equal(t, "BITMarketsTokenPrivateSale", art.Name)

	_, err = LoadBuiltinArtifact(dir, "unknown")
	assert.Error(t, err)
}

func TestLoadBuiltinArtifactRejectsMismatch(t *testing.T) {
	dir := t.TempDir()
	// Allocations ABI under the token's artifact name: missing token methods.
	writeArtifact(t, dir, "BITMarketsToken", allocationsABIJSON, "0x60")

	_, err := LoadBuiltinArtifact(dir, TokenID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BITMarketsToken")
}

func TestLoadBuiltinArtifactRejectsConstructorDrift(t *testing.T) {
	dir := t.TempDir()
	drifted := `[
	  {"type":"constructor","inputs":[{"name":"a","type":"address"}]},
	  {"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	  {"type":"function","name":"allocate","stateMutability":"nonpayable","inputs":[{"name":"beneficiary","type":"address"},{"name":"amount","type":"uint256"},{"name":"cliff","type":"uint64"}],"outputs":[]},
	  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[]},
	  {"type":"function","name":"vestedAmount","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	  {"type":"function","name":"vestingWallet","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"address"}]},
	  {"type":"function","name":"getVestingWalletCliff","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"uint64"}]}
	]`
	writeArtifact(t, dir, "BITMarketsTokenAllocations", drifted, "0x60")

	_, err := LoadBuiltinArtifact(dir, AllocationsID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constructor")
}

func TestSelector(t *testing.T) {
	assert.Equal(t, "a9059cbb", Selector("transfer(address,uint256)"))
	assert.Equal(t, "18160ddd", Selector("totalSupply()"))
	assert.Equal(t, common.Bytes2Hex(allocationsABI.Methods["allocate"].ID), Selector("allocate(address,uint256,uint64)"))
}

func TestLoadArtifactChecksMethodIdentifiers(t *testing.T) {
	dir := t.TempDir()
	write := func(ids map[string]string) string {
		path := filepath.Join(dir, "foundry.json")
		data, err := json.Marshal(map[string]any{
			"abi":               json.RawMessage(tokenABIJSON),
			"bytecode":          map[string]string{"object": "0x6080"},
			"methodIdentifiers": ids,
		})
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	_, err := LoadArtifact(write(map[string]string{"transfer(address,uint256)": "a9059cbb"}))
	require.NoError(t, err)

	_, err = LoadArtifact(write(map[string]string{"transfer(address,uint256)": "deadbeef"}))
	assert.ErrorContains(t, err, "transfer(address,uint256)")
}
