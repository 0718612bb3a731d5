package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Caller performs view calls against a contract.
type Caller struct {
	backend ContractCaller
	address common.Address
	abi     abi.ABI
}

// NewCaller binds parsed to the contract at address.
func NewCaller(backend ContractCaller, address common.Address, parsed abi.ABI) *Caller {
	return &Caller{backend: backend, address: address, abi: parsed}
}

// Call executes method and returns the unpacked outputs.
func (c *Caller) Call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	to := c.address
	out, err := c.backend.CallContract(ctx, chain.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}
	if len(out) == 0 && len(c.abi.Methods[method].Outputs) > 0 {
		return nil, fmt.Errorf("calling %s: empty result (no contract at %s?)", method, c.address.Hex())
	}
	vals, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	return vals, nil
}

// Uint calls a method returning a single uint256.
func (c *Caller) Uint(ctx context.Context, method string, args ...any) (*big.Int, error) {
	vals, err := c.Call(ctx, method, args...)
	if err != nil {
		return nil, err
	}
	return single[*big.Int](method, vals)
}

// Uint64 calls a method returning a single uint64.
func (c *Caller) Uint64(ctx context.Context, method string, args ...any) (uint64, error) {
	vals, err := c.Call(ctx, method, args...)
	if err != nil {
		return 0, err
	}
	return single[uint64](method, vals)
}

// Address calls a method returning a single address.
func (c *Caller) Address(ctx context.Context, method string, args ...any) (common.Address, error) {
	vals, err := c.Call(ctx, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	return single[common.Address](method, vals)
}

// Bool calls a method returning a single bool.
func (c *Caller) Bool(ctx context.Context, method string, args ...any) (bool, error) {
	vals, err := c.Call(ctx, method, args...)
	if err != nil {
		return false, err
	}
	return single[bool](method, vals)
}

// Text calls a method returning a single string.
func (c *Caller) Text(ctx context.Context, method string, args ...any) (string, error) {
	vals, err := c.Call(ctx, method, args...)
	if err != nil {
		return "", err
	}
	return single[string](method, vals)
}

func single[T any](method string, vals []any) (T, error) {
	var zero T
	if len(vals) != 1 {
		return zero, fmt.Errorf("%s: expected 1 output, got %d", method, len(vals))
	}
	v, ok := vals[0].(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected output type %T", method, vals[0])
	}
	return v, nil
}
