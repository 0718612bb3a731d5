package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/Mohsinsiddi/btmtctl/internal/config"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractCaller executes read-only calls.
type ContractCaller interface {
	CallContract(ctx context.Context, msg chain.CallMsg) ([]byte, error)
}

// Backend is the node surface needed to send and confirm transactions.
// *chain.EVMClient implements it.
type Backend interface {
	ContractCaller
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error)
	EstimateGas(ctx context.Context, msg chain.CallMsg) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash, poll time.Duration) (*chain.TxReceipt, error)
}

// Fees are the EIP-1559 caps attached to a transaction.
type Fees struct {
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// FeesFrom copies the caps out of fetched fee data.
func FeesFrom(fd *chain.FeeData) Fees {
	return Fees{MaxFeePerGas: fd.MaxFeePerGas, MaxPriorityFeePerGas: fd.MaxPriorityFeePerGas}
}

// SentTx describes a broadcast transaction.
type SentTx struct {
	Hash  common.Hash
	Nonce uint64
	From  common.Address
	To    *common.Address // nil for deployments
	// ContractAddress is the CREATE address for deployments.
	ContractAddress common.Address
}

// IsDeploy reports whether the transaction creates a contract.
func (s *SentTx) IsDeploy() bool { return s.To == nil }

// Transactor sends transactions from one signer, like a contract handle
// connected to a wallet.
type Transactor struct {
	backend Backend
	signer  *wallet.Signer
	chainID *big.Int
	poll    time.Duration
}

// NewTransactor creates a Transactor for signer on chainID.
func NewTransactor(b Backend, signer *wallet.Signer, chainID *big.Int) *Transactor {
	return &Transactor{backend: b, signer: signer, chainID: chainID, poll: config.ReceiptPoll}
}

// WithPoll overrides the receipt polling interval.
func (t *Transactor) WithPoll(d time.Duration) *Transactor {
	t.poll = d
	return t
}

// From returns the sending address.
func (t *Transactor) From() common.Address { return t.signer.Address() }

// Transact packs method(args...) from parsed and sends it to `to`. When the
// node cannot estimate gas for a reason other than a revert, the tx is sent
// with config.GasLimitContractCall.
func (t *Transactor) Transact(ctx context.Context, to common.Address, parsed abi.ABI, method string, fees Fees, args ...any) (*SentTx, error) {
	return t.TransactWithGas(ctx, to, parsed, method, fees, config.GasLimitContractCall, args...)
}

// TransactWithGas is Transact with an explicit fallback gas limit.
func (t *Transactor) TransactWithGas(ctx context.Context, to common.Address, parsed abi.ABI, method string, fees Fees, fallbackGas uint64, args ...any) (*SentTx, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	return t.send(ctx, &to, data, fees, fallbackGas)
}

// Deploy sends a creation transaction for art with constructor args packed
// using ctorABI.
func (t *Transactor) Deploy(ctx context.Context, art *Artifact, ctorABI abi.ABI, fees Fees, args ...any) (*SentTx, error) {
	input, err := ctorABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s constructor: %w", art.Name, err)
	}
	data := append(append([]byte{}, art.Bytecode...), input...)
	return t.send(ctx, nil, data, fees, config.GasLimitDeploy)
}

// Wait blocks until tx is mined, giving up after config.TxConfirmTimeout
// (config.TxDeployTimeout for deployments). Reverted transactions return an
// error wrapping chain.ErrTxReverted.
func (t *Transactor) Wait(ctx context.Context, tx *SentTx) (*chain.TxReceipt, error) {
	timeout := config.TxConfirmTimeout
	if tx.IsDeploy() {
		timeout = config.TxDeployTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	receipt, err := t.backend.WaitForReceipt(ctx, tx.Hash, t.poll)
	if err != nil {
		return receipt, err
	}
	if tx.IsDeploy() && receipt.ContractAddress != (common.Address{}) && receipt.ContractAddress != tx.ContractAddress {
		return receipt, fmt.Errorf("deployed at %s, expected %s", receipt.ContractAddress.Hex(), tx.ContractAddress.Hex())
	}
	return receipt, nil
}

func (t *Transactor) send(ctx context.Context, to *common.Address, data []byte, fees Fees, fallbackGas uint64) (*SentTx, error) {
	if fees.MaxFeePerGas == nil || fees.MaxPriorityFeePerGas == nil {
		return nil, fmt.Errorf("fee caps not set")
	}
	from := t.signer.Address()

	gas, err := t.backend.EstimateGas(ctx, chain.CallMsg{From: from, To: to, Data: data})
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("transaction would revert: %w", err)
		}
		gas = fallbackGas
	}

	nonce, err := t.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("getting nonce: %w", err)
	}

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   t.chainID,
		Nonce:     nonce,
		GasTipCap: fees.MaxPriorityFeePerGas,
		GasFeeCap: fees.MaxFeePerGas,
		Gas:       gas,
		To:        to,
		Value:     big.NewInt(0),
		Data:      data,
	})

	signed, err := t.signer.SignTx(tx, t.chainID)
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}

	hash, err := t.backend.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("broadcasting transaction: %w", err)
	}

	sent := &SentTx{Hash: hash, Nonce: nonce, From: from, To: to}
	if to == nil {
		sent.ContractAddress = crypto.CreateAddress(from, nonce)
	}
	return sent, nil
}

func isRevert(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "revert")
}
