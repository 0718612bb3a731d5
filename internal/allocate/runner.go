package allocate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/btmtctl/internal/contract"
	"github.com/Mohsinsiddi/btmtctl/internal/ledger"
	"github.com/Mohsinsiddi/btmtctl/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Allocator submits allocate transactions. *contract.Allocations implements it.
type Allocator interface {
	Allocate(ctx context.Context, from *contract.Transactor, fees contract.Fees,
		beneficiary common.Address, amount *big.Int, cliff uint64) (*contract.SentTx, error)
}

// Event reports progress of one iteration. It is emitted once after the
// transaction is submitted and once more after it is mined.
type Event struct {
	Cohort    string
	Iteration int // 0-based
	Wallets   int
	Address   common.Address
	Amount    uint64
	TxHash    common.Hash
	Nonce     uint64
	Mined     bool
}

// Result summarises a cohort run.
type Result struct {
	Cohort    string
	Start     int
	Allocated int
	Tokens    uint64
}

// Runner allocates a cohort sequentially. The first error stops the run;
// rows already appended stay in the ledger.
type Runner struct {
	Allocations Allocator
	From        *contract.Transactor
	Fees        *FeeCache
	Delay       Delay
	Log         *zap.Logger

	// Generate creates beneficiaries; nil uses wallet.Generate.
	Generate func() (*wallet.Generated, error)
	// OnEvent, if set, receives progress events synchronously.
	OnEvent func(Event)
}

// Run allocates iterations start..c.Wallets-1 of c, appending one row to l
// per submitted transaction.
func (r *Runner) Run(ctx context.Context, c Cohort, l *ledger.Ledger, start int) (*Result, error) {
	if start < 0 || start > c.Wallets {
		return nil, fmt.Errorf("%s: start %d outside 0..%d", c.Name, start, c.Wallets)
	}
	gen := r.Generate
	if gen == nil {
		gen = wallet.Generate
	}
	delay := r.Delay
	if delay == nil {
		delay = NoDelay
	}
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("cohort", c.Name))

	res := &Result{Cohort: c.Name, Start: start}
	if start > 0 {
		log.Info("Resuming allocations", zap.Int("from_iteration", start+1))
	}

	for i := start; i < c.Wallets; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		w, err := gen()
		if err != nil {
			return res, err
		}
		amount := c.AmountAt(i)

		fees, fd, err := r.Fees.At(ctx, i)
		if err != nil {
			return res, fmt.Errorf("%s iteration #%d: %w", c.Name, i+1, err)
		}
		log.Debug("Fee data",
			zap.Int("iteration", i+1),
			zap.Stringer("max_fee", fd.MaxFeePerGas),
			zap.Stringer("max_priority_fee", fd.MaxPriorityFeePerGas))

		sent, err := r.Allocations.Allocate(ctx, r.From, fees, w.Address,
			contract.TokenUnits(new(big.Int).SetUint64(amount)), 0)
		if err != nil {
			return res, fmt.Errorf("%s iteration #%d: %w", c.Name, i+1, err)
		}

		log.Info(fmt.Sprintf("Iteration #%d. Allocated to %s amount %d for %s. Tx hash %s with nonce %d.",
			i+1, w.Address.Hex(), amount, c.Name, sent.Hash.Hex(), sent.Nonce),
			zap.Int("iteration", i+1),
			zap.String("tx_hash", sent.Hash.Hex()),
			zap.Uint64("nonce", sent.Nonce))

		ev := Event{
			Cohort: c.Name, Iteration: i, Wallets: c.Wallets,
			Address: w.Address, Amount: amount, TxHash: sent.Hash, Nonce: sent.Nonce,
		}
		r.emit(ev)

		if err := l.Append(&ledger.Row{
			PrivateKey: w.PrivateKey,
			Address:    w.Address.Hex(),
			Amount:     amount,
			TxHash:     sent.Hash.Hex(),
			Nonce:      sent.Nonce,
		}); err != nil {
			return res, fmt.Errorf("%s iteration #%d: recording %s: %w", c.Name, i+1, sent.Hash.Hex(), err)
		}

		if _, err := r.From.Wait(ctx, sent); err != nil {
			return res, fmt.Errorf("%s iteration #%d: %w", c.Name, i+1, err)
		}
		res.Allocated++
		res.Tokens += amount
		ev.Mined = true
		r.emit(ev)

		if err := delay(ctx); err != nil {
			return res, err
		}
	}

	log.Info("Cohort allocated",
		zap.Int("allocated", res.Allocated),
		zap.Uint64("tokens", res.Tokens),
		zap.Int("fee_fetches", r.Fees.Fetches()))
	return res, nil
}

func (r *Runner) emit(ev Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
}
