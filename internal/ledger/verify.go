package ledger

import (
	"context"
	"errors"

	"github.com/Mohsinsiddi/btmtctl/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// ReceiptSource looks up mined receipts. A nil receipt means still pending.
type ReceiptSource interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error)
}

// Report counts ledger rows by on-chain outcome.
type Report struct {
	Confirmed int
	Reverted  []*Row
	Pending   []*Row
}

// Verify fetches the receipt of every row. It stops at the first lookup error.
func Verify(ctx context.Context, src ReceiptSource, rows []*Row, progress func(done int)) (*Report, error) {
	rep := &Report{}
	for i, r := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if r.TxHash == "" {
			return rep, errors.New("row " + r.Address + " has no tx hash")
		}
		receipt, err := src.TransactionReceipt(ctx, common.HexToHash(r.TxHash))
		if err != nil {
			return rep, err
		}
		switch {
		case receipt == nil:
			rep.Pending = append(rep.Pending, r)
		case receipt.Status == 0:
			rep.Reverted = append(rep.Reverted, r)
		default:
			rep.Confirmed++
		}
		if progress != nil {
			progress(i + 1)
		}
	}
	return rep, nil
}
