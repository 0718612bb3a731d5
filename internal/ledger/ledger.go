// Package ledger persists allocation results as CSV, one row per submitted
// allocation transaction.
package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gocarina/gocsv"
)

// Header is the first line of every ledger file.
const Header = "PRIVATE_KEY,ADDRESS,AMOUNT,TX_HASH,NONCE"

// fileMode keeps generated private keys readable by the owner only.
const fileMode = 0o600

// Row is one allocation. Amount is in whole tokens.
type Row struct {
	PrivateKey string `csv:"PRIVATE_KEY"`
	Address    string `csv:"ADDRESS"`
	Amount     uint64 `csv:"AMOUNT"`
	TxHash     string `csv:"TX_HASH"`
	Nonce      uint64 `csv:"NONCE"`
}

// Ledger is a CSV file of allocation rows.
type Ledger struct {
	path string
	mu   sync.Mutex
}

// Open returns the ledger at path, creating a header-only file if missing.
func Open(path string) (*Ledger, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("creating ledger dir: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(Header+"\n"), fileMode); err != nil {
			return nil, fmt.Errorf("creating ledger: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	return &Ledger{path: path}, nil
}

// Path returns the file location.
func (l *Ledger) Path() string { return l.path }

// Rows reads every row in file order.
func (l *Ledger) Rows() ([]*Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Append adds r after the existing rows. The whole file is rewritten into a
// temporary sibling and renamed over the original.
func (l *Ledger) Append(r *Row) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.read()
	if err != nil {
		return err
	}
	rows = append(rows, r)
	return l.write(rows)
}

// Len returns the number of rows.
func (l *Ledger) Len() (int, error) {
	rows, err := l.Rows()
	return len(rows), err
}

// Total sums the AMOUNT column.
func (l *Ledger) Total() (uint64, error) {
	rows, err := l.Rows()
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, r := range rows {
		sum += r.Amount
	}
	return sum, nil
}

func (l *Ledger) read() ([]*Row, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	var rows []*Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing %s: %w", l.path, err)
	}
	return rows, nil
}

func (l *Ledger) write(rows []*Row) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), "."+filepath.Base(l.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after rename

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := gocsv.MarshalFile(&rows, tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}
