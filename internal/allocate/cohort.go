// Package allocate runs the vesting allocation loop: one generated
// beneficiary per iteration, one allocate transaction, one ledger row.
package allocate

import (
	"fmt"
	"strings"
)

// Tier assigns Amount whole tokens to every index below Below.
type Tier struct {
	Below  int
	Amount uint64
}

// Cohort is a group of beneficiaries funded by one run.
type Cohort struct {
	Name    string
	File    string // ledger CSV file name
	Wallets int
	Tiers   []Tier // ascending by Below; indexes past the last tier get Rest
	Rest    uint64
}

// Team: 10 × 1M, 10 × 500k, 50 × 100k, 1000 × 10k.
var Team = Cohort{
	Name:    "team",
	File:    "teamAllocationsWallets.csv",
	Wallets: 1070,
	Tiers:   []Tier{{10, 1_000_000}, {20, 500_000}, {70, 100_000}},
	Rest:    10_000,
}

// Sales: 5 × 1M, 10 × 500k, 50 × 100k, 500 × 10k.
var Sales = Cohort{
	Name:    "sales",
	File:    "salesAllocationsWallets.csv",
	Wallets: 565,
	Tiers:   []Tier{{5, 1_000_000}, {15, 500_000}, {65, 100_000}},
	Rest:    10_000,
}

// AmountAt returns the whole-token amount for iteration i.
func (c Cohort) AmountAt(i int) uint64 {
	for _, t := range c.Tiers {
		if i < t.Below {
			return t.Amount
		}
	}
	return c.Rest
}

// Total is the sum of every iteration's amount.
func (c Cohort) Total() uint64 {
	var sum uint64
	for i := 0; i < c.Wallets; i++ {
		sum += c.AmountAt(i)
	}
	return sum
}

// ParseCohorts maps "team", "sales" or "all" to the cohorts to run, in run
// order.
func ParseCohorts(s string) ([]Cohort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "team":
		return []Cohort{Team}, nil
	case "sales":
		return []Cohort{Sales}, nil
	case "", "all":
		return []Cohort{Team, Sales}, nil
	}
	return nil, fmt.Errorf("unknown cohort %q (want team, sales or all)", s)
}
