package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
// These are conservative upper bounds; actual gas used will be lower.
const (
	GasLimitContractCall = uint64(200_000)   // permission / transfer / approve calls
	GasLimitAllocate     = uint64(600_000)   // allocate() deploys a vesting wallet
	GasLimitDeploy       = uint64(6_000_000) // token, allocations or private sale deployment
)

// Timeout constants used across cmd packages.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint selection ping
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
	TxDeployTimeout  = 5 * time.Minute  // contract deployment confirmation wait
	ReceiptPoll      = 2 * time.Second  // receipt polling interval
)
