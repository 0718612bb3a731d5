package contract

var allocationsABI = RegisterBuiltin(BuiltinKind{
	ID:           AllocationsID,
	Name:         "BITMarkets Token Allocations",
	ArtifactName: "BITMarketsTokenAllocations",
	Description:  "Creates one vesting wallet per beneficiary, funded from the allocations wallet",
}, allocationsABIJSON)

const allocationsABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"allocationsWallet","type":"address"},
    {"name":"allocationsAdmin","type":"address"},
    {"name":"token","type":"address"},
    {"name":"cliff","type":"uint64"},
    {"name":"vestingDuration","type":"uint64"}
  ]},
  {"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"allocate","stateMutability":"nonpayable","inputs":[{"name":"beneficiary","type":"address"},{"name":"amount","type":"uint256"},{"name":"cliff","type":"uint64"}],"outputs":[]},
  {"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[]},
  {"type":"function","name":"vestedAmount","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"vestingWallet","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getVestingWalletCliff","stateMutability":"view","inputs":[{"name":"beneficiary","type":"address"}],"outputs":[{"name":"","type":"uint64"}]}
]`
