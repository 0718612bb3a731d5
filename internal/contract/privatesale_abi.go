package contract

var privateSaleABI = RegisterBuiltin(BuiltinKind{
	ID:           PrivateSaleID,
	Name:         "BITMarkets Token Private Sale",
	ArtifactName: "BITMarketsTokenPrivateSale",
	Description:  "Whitelisted, capped, timed crowdsale with vested delivery",
}, privateSaleABIJSON)

const privateSaleABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"params","type":"tuple","components":[
      {"name":"rate","type":"uint256"},
      {"name":"wallet","type":"address"},
      {"name":"purchaser","type":"address"},
      {"name":"token","type":"address"},
      {"name":"whitelister","type":"address"},
      {"name":"openingTime","type":"uint256"},
      {"name":"closingTime","type":"uint256"},
      {"name":"investorTariff","type":"uint256"},
      {"name":"investorCap","type":"uint256"},
      {"name":"cliff","type":"uint64"},
      {"name":"vestingDuration","type":"uint64"}
    ]}
  ]},
  {"type":"function","name":"token","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"wallet","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"rate","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"openingTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"closingTime","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"isOpen","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"hasClosed","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"bool"}]}
]`
