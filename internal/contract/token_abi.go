package contract

// BITMarketsToken: capped, fee-on-transfer ERC-20 with feeless and
// unrestricted-receiver allow lists.
//
// Function selectors used by the deploy flow:
//
//	totalSupply()                               → 0x18160ddd
//	transfer(address,uint256)                   → 0xa9059cbb
//	approve(address,uint256)                    → 0x095ea7b3
//	addFeeless(address)
//	addFeelessAdmin(address)
//	addUnrestrictedReceiver(address,address,uint256)
var tokenABI = RegisterBuiltin(BuiltinKind{
	ID:           TokenID,
	Name:         "BITMarkets Token",
	ArtifactName: "BITMarketsToken",
	Description:  "BTMT ERC-20 with burn/company/ESG fees and transfer restrictions",
}, tokenABIJSON)

const tokenABIJSON = `[
  {"type":"constructor","stateMutability":"nonpayable","inputs":[
    {"name":"params","type":"tuple","components":[
      {"name":"initialSupply","type":"uint256"},
      {"name":"finalSupply","type":"uint256"},
      {"name":"allocationsWalletTokens","type":"uint256"},
      {"name":"crowdsalesWalletTokens","type":"uint256"},
      {"name":"maxCompanyWalletTransfer","type":"uint256"},
      {"name":"companyRate","type":"uint256"},
      {"name":"esgFundRate","type":"uint256"},
      {"name":"burnRate","type":"uint256"},
      {"name":"allocationsWallet","type":"address"},
      {"name":"crowdsalesWallet","type":"address"},
      {"name":"companyRewardsWallet","type":"address"},
      {"name":"esgFundWallet","type":"address"},
      {"name":"feelessAdminWallet","type":"address"},
      {"name":"companyRestrictionWhitelistWallet","type":"address"}
    ]}
  ]},
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"isFeeless","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"addFeeless","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"addFeelessAdmin","stateMutability":"nonpayable","inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"addUnrestrictedReceiver","stateMutability":"nonpayable","inputs":[{"name":"sender","type":"address"},{"name":"receiver","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`
