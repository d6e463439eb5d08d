package domain

// WalletMetrics summarizes on-chain activity for a single wallet.
// Produced by the wallet analytics layer; read-only input to scoring.
type WalletMetrics struct {
	Address          string  `json:"address"`
	Age              int     `json:"age"`              // days since first transaction
	TransactionCount int     `json:"transactionCount"` // outgoing + incoming
	TotalVolume      float64 `json:"totalVolume"`      // ETH
	UniqueContracts  int     `json:"uniqueContracts"`
	NFTCount         int     `json:"nftCount"`
	DeFiProtocols    int     `json:"defiProtocols"`
	ENSName          *string `json:"ensName,omitempty"` // primary ENS name (nullable)
	Balance          float64 `json:"balance"`           // ETH
}
