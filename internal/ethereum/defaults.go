package ethereum

import "omnirep/internal/domain"

// FallbackMetrics are conservative metrics for a wallet whose data could not be read.
func FallbackMetrics(address string) domain.WalletMetrics {
	return domain.WalletMetrics{
		Address:          address,
		Age:              180,
		TransactionCount: 10,
		TotalVolume:      0.5,
		UniqueContracts:  3,
		NFTCount:         1,
		DeFiProtocols:    1,
		Balance:          0.1,
	}
}

// MockENSName is the ENS name of the demo wallet.
const MockENSName = "user.eth"

// MockWalletMetrics is the demo wallet profile, reported under address.
func MockWalletMetrics(address string) domain.WalletMetrics {
	ens := MockENSName
	return domain.WalletMetrics{
		Address:          address,
		Age:              1247,
		TransactionCount: 342,
		TotalVolume:      15.7,
		UniqueContracts:  28,
		NFTCount:         12,
		DeFiProtocols:    8,
		ENSName:          &ens,
		Balance:          2.3,
	}
}
