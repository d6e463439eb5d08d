// Package ethereum gathers on-chain wallet metrics from an Ethereum node,
// Etherscan and the Alchemy NFT API.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"sync"
	"time"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"omnirep/internal/domain"
	"omnirep/internal/observability"
)

// DefaultWalletAgeDays is used when the first transaction cannot be found.
const DefaultWalletAgeDays = 30

// Analytics errors.
var (
	ErrInvalidAddress = errors.New("invalid ethereum address")
	ErrNoDataSource   = errors.New("no wallet data source configured")
	ErrUnavailable    = errors.New("wallet data unavailable")
)

// ChainReader is the subset of *ethclient.Client used for wallet metrics.
type ChainReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	CallContract(ctx context.Context, call goethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// HistorySource provides account transaction history.
// Implemented by *EtherscanClient.
type HistorySource interface {
	TxStats(ctx context.Context, address string) (TxStats, error)
	FirstTxTime(ctx context.Context, address string) (time.Time, bool, error)
}

// NFTSource counts the NFTs a wallet owns.
// Implemented by *AlchemyClient.
type NFTSource interface {
	NFTCount(ctx context.Context, address string) (int, error)
}

// AnalyticsOptions configures Analytics. Any source may be nil.
type AnalyticsOptions struct {
	Chain   ChainReader
	History HistorySource
	NFTs    NFTSource
	Logger  *log.Logger
	Now     func() time.Time
}

// Analytics computes WalletMetrics from the configured sources.
type Analytics struct {
	chain   ChainReader
	history HistorySource
	nfts    NFTSource
	logger  *log.Logger
	now     func() time.Time
}

// NewAnalytics creates a new Analytics.
func NewAnalytics(opts AnalyticsOptions) *Analytics {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Analytics{
		chain:   opts.Chain,
		history: opts.History,
		nfts:    opts.NFTs,
		logger:  logger,
		now:     now,
	}
}

// fetchResults collects the concurrent sub-fetches.
type fetchResults struct {
	mu       sync.Mutex
	attempts int
	failures int
	firstErr error

	balance   *big.Int
	nonce     uint64
	nonceOK   bool
	ensName   string
	stats     TxStats
	statsOK   bool
	firstTx   time.Time
	firstTxOK bool
	nftCount  int
}

func (r *fetchResults) record(what string, err error, logger *log.Logger) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	if err != nil {
		r.failures++
		if r.firstErr == nil {
			r.firstErr = fmt.Errorf("%s: %w", what, err)
		}
		logger.Printf("%s failed: %v", what, err)
		return false
	}
	return true
}

// WalletMetrics gathers balance, history, ENS and NFT data concurrently.
// A failing sub-fetch contributes zero or nothing. Returns ErrUnavailable
// only when every attempted fetch failed.
func (a *Analytics) WalletMetrics(ctx context.Context, address string) (domain.WalletMetrics, error) {
	if !common.IsHexAddress(address) {
		return domain.WalletMetrics{}, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if a.chain == nil && a.history == nil && a.nfts == nil {
		return domain.WalletMetrics{}, ErrNoDataSource
	}

	addr := common.HexToAddress(address)
	res := &fetchResults{}
	var wg sync.WaitGroup

	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if a.chain != nil {
		run(func() {
			start := time.Now()
			bal, err := a.chain.BalanceAt(ctx, addr, nil)
			observability.RecordUpstreamCall("ethereum", "eth_getBalance", time.Since(start).Seconds(), err)
			if res.record("balance", err, a.logger) {
				res.mu.Lock()
				res.balance = bal
				res.mu.Unlock()
			}
		})
		run(func() {
			start := time.Now()
			name, err := LookupName(ctx, a.chain, addr)
			observability.RecordUpstreamCall("ethereum", "ens_reverse", time.Since(start).Seconds(), err)
			if res.record("ens lookup", err, a.logger) {
				res.mu.Lock()
				res.ensName = name
				res.mu.Unlock()
			}
		})
		if a.history == nil {
			run(func() {
				start := time.Now()
				nonce, err := a.chain.NonceAt(ctx, addr, nil)
				observability.RecordUpstreamCall("ethereum", "eth_getTransactionCount", time.Since(start).Seconds(), err)
				if res.record("nonce", err, a.logger) {
					res.mu.Lock()
					res.nonce, res.nonceOK = nonce, true
					res.mu.Unlock()
				}
			})
		}
	}

	if a.history != nil {
		run(func() {
			stats, err := a.history.TxStats(ctx, address)
			if res.record("tx history", err, a.logger) {
				res.mu.Lock()
				res.stats, res.statsOK = stats, true
				res.mu.Unlock()
			}
		})
		run(func() {
			t, ok, err := a.history.FirstTxTime(ctx, address)
			if res.record("first tx", err, a.logger) {
				res.mu.Lock()
				res.firstTx, res.firstTxOK = t, ok
				res.mu.Unlock()
			}
		})
	}

	if a.nfts != nil {
		run(func() {
			n, err := a.nfts.NFTCount(ctx, address)
			if res.record("nft count", err, a.logger) {
				res.mu.Lock()
				res.nftCount = n
				res.mu.Unlock()
			}
		})
	}

	wg.Wait()

	if res.failures == res.attempts {
		return domain.WalletMetrics{}, fmt.Errorf("%w: %v", ErrUnavailable, res.firstErr)
	}

	return a.assemble(address, res), nil
}

func (a *Analytics) assemble(address string, res *fetchResults) domain.WalletMetrics {
	m := domain.WalletMetrics{
		Address: address,
		Age:     DefaultWalletAgeDays,
	}

	balance := WeiToEther(res.balance)
	m.Balance = balance.InexactFloat64()

	switch {
	case res.statsOK:
		m.TransactionCount = res.stats.Count
		m.TotalVolume = res.stats.Volume.InexactFloat64()
	case res.nonceOK:
		m.TransactionCount = int(res.nonce)
	}

	if res.firstTxOK {
		m.Age = int(a.now().Sub(res.firstTx) / (24 * time.Hour))
	}

	if res.ensName != "" {
		name := res.ensName
		m.ENSName = &name
	}

	m.NFTCount = max(res.nftCount, 0)
	m.UniqueContracts, m.DeFiProtocols = estimateContracts(m.TransactionCount, m.Balance)
	return m
}

// estimateContracts approximates contract diversity from activity level:
// one unique contract per 10 transactions (max 50), and for wallets holding
// more than 1 ETH one DeFi protocol per 5 contracts (max 10).
func estimateContracts(txCount int, balance float64) (unique, defi int) {
	unique = min(txCount/10, 50)
	if balance > 1 {
		defi = min(unique/5, 10)
	}
	return unique, defi
}
