// Package service orchestrates reputation updates.
// It coordinates: wallet analytics → github override → scoring → storage → feed
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"omnirep/internal/domain"
	"omnirep/internal/ethereum"
	"omnirep/internal/idhash"
	"omnirep/internal/observability"
	"omnirep/internal/reputation"
	"omnirep/internal/storage"
)

// DefaultStaleAfter is how long a stored score is served before Get recomputes it.
const DefaultStaleAfter = 30 * time.Minute

// Update triggers, used as metric labels.
const (
	TriggerUpdate  = "update"
	TriggerMissing = "missing"
	TriggerStale   = "stale"
)

// Fallback reasons, used as metric labels.
const (
	FallbackUnavailable = "unavailable"
	FallbackError       = "error"
	FallbackNoSource    = "no_source"
)

// ErrHistoryDisabled is returned by History when no history store is configured.
var ErrHistoryDisabled = errors.New("score history not configured")

// WalletSource provides wallet metrics.
// Implemented by *ethereum.Analytics.
type WalletSource interface {
	WalletMetrics(ctx context.Context, address string) (domain.WalletMetrics, error)
}

// Publisher receives every computed result.
// Implemented by *feed.Hub.
type Publisher interface {
	Publish(data *domain.ReputationData)
}

// MockWallets serves the demo wallet profile for every address.
type MockWallets struct{}

// WalletMetrics implements WalletSource.
func (MockWallets) WalletMetrics(_ context.Context, address string) (domain.WalletMetrics, error) {
	return ethereum.MockWalletMetrics(address), nil
}

// Options for creating Service.
type Options struct {
	// Required
	ReputationStore storage.ReputationStore

	// Optional sources and sinks
	Wallets      WalletSource
	HistoryStore storage.ScoreHistoryStore
	GitHubStore  storage.GitHubConnectionStore
	Feed         Publisher

	Engine     *reputation.Engine // nil uses reputation.Default()
	StaleAfter time.Duration      // <= 0 uses DefaultStaleAfter
	Logger     *log.Logger
	Now        func() time.Time
}

// Service computes, stores and serves reputation scores.
type Service struct {
	engine     reputation.Engine
	wallets    WalletSource
	scores     storage.ReputationStore
	history    storage.ScoreHistoryStore
	github     storage.GitHubConnectionStore
	feed       Publisher
	staleAfter time.Duration
	logger     *log.Logger
	now        func() time.Time
}

// New creates a new Service.
func New(opts Options) *Service {
	engine := reputation.Default()
	if opts.Engine != nil {
		engine = *opts.Engine
	}
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		engine:     engine,
		wallets:    opts.Wallets,
		scores:     opts.ReputationStore,
		history:    opts.HistoryStore,
		github:     opts.GitHubStore,
		feed:       opts.Feed,
		staleAfter: staleAfter,
		logger:     logger,
		now:        now,
	}
}

// Engine returns the scoring engine.
func (s *Service) Engine() reputation.Engine {
	return s.engine
}

// NormalizeAddress validates a hex wallet address and lowercases it.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %q", ethereum.ErrInvalidAddress, address)
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}

// Update recomputes the score for address with the given signals.
// Wallet data failures fall back to default metrics instead of failing.
// sig.GitHub is ignored; the github component comes from the stored connection.
func (s *Service) Update(ctx context.Context, address string, sig domain.Signals) (*domain.ReputationData, error) {
	return s.update(ctx, address, sig, TriggerUpdate)
}

// Get returns the stored score, recomputing it when missing or older than StaleAfter.
func (s *Service) Get(ctx context.Context, address string) (*domain.ReputationData, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	data, err := s.scores.GetByAddress(ctx, addr)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s.update(ctx, addr, domain.Signals{}, TriggerMissing)
	case err != nil:
		return nil, fmt.Errorf("load reputation for %s: %w", addr, err)
	case data.IsStale(s.now().UnixMilli(), s.staleAfter.Milliseconds()):
		return s.update(ctx, addr, domain.Signals{}, TriggerStale)
	}
	return data, nil
}

// AnalysisRequest carries the optional inputs of a graded analysis.
type AnalysisRequest struct {
	Profile     *domain.ProfileData                 `json:"profile,omitempty"`
	SocialLinks *domain.SocialLinks                 `json:"socialLinks,omitempty"`
	Weights     *reputation.AnalysisWeightOverrides `json:"weights,omitempty"`
}

// Analyze grades address on its on-chain and off-chain metrics. Wallet data
// falls back like Update. A connected GitHub account supplies the github
// score and counts as a linked github profile. Nothing is stored.
func (s *Service) Analyze(ctx context.Context, address string, req AnalysisRequest) (*domain.Analysis, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletMetrics(ctx, addr)
	if err != nil {
		return nil, err
	}
	wallet.Address = addr

	in := reputation.AnalysisInput{Wallet: wallet, Profile: req.Profile}
	var links domain.SocialLinks
	if req.SocialLinks != nil {
		links = *req.SocialLinks
	}
	if conn := s.githubConnection(ctx, addr); conn != nil {
		in.GitHubScore = reputation.AnalysisGitHubScore(conn.Activity)
		if strings.TrimSpace(links.GitHub) == "" {
			links.GitHub = conn.Username
		}
	}
	if req.SocialLinks != nil || links.GitHub != "" {
		in.Links = &links
	}

	a := reputation.Analyze(in, req.Weights.Apply(reputation.DefaultAnalysisWeights), s.now())
	s.logger.Printf("analyzed %s: %d (grade %s)", addr, a.TotalScore, a.Grade)
	return a, nil
}

// History returns score snapshots for address recorded within [start, end].
func (s *Service) History(ctx context.Context, address string, start, end time.Time) ([]*domain.ScoreSnapshot, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	return s.history.GetByTimeRange(ctx, addr, start.UnixMilli(), end.UnixMilli())
}

func (s *Service) update(ctx context.Context, address string, sig domain.Signals, trigger string) (*domain.ReputationData, error) {
	addr, err := NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	wallet, err := s.walletMetrics(ctx, addr)
	if err != nil {
		return nil, err
	}

	sig.GitHub = s.githubActivity(ctx, addr)

	data := s.engine.Generate(wallet, sig, s.now())
	data.Address = addr

	if err := s.scores.Upsert(ctx, data); err != nil {
		return nil, fmt.Errorf("store reputation for %s: %w", addr, err)
	}
	s.recordSnapshot(ctx, data)

	if s.feed != nil {
		s.feed.Publish(data)
	}
	observability.RecordScoreComputed(trigger, data.TotalScore)
	s.logger.Printf("scored %s: %d (%s, trigger=%s)", addr, data.TotalScore, data.Insights.TrustLevel, trigger)

	return data, nil
}

// walletMetrics fetches metrics for addr. A source that reports every
// upstream as unavailable yields FallbackMetrics; any other failure yields
// the demo profile. Only context cancellation is returned.
func (s *Service) walletMetrics(ctx context.Context, addr string) (domain.WalletMetrics, error) {
	if s.wallets == nil {
		observability.RecordWalletFallback(FallbackNoSource)
		return ethereum.MockWalletMetrics(addr), nil
	}

	m, err := s.wallets.WalletMetrics(ctx, addr)
	if err == nil {
		m.Address = addr
		return m, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.WalletMetrics{}, ctxErr
	}

	if errors.Is(err, ethereum.ErrUnavailable) {
		s.logger.Printf("wallet data for %s unavailable, using fallback metrics: %v", addr, err)
		observability.RecordWalletFallback(FallbackUnavailable)
		return ethereum.FallbackMetrics(addr), nil
	}

	s.logger.Printf("wallet metrics for %s failed, using demo metrics: %v", addr, err)
	observability.RecordWalletFallback(FallbackError)
	return ethereum.MockWalletMetrics(addr), nil
}

func (s *Service) githubActivity(ctx context.Context, addr string) *domain.GitHubActivity {
	conn := s.githubConnection(ctx, addr)
	if conn == nil {
		return nil
	}
	activity := conn.Activity
	return &activity
}

// githubConnection returns the connected GitHub account for addr, or nil.
func (s *Service) githubConnection(ctx context.Context, addr string) *domain.GitHubConnection {
	if s.github == nil {
		return nil
	}

	conn, err := s.github.GetByAddress(ctx, addr)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("load github connection for %s: %v", addr, err)
		}
		return nil
	}
	if !conn.Connected {
		return nil
	}
	return conn
}

func (s *Service) recordSnapshot(ctx context.Context, data *domain.ReputationData) {
	if s.history == nil {
		return
	}

	snap := &domain.ScoreSnapshot{
		SnapshotID: idhash.ComputeSnapshotID(data.Address, data.LastUpdated),
		Address:    data.Address,
		TotalScore: data.TotalScore,
		Components: data.Components,
		Percentile: data.Insights.Percentile,
		TrustLevel: data.Insights.TrustLevel,
		Hash:       data.Hash,
		RecordedAt: data.LastUpdated,
	}
	if err := s.history.Insert(ctx, snap); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		s.logger.Printf("record score snapshot for %s: %v", data.Address, err)
	}
}
