package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omnirep/internal/domain"
	"omnirep/internal/ethereum"
	"omnirep/internal/reputation"
	"omnirep/internal/storage/memory"
)

const (
	testAddress = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	testLower   = "0x742d35cc6634c0532925a3b844bc454e4438f44e"
)

type stubWallets struct {
	metrics domain.WalletMetrics
	err     error
	calls   int
}

func (s *stubWallets) WalletMetrics(_ context.Context, address string) (domain.WalletMetrics, error) {
	s.calls++
	m := s.metrics
	m.Address = address
	return m, s.err
}

type recordingFeed struct {
	published []*domain.ReputationData
}

func (f *recordingFeed) Publish(data *domain.ReputationData) {
	f.published = append(f.published, data)
}

type fixture struct {
	svc     *Service
	wallets *stubWallets
	scores  *memory.ReputationStore
	history *memory.ScoreHistoryStore
	github  *memory.GitHubConnectionStore
	feed    *recordingFeed
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		wallets: &stubWallets{metrics: ethereum.MockWalletMetrics("")},
		scores:  memory.NewReputationStore(),
		history: memory.NewScoreHistoryStore(),
		github:  memory.NewGitHubConnectionStore(),
		feed:    &recordingFeed{},
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = New(Options{
		ReputationStore: f.scores,
		Wallets:         f.wallets,
		HistoryStore:    f.history,
		GitHubStore:     f.github,
		Feed:            f.feed,
		Now:             func() time.Time { return f.now },
	})
	return f
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("  " + testAddress + " ")
	require.NoError(t, err)
	assert.Equal(t, testLower, got)

	_, err = NormalizeAddress("0x1234")
	assert.ErrorIs(t, err, ethereum.ErrInvalidAddress)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	data, err := f.svc.Update(ctx, testAddress, domain.Signals{})
	require.NoError(t, err)

	assert.Equal(t, testLower, data.Address)
	assert.Equal(t, 88, data.Components.WalletScore)
	assert.Equal(t, 55, data.Components.SecurityScore)
	assert.Zero(t, data.Components.GitHubScore)
	assert.Equal(t, f.now.UnixMilli(), data.LastUpdated)

	stored, err := f.scores.GetByAddress(ctx, testLower)
	require.NoError(t, err)
	assert.Equal(t, data.TotalScore, stored.TotalScore)
	assert.Equal(t, data.Hash, stored.Hash)

	snaps, err := f.history.GetByTimeRange(ctx, testLower, 0, f.now.UnixMilli())
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, data.TotalScore, snaps[0].TotalScore)
	assert.Equal(t, data.Insights.TrustLevel, snaps[0].TrustLevel)
	assert.Len(t, snaps[0].SnapshotID, 64)

	require.Len(t, f.feed.published, 1)
	assert.Equal(t, data, f.feed.published[0])
}

func TestService_UpdateMatchesEngine(t *testing.T) {
	f := newFixture(t)
	lastActive := 3
	sig := domain.Signals{
		Social:   &domain.SocialSignals{TwitterFollowers: 400, VerifiedAccounts: 1},
		Identity: &domain.IdentitySignals{HasENS: true, ENSAge: 400},
		Activity: &domain.ActivitySignals{RecentTransactions: 10, LastActive: &lastActive},
	}

	data, err := f.svc.Update(context.Background(), testAddress, sig)
	require.NoError(t, err)

	want := reputation.Default().Generate(ethereum.MockWalletMetrics(testLower), sig, f.now)
	assert.Equal(t, want.Components, data.Components)
	assert.Equal(t, want.TotalScore, data.TotalScore)
	assert.Equal(t, want.Hash, data.Hash)
}

func TestService_UpdateIgnoresCallerGitHub(t *testing.T) {
	f := newFixture(t)
	sig := domain.Signals{GitHub: &domain.GitHubActivity{Commits: 10000}}

	data, err := f.svc.Update(context.Background(), testAddress, sig)
	require.NoError(t, err)
	assert.Zero(t, data.Components.GitHubScore)
}

func TestService_UpdateUsesGitHubConnection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	activity := domain.GitHubActivity{Commits: 1847, PullRequests: 156, Issues: 89, Repositories: 47, Stars: 892, Followers: 234, AccountAge: 1247}
	require.NoError(t, f.github.Upsert(ctx, &domain.GitHubConnection{
		Address:   testLower,
		Username:  "octocat",
		Activity:  activity,
		Connected: true,
	}))

	data, err := f.svc.Update(ctx, testAddress, domain.Signals{})
	require.NoError(t, err)
	assert.Equal(t, reputation.Default().GitHubScore(activity), data.Components.GitHubScore)
	assert.NotZero(t, data.Components.GitHubScore)
}

func TestService_UpdateSkipsDisconnectedGitHub(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.github.Upsert(ctx, &domain.GitHubConnection{
		Address:  testLower,
		Username: "octocat",
		Activity: domain.GitHubActivity{Commits: 500},
	}))

	data, err := f.svc.Update(ctx, testAddress, domain.Signals{})
	require.NoError(t, err)
	assert.Zero(t, data.Components.GitHubScore)
}

func TestService_WalletFallbacks(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantWallet domain.WalletMetrics
	}{
		{"unavailable uses conservative metrics", ethereum.ErrUnavailable, ethereum.FallbackMetrics(testLower)},
		{"other errors use demo metrics", errors.New("boom"), ethereum.MockWalletMetrics(testLower)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.wallets.metrics = domain.WalletMetrics{}
			f.wallets.err = tt.err

			data, err := f.svc.Update(context.Background(), testAddress, domain.Signals{})
			require.NoError(t, err)

			want := f.svc.Engine().WalletScore(tt.wantWallet)
			assert.Equal(t, want, data.Components.WalletScore)
			assert.Equal(t, testLower, data.Address)
		})
	}
}

func TestService_NoWalletSourceUsesDemo(t *testing.T) {
	svc := New(Options{ReputationStore: memory.NewReputationStore()})

	data, err := svc.Update(context.Background(), testAddress, domain.Signals{})
	require.NoError(t, err)
	assert.Equal(t, 88, data.Components.WalletScore)
}

func TestService_UpdateCanceled(t *testing.T) {
	f := newFixture(t)
	f.wallets.err = context.Canceled

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Update(ctx, testAddress, domain.Signals{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_UpdateInvalidAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), "nope", domain.Signals{})
	assert.ErrorIs(t, err, ethereum.ErrInvalidAddress)
	assert.Zero(t, f.wallets.calls)
}

func TestService_GetComputesWhenMissing(t *testing.T) {
	f := newFixture(t)

	data, err := f.svc.Get(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Equal(t, 88, data.Components.WalletScore)
	assert.Equal(t, 1, f.wallets.calls)
}

func TestService_GetServesFreshAndRecomputesStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Update(ctx, testAddress, domain.Signals{})
	require.NoError(t, err)

	f.now = f.now.Add(DefaultStaleAfter)
	got, err := f.svc.Get(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, first.LastUpdated, got.LastUpdated, "exactly StaleAfter old is still fresh")
	assert.Equal(t, 1, f.wallets.calls)

	f.now = f.now.Add(time.Millisecond)
	got, err = f.svc.Get(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, f.now.UnixMilli(), got.LastUpdated)
	assert.Equal(t, 2, f.wallets.calls)
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	start := f.now

	for range 3 {
		_, err := f.svc.Update(ctx, testAddress, domain.Signals{})
		require.NoError(t, err)
		f.now = f.now.Add(time.Hour)
	}

	snaps, err := f.svc.History(ctx, testAddress, start, start.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Less(t, snaps[0].RecordedAt, snaps[1].RecordedAt)
}

func TestService_HistoryDisabled(t *testing.T) {
	svc := New(Options{ReputationStore: memory.NewReputationStore()})

	_, err := svc.History(context.Background(), testAddress, time.Time{}, time.Now())
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}

func TestMockWallets(t *testing.T) {
	m, err := MockWallets{}.WalletMetrics(context.Background(), testLower)
	require.NoError(t, err)
	assert.Equal(t, ethereum.MockWalletMetrics(testLower), m)
}

func TestService_Analyze(t *testing.T) {
	f := newFixture(t)

	a, err := f.svc.Analyze(context.Background(), testAddress, AnalysisRequest{})
	require.NoError(t, err)

	assert.Equal(t, testLower, a.Address)
	assert.Equal(t, 489, a.TotalScore)
	assert.Equal(t, domain.GradeD, a.Grade)
	assert.Equal(t, 15, a.Percentile)
	assert.Equal(t, f.now.UnixMilli(), a.LastCalculated)
	assert.Equal(t, reputation.AnalysisHash(a), a.Hash)

	_, err = f.scores.GetByAddress(context.Background(), testLower)
	assert.Error(t, err, "analysis is not stored")
}

func TestService_AnalyzeUsesGitHubConnection(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	activity := domain.GitHubActivity{Commits: 1847, PullRequests: 156, Issues: 89, Repositories: 47, Stars: 892, Followers: 234, AccountAge: 1247}
	require.NoError(t, f.github.Upsert(ctx, &domain.GitHubConnection{
		Address:   testLower,
		Username:  "octocat",
		Activity:  activity,
		Connected: true,
	}))

	a, err := f.svc.Analyze(ctx, testAddress, AnalysisRequest{})
	require.NoError(t, err)
	assert.Equal(t, reputation.AnalysisGitHubScore(activity), a.OffChain.GitHubScore)
	assert.Equal(t, 333, a.OffChain.SocialPresence, "connected account counts as a github link")

	a, err = f.svc.Analyze(ctx, testAddress, AnalysisRequest{
		SocialLinks: &domain.SocialLinks{Twitter: "@omni", Website: "https://omnirep.xyz"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1000, a.OffChain.SocialPresence)
}

func TestService_AnalyzeWeights(t *testing.T) {
	f := newFixture(t)
	on, off := 1.0, 0.0
	req := AnalysisRequest{Weights: &reputation.AnalysisWeightOverrides{OnChain: &on, OffChain: &off}}

	a, err := f.svc.Analyze(context.Background(), testAddress, req)
	require.NoError(t, err)

	want := reputation.AnalysisScore(a.OnChain, a.OffChain, req.Weights.Apply(reputation.DefaultAnalysisWeights))
	assert.Equal(t, want, a.TotalScore)
	assert.NotEqual(t, 489, a.TotalScore)
}

func TestService_AnalyzeInvalidAddress(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Analyze(context.Background(), "nope", AnalysisRequest{})
	assert.ErrorIs(t, err, ethereum.ErrInvalidAddress)
	assert.Zero(t, f.wallets.calls)
}
