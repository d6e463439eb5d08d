// Package reputation computes the composite reputation score.
//
// Everything here is a pure function of its inputs: no I/O, no shared state,
// no errors. Missing optional inputs score with neutral defaults and numeric
// inputs are not validated, so out-of-range values flow straight through.
package reputation

import (
	"math"
	"time"

	"omnirep/internal/domain"
)

// Engine scores wallets with a fixed set of weights.
// The zero value is not useful; use NewEngine or Default.
type Engine struct {
	weights Weights
}

// NewEngine creates an engine with the given weights.
func NewEngine(w Weights) Engine {
	return Engine{weights: w}
}

// Default returns an engine using DefaultWeights.
func Default() Engine {
	return NewEngine(DefaultWeights)
}

// Weights returns the engine's weights.
func (e Engine) Weights() Weights {
	return e.weights
}

// WalletScore combines age, transaction count, volume, diversity and
// balance factors into one score. Each factor is clamped to 0-100.
func (e Engine) WalletScore(m domain.WalletMetrics) int {
	weighted := float64(scoreWalletAge(m.Age))*walletAgeWeight +
		float64(scoreTransactionActivity(m.TransactionCount))*walletActivityWeight +
		float64(scoreVolume(m.TotalVolume))*walletVolumeWeight +
		float64(scoreDiversity(m.UniqueContracts, m.NFTCount, m.DeFiProtocols))*walletDiversityWeight +
		float64(scoreBalance(m.Balance))*walletBalanceWeight

	return round(weighted)
}

// GitHubScore weights GitHub activity and normalizes it into 0-200.
func (e Engine) GitHubScore(a domain.GitHubActivity) int {
	score := float64(a.Commits)*githubCommitWeight +
		float64(a.PullRequests)*githubPRWeight +
		float64(a.Issues)*githubIssueWeight +
		float64(a.Repositories)*githubRepoWeight +
		float64(a.Stars)*githubStarWeight +
		float64(a.Followers)*githubFollowerWeight +
		float64(a.AccountAge)*githubAccountAgeWeight

	return min(githubMaxScore, round(score/githubNormalizer))
}

// SocialScore applies diminishing returns to follower counts and adds flat
// bonuses for roles and verified accounts. Not clamped.
func (e Engine) SocialScore(s domain.SocialSignals) int {
	twitter := math.Min(50, sqrt(s.TwitterFollowers)*2)
	linkedin := math.Min(30, sqrt(s.LinkedInConnections)*1.5)
	discord := math.Min(20, float64(s.DiscordRoles)*5)
	verification := float64(s.VerifiedAccounts) * 25

	return round(twitter + linkedin + discord + verification)
}

// IdentityScore accumulates verification bonuses, capped at IdentityMaxScore.
func (e Engine) IdentityScore(i domain.IdentitySignals) int {
	score := 0
	if i.HasENS {
		score += 40
	}
	if i.ENSAge > 365 {
		score += 20
	}
	if i.Verified2FA {
		score += 25
	}
	if i.KYCVerified {
		score += 30
	}
	if i.ProfileComplete {
		score += 15
	}
	return min(IdentityMaxScore, score)
}

// ActivityScore rewards recent transactions, engagement and recency.
func (e Engine) ActivityScore(a domain.ActivitySignals) int {
	score := math.Min(50, float64(a.RecentTransactions)*2)
	score += math.Min(30, float64(a.PlatformEngagement))
	score += float64(recencyBonus(a.LastActiveDays()))

	return round(score)
}

// SecurityScore adds flat bonuses for security practices. Max 100.
func (e Engine) SecurityScore(s domain.SecuritySignals) int {
	score := 0
	if s.MultiSigUsage {
		score += 25
	}
	if s.HardwareWallet {
		score += 20
	}
	if s.HasRegularActivity() {
		score += 15
	}
	if s.IsClean() {
		score += 40
	}
	return score
}

// TotalScore is the weighted sum of all components, rounded.
func (e Engine) TotalScore(c domain.Components) int {
	w := e.weights
	return round(float64(c.WalletScore)*w.Wallet +
		float64(c.GitHubScore)*w.GitHub +
		float64(c.SocialScore)*w.Social +
		float64(c.IdentityScore)*w.Identity +
		float64(c.ActivityScore)*w.Activity +
		float64(c.SecurityScore)*w.Security)
}

// Components computes every component from the given inputs.
// sig.GitHub, when set, supplies the github component; otherwise it is 0.
func (e Engine) Components(wallet domain.WalletMetrics, sig domain.Signals) domain.Components {
	var (
		social   domain.SocialSignals
		identity domain.IdentitySignals
		activity domain.ActivitySignals
		security domain.SecuritySignals
	)
	if sig.Social != nil {
		social = *sig.Social
	}
	if sig.Identity != nil {
		identity = *sig.Identity
	}
	if sig.Activity != nil {
		activity = *sig.Activity
	}
	if sig.Security != nil {
		security = *sig.Security
	}

	c := domain.Components{
		WalletScore:   e.WalletScore(wallet),
		SocialScore:   e.SocialScore(social),
		IdentityScore: e.IdentityScore(identity),
		ActivityScore: e.ActivityScore(activity),
		SecurityScore: e.SecurityScore(security),
	}
	if sig.GitHub != nil {
		c.GitHubScore = e.GitHubScore(*sig.GitHub)
	}
	return c
}

// Generate runs a full scoring pass. now only stamps LastUpdated; every
// other field depends on the inputs alone.
func (e Engine) Generate(wallet domain.WalletMetrics, sig domain.Signals, now time.Time) *domain.ReputationData {
	c := e.Components(wallet, sig)

	return &domain.ReputationData{
		Address:     wallet.Address,
		TotalScore:  e.TotalScore(c),
		Components:  c,
		Insights:    e.GenerateInsights(c),
		LastUpdated: now.UnixMilli(),
		Hash:        ComponentsHash(c),
	}
}

// round rounds half up.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// sqrt treats negative counts as zero so the result stays a real number.
func sqrt(n int) float64 {
	if n <= 0 {
		return 0
	}
	return math.Sqrt(float64(n))
}
