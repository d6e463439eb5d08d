package reputation

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"omnirep/internal/domain"
)

// AnalysisWeights split an analysis between on-chain and off-chain halves
// and weight the sub-scores inside each half.
type AnalysisWeights struct {
	OnChain    float64                  `json:"onChain"`
	OffChain   float64                  `json:"offChain"`
	Components AnalysisComponentWeights `json:"components"`
}

// AnalysisComponentWeights weight the sub-scores. Each half is normalized
// by the sum of its own weights.
type AnalysisComponentWeights struct {
	Wallet       float64 `json:"wallet"`
	Transactions float64 `json:"transactions"`
	Balance      float64 `json:"balance"`
	GitHub       float64 `json:"github"`
	Profile      float64 `json:"profile"`
	Social       float64 `json:"social"`
}

// DefaultAnalysisWeights is the 60/40 on-chain/off-chain weighting.
var DefaultAnalysisWeights = AnalysisWeights{
	OnChain:  0.6,
	OffChain: 0.4,
	Components: AnalysisComponentWeights{
		Wallet:       0.3,
		Transactions: 0.2,
		Balance:      0.1,
		GitHub:       0.25,
		Profile:      0.1,
		Social:       0.05,
	},
}

// AnalysisWeightOverrides replace parts of a weighting. Components, when
// set, replaces the whole component set rather than single entries.
type AnalysisWeightOverrides struct {
	OnChain    *float64                  `json:"onChain,omitempty"`
	OffChain   *float64                  `json:"offChain,omitempty"`
	Components *AnalysisComponentWeights `json:"components,omitempty"`
}

// Apply returns base with the set overrides applied. A nil receiver returns base.
func (o *AnalysisWeightOverrides) Apply(base AnalysisWeights) AnalysisWeights {
	if o == nil {
		return base
	}
	if o.OnChain != nil {
		base.OnChain = *o.OnChain
	}
	if o.OffChain != nil {
		base.OffChain = *o.OffChain
	}
	if o.Components != nil {
		base.Components = *o.Components
	}
	return base
}

// AnalysisInput holds the inputs of an analysis. Nil profile and links
// score zero.
type AnalysisInput struct {
	Wallet      domain.WalletMetrics
	GitHubScore int // 0-1000
	Profile     *domain.ProfileData
	Links       *domain.SocialLinks
}

// OnChainMetrics scales wallet data into 0-1000 sub-scores.
func OnChainMetrics(m domain.WalletMetrics) domain.OnChainMetrics {
	age := math.Min(float64(m.Age)/10, 100)
	ensBonus := 0.0
	if m.ENSName != nil && *m.ENSName != "" {
		ensBonus = 20
	}

	balance := 0.0
	if m.Balance > 0 {
		balance = math.Min(math.Log10(m.Balance+1)*100, 100) * 10
	}
	diversity := 0.0
	if m.DeFiProtocols != 0 {
		diversity = math.Min(float64(m.DeFiProtocols)*50, 100) * 10
	}

	return domain.OnChainMetrics{
		WalletScore:        round(math.Min(age+ensBonus, 100) * 10),
		TransactionHistory: round(math.Min(float64(m.TransactionCount)/5, 100) * 10),
		BalanceScore:       round(balance),
		DiversityScore:     round(diversity),
		AgeScore:           round(age * 10),
	}
}

// OffChainMetrics scores the GitHub score, profile completeness and linked
// platforms on a 0-1000 scale.
func OffChainMetrics(githubScore int, profile *domain.ProfileData, links *domain.SocialLinks) domain.OffChainMetrics {
	var completeness, presence float64
	if profile != nil {
		completeness = filledShare(profile.DisplayName, profile.Bio, profile.Email) * 1000
	}
	if links != nil {
		presence = filledShare(links.Twitter, links.GitHub, links.Website) * 1000
	}
	return domain.OffChainMetrics{
		GitHubScore:         githubScore,
		ProfileCompleteness: round(completeness),
		SocialPresence:      round(presence),
	}
}

func filledShare(fields ...string) float64 {
	n := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

// AnalysisGitHubScore rescales the 0-200 github component to 0-1000.
func AnalysisGitHubScore(a domain.GitHubActivity) int {
	return Default().GitHubScore(a) * 5
}

// AnalysisScore blends both halves and caps the result at 1000.
// A half whose component weights sum to zero contributes nothing.
func AnalysisScore(on domain.OnChainMetrics, off domain.OffChainMetrics, w AnalysisWeights) int {
	c := w.Components

	var onTotal, offTotal float64
	if sum := c.Wallet + c.Transactions + c.Balance; sum != 0 {
		onTotal = (float64(on.WalletScore)*c.Wallet +
			float64(on.TransactionHistory)*c.Transactions +
			float64(on.BalanceScore)*c.Balance) / sum
	}
	if sum := c.GitHub + c.Profile + c.Social; sum != 0 {
		offTotal = (float64(off.GitHubScore)*c.GitHub +
			float64(off.ProfileCompleteness)*c.Profile +
			float64(off.SocialPresence)*c.Social) / sum
	}

	return round(math.Min(onTotal*w.OnChain+offTotal*w.OffChain, 1000))
}

// AssignGrade maps a 0-1000 analysis score to a letter grade.
func AssignGrade(score int) domain.Grade {
	switch {
	case score >= 900:
		return domain.GradeS
	case score >= 800:
		return domain.GradeA
	case score >= 700:
		return domain.GradeB
	case score >= 600:
		return domain.GradeC
	case score >= 400:
		return domain.GradeD
	}
	return domain.GradeF
}

// AnalysisPercentile estimates rank from a fixed ladder.
func AnalysisPercentile(score int) int {
	switch {
	case score >= 900:
		return 95
	case score >= 800:
		return 85
	case score >= 700:
		return 70
	case score >= 600:
		return 50
	case score >= 500:
		return 30
	case score >= 400:
		return 15
	}
	return 5
}

// Analyze runs the graded analysis and attaches its hash.
func Analyze(in AnalysisInput, w AnalysisWeights, now time.Time) *domain.Analysis {
	on := OnChainMetrics(in.Wallet)
	off := OffChainMetrics(in.GitHubScore, in.Profile, in.Links)
	total := AnalysisScore(on, off, w)

	a := &domain.Analysis{
		Address:        in.Wallet.Address,
		OnChain:        on,
		OffChain:       off,
		TotalScore:     total,
		Grade:          AssignGrade(total),
		Percentile:     AnalysisPercentile(total),
		LastCalculated: now.UnixMilli(),
	}
	a.Hash = AnalysisHash(a)
	return a
}

// analysisHashInput fixes the key order of the hashed document.
type analysisHashInput struct {
	Score     int                    `json:"score"`
	OnChain   domain.OnChainMetrics  `json:"onChain"`
	OffChain  domain.OffChainMetrics `json:"offChain"`
	Timestamp int64                  `json:"timestamp"`
}

// AnalysisHash is a short non-cryptographic checksum over the score, both
// metric sets and the calculation time, rendered as 0x plus eight or more
// hex digits.
func AnalysisHash(a *domain.Analysis) string {
	data, err := json.Marshal(analysisHashInput{
		Score:     a.TotalScore,
		OnChain:   a.OnChain,
		OffChain:  a.OffChain,
		Timestamp: a.LastCalculated,
	})
	if err != nil {
		// Only ints; Marshal cannot fail.
		return ""
	}
	return paddedStringHash(string(data))
}

// InsightsFor lists observations and recommendations for a.
func InsightsFor(a *domain.Analysis) domain.AnalysisInsights {
	out := domain.AnalysisInsights{Insights: []string{}, Recommendations: []string{}}
	add := func(insight, recommendation string) {
		out.Insights = append(out.Insights, insight)
		out.Recommendations = append(out.Recommendations, recommendation)
	}

	if a.OnChain.WalletScore < 500 {
		add("Your wallet is relatively new to the ecosystem",
			"Continue using your wallet for transactions to build history")
	}
	if a.OnChain.TransactionHistory < 300 {
		add("Limited transaction history detected",
			"Engage more with DeFi protocols and dApps")
	}
	if a.OnChain.BalanceScore < 200 {
		add("Wallet balance contributes minimally to reputation",
			"Consider maintaining a higher ETH balance")
	}
	if a.OffChain.GitHubScore < 400 {
		add("GitHub activity is below average",
			"Increase your open-source contributions and project activity")
	}
	if a.OffChain.ProfileCompleteness < 700 {
		add("Profile information is incomplete",
			"Complete your profile with bio, contact information, and social links")
	}
	if a.OffChain.SocialPresence < 500 {
		add("Limited social media presence",
			"Connect your social media accounts to boost credibility")
	}
	if a.TotalScore < 600 {
		out.Recommendations = append(out.Recommendations,
			"Focus on consistent activity across both on-chain and off-chain platforms")
	}
	return out
}
