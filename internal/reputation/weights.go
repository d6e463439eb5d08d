package reputation

// Weights are the per-component multipliers for the total score.
// They must sum to 1.0.
type Weights struct {
	Wallet   float64
	GitHub   float64
	Social   float64
	Identity float64
	Activity float64
	Security float64
}

// DefaultWeights is the production weighting.
var DefaultWeights = Weights{
	Wallet:   0.30, // on-chain wallet activity
	GitHub:   0.25, // technical contributions
	Social:   0.15, // social connections and verification
	Identity: 0.15, // identity verification (ENS, etc.)
	Activity: 0.10, // recent activity and engagement
	Security: 0.05, // security practices
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Wallet + w.GitHub + w.Social + w.Identity + w.Activity + w.Security
}

// walletFactorWeights weight the five wallet sub-factors.
const (
	walletAgeWeight       = 0.25
	walletActivityWeight  = 0.25
	walletVolumeWeight    = 0.20
	walletDiversityWeight = 0.20
	walletBalanceWeight   = 0.10
)

// githubWeights weight the GitHub activity counters.
const (
	githubCommitWeight     = 1.0
	githubPRWeight         = 2.0
	githubIssueWeight      = 0.5
	githubRepoWeight       = 3.0
	githubStarWeight       = 0.5
	githubFollowerWeight   = 1.0
	githubAccountAgeWeight = 0.1 // per day
	githubNormalizer       = 10.0
	githubMaxScore         = 200
)

// IdentityMaxScore caps the identity component.
const IdentityMaxScore = 130
