package domain

// Grade is the letter grade of an on-chain/off-chain analysis.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// String returns the string representation of Grade.
func (g Grade) String() string {
	return string(g)
}

// OnChainMetrics are wallet-derived sub-scores, each on a 0-1000 scale.
// Field order is part of the analysis hash format; do not reorder.
type OnChainMetrics struct {
	WalletScore        int `json:"walletScore"`
	TransactionHistory int `json:"transactionHistory"`
	BalanceScore       int `json:"balanceScore"`
	DiversityScore     int `json:"diversityScore"`
	AgeScore           int `json:"ageScore"`
}

// OffChainMetrics are profile-derived sub-scores, each on a 0-1000 scale.
// Field order is part of the analysis hash format; do not reorder.
type OffChainMetrics struct {
	GitHubScore         int `json:"githubScore"`
	ProfileCompleteness int `json:"profileCompleteness"`
	SocialPresence      int `json:"socialPresence"`
}

// ProfileData is the user-entered profile. Blank fields count as missing.
type ProfileData struct {
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Email       string `json:"email"`
}

// SocialLinks are the user's linked platforms. Blank links count as missing.
type SocialLinks struct {
	Twitter string `json:"twitter"`
	GitHub  string `json:"github"`
	Website string `json:"website"`
}

// Analysis is the graded on-chain/off-chain breakdown of a wallet.
type Analysis struct {
	Address        string          `json:"address,omitempty"`
	OnChain        OnChainMetrics  `json:"onChain"`
	OffChain       OffChainMetrics `json:"offChain"`
	TotalScore     int             `json:"totalScore"`
	Grade          Grade           `json:"grade"`
	Percentile     int             `json:"percentile"`
	LastCalculated int64           `json:"lastCalculated"` // Unix ms
	Hash           string          `json:"hash,omitempty"`
}

// AnalysisInsights are observations and suggested actions for an Analysis.
type AnalysisInsights struct {
	Insights        []string `json:"insights"`
	Recommendations []string `json:"recommendations"`
}
