package domain

// TrustLevel is a coarse bucket derived from the total score.
type TrustLevel string

const (
	TrustLevelLow       TrustLevel = "Low"
	TrustLevelMedium    TrustLevel = "Medium"
	TrustLevelHigh      TrustLevel = "High"
	TrustLevelExcellent TrustLevel = "Excellent"
)

// String returns the string representation of TrustLevel.
func (t TrustLevel) String() string {
	return string(t)
}

// IsValid checks if the trust level is a known value.
func (t TrustLevel) IsValid() bool {
	switch t {
	case TrustLevelLow, TrustLevelMedium, TrustLevelHigh, TrustLevelExcellent:
		return true
	}
	return false
}

// Components holds the six weighted sub-scores.
// Field order is part of the checksum format; do not reorder.
type Components struct {
	WalletScore   int `json:"walletScore"`
	GitHubScore   int `json:"githubScore"`
	SocialScore   int `json:"socialScore"`
	IdentityScore int `json:"identityScore"`
	ActivityScore int `json:"activityScore"`
	SecurityScore int `json:"securityScore"`
}

// Scale multiplies every component by k.
func (c Components) Scale(k int) Components {
	return Components{
		WalletScore:   c.WalletScore * k,
		GitHubScore:   c.GitHubScore * k,
		SocialScore:   c.SocialScore * k,
		IdentityScore: c.IdentityScore * k,
		ActivityScore: c.ActivityScore * k,
		SecurityScore: c.SecurityScore * k,
	}
}

// Insights is derived, non-authoritative text and ranking data.
type Insights struct {
	Strengths      []string   `json:"strengths"`
	Improvements   []string   `json:"improvements"`
	NextMilestones []string   `json:"nextMilestones"`
	Percentile     int        `json:"percentile"`
	TrustLevel     TrustLevel `json:"trustLevel"`
}

// ReputationData is the result of one scoring run.
// Corresponds to reputation_scores table in PostgreSQL (latest per address).
type ReputationData struct {
	Address     string     `json:"address,omitempty"`
	TotalScore  int        `json:"totalScore"`
	Components  Components `json:"components"`
	Insights    Insights   `json:"insights"`
	LastUpdated int64      `json:"lastUpdated"`    // Unix ms
	Hash        string     `json:"hash,omitempty"` // checksum of Components
}

// IsStale reports whether data computed at LastUpdated is older than maxAgeMs at nowMs.
func (r *ReputationData) IsStale(nowMs, maxAgeMs int64) bool {
	return nowMs-r.LastUpdated > maxAgeMs
}

// ScoreSnapshot is one historical scoring result.
// Corresponds to score_snapshots table in ClickHouse.
type ScoreSnapshot struct {
	SnapshotID string     `json:"snapshotId"` // deterministic hash of (address, recorded_at)
	Address    string     `json:"address"`    // lowercase 0x wallet address
	TotalScore int        `json:"totalScore"`
	Components Components `json:"components"`
	Percentile int        `json:"percentile"`
	TrustLevel TrustLevel `json:"trustLevel"`
	Hash       string     `json:"hash"`       // components checksum
	RecordedAt int64      `json:"recordedAt"` // Unix ms
}
