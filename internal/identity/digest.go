package identity

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"

	"omnirep/internal/domain"
)

// ScoreClaim is the score payload committed to by a credential.
type ScoreClaim struct {
	Score      int            `json:"score"`
	Timestamp  int64          `json:"timestamp"` // Unix seconds
	Categories map[string]int `json:"categories"`
	Metadata   map[string]any `json:"metadata"`
}

// ClaimFromReputation builds a claim from a scoring result. Categories are
// the six component scores keyed by their JSON names.
func ClaimFromReputation(data *domain.ReputationData, timestamp int64) ScoreClaim {
	c := data.Components
	return ScoreClaim{
		Score:     data.TotalScore,
		Timestamp: timestamp,
		Categories: map[string]int{
			"walletScore":   c.WalletScore,
			"githubScore":   c.GitHubScore,
			"socialScore":   c.SocialScore,
			"identityScore": c.IdentityScore,
			"activityScore": c.ActivityScore,
			"securityScore": c.SecurityScore,
		},
		Metadata: map[string]any{"hash": data.Hash},
	}
}

// canonicalClaim fixes key order; map keys are sorted by encoding/json.
type canonicalClaim struct {
	Categories map[string]int `json:"categories"`
	Metadata   map[string]any `json:"metadata"`
	Score      int            `json:"score"`
	Timestamp  int64          `json:"timestamp"`
}

// ScoreDigest returns the 0x keccak256 digest of the claim's canonical JSON.
// Nil categories and metadata encode as empty objects.
func ScoreDigest(c ScoreClaim) (string, error) {
	cc := canonicalClaim{
		Categories: c.Categories,
		Metadata:   c.Metadata,
		Score:      c.Score,
		Timestamp:  c.Timestamp,
	}
	if cc.Categories == nil {
		cc.Categories = map[string]int{}
	}
	if cc.Metadata == nil {
		cc.Metadata = map[string]any{}
	}

	data, err := json.Marshal(cc)
	if err != nil {
		return "", fmt.Errorf("marshal score claim: %w", err)
	}
	return crypto.Keccak256Hash(data).Hex(), nil
}

// ValidateScoreDigest reports whether digest commits to c.
func ValidateScoreDigest(digest string, c ScoreClaim) bool {
	want, err := ScoreDigest(c)
	if err != nil {
		return false
	}
	return strings.EqualFold(digest, want)
}
