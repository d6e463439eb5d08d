package reporting

import (
	"fmt"
	"strings"
	"time"

	"omnirep/internal/domain"
)

// RenderHistoryCSV renders score snapshots as CSV string.
func RenderHistoryCSV(snaps []*domain.ScoreSnapshot) string {
	var sb strings.Builder

	// Header
	sb.WriteString("recorded_at,total_score,wallet_score,github_score,social_score,")
	sb.WriteString("identity_score,activity_score,security_score,percentile,trust_level,hash\n")

	// Rows
	for _, s := range snaps {
		c := s.Components
		sb.WriteString(fmt.Sprintf("%s,%d,%d,%d,%d,%d,%d,%d,%d,%s,%s\n",
			time.UnixMilli(s.RecordedAt).UTC().Format(time.RFC3339),
			s.TotalScore,
			c.WalletScore,
			c.GitHubScore,
			c.SocialScore,
			c.IdentityScore,
			c.ActivityScore,
			c.SecurityScore,
			s.Percentile,
			s.TrustLevel,
			s.Hash,
		))
	}

	return sb.String()
}
