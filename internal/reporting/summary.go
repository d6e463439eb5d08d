package reporting

import (
	"fmt"
	"strings"
	"time"

	"omnirep/internal/domain"
)

// RenderSummary renders data as a plain-text summary.
func RenderSummary(address string, data *domain.ReputationData) string {
	var sb strings.Builder
	c := data.Components

	sb.WriteString(fmt.Sprintf("OmniRep Score: %d/1000 (Trust: %s)\n", data.TotalScore, data.Insights.TrustLevel))
	sb.WriteString(fmt.Sprintf("Percentile: %d%%\n\n", data.Insights.Percentile))

	sb.WriteString("Components:\n")
	sb.WriteString(fmt.Sprintf("- Wallet Score: %d/100\n", c.WalletScore))
	sb.WriteString(fmt.Sprintf("- GitHub Score: %d/200\n", c.GitHubScore))
	sb.WriteString(fmt.Sprintf("- Social Score: %d\n", c.SocialScore))
	sb.WriteString(fmt.Sprintf("- Identity Score: %d/100\n", c.IdentityScore))
	sb.WriteString(fmt.Sprintf("- Activity Score: %d/100\n", c.ActivityScore))
	sb.WriteString(fmt.Sprintf("- Security Score: %d/100\n", c.SecurityScore))

	writeList(&sb, "Strengths", data.Insights.Strengths)
	writeList(&sb, "Improvements", data.Insights.Improvements)
	writeList(&sb, "Next Milestones", data.Insights.NextMilestones)

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", time.UnixMilli(data.LastUpdated).UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Verified for: %s", address))

	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + title + ":\n")
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
}
