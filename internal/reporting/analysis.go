package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/reputation"
)

// AnalysisExport is the JSON export document of a graded analysis.
type AnalysisExport struct {
	domain.Analysis
	Insights domain.AnalysisInsights `json:"insights"`
}

// NewAnalysisExport builds the export document for address with a recomputed hash.
func NewAnalysisExport(address string, a *domain.Analysis) AnalysisExport {
	doc := AnalysisExport{Analysis: *a, Insights: reputation.InsightsFor(a)}
	doc.Address = address
	doc.Hash = reputation.AnalysisHash(a)
	return doc
}

// RenderAnalysisJSON renders a as indented JSON including address, hash and insights.
func RenderAnalysisJSON(address string, a *domain.Analysis) (string, error) {
	out, err := json.MarshalIndent(NewAnalysisExport(address, a), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal analysis export: %w", err)
	}
	return string(out), nil
}

// RenderAnalysisSummary renders a as a plain-text summary with its grade
// and both metric groups.
func RenderAnalysisSummary(address string, a *domain.Analysis) string {
	var sb strings.Builder
	on, off := a.OnChain, a.OffChain

	sb.WriteString(fmt.Sprintf("OmniRep Score: %d/1000 (Grade: %s)\n", a.TotalScore, a.Grade))
	sb.WriteString(fmt.Sprintf("Percentile: %d%%\n\n", a.Percentile))

	sb.WriteString("On-Chain Metrics:\n")
	sb.WriteString(fmt.Sprintf("- Wallet Score: %d/1000\n", on.WalletScore))
	sb.WriteString(fmt.Sprintf("- Transaction History: %d/1000\n", on.TransactionHistory))
	sb.WriteString(fmt.Sprintf("- Balance Score: %d/1000\n", on.BalanceScore))
	sb.WriteString(fmt.Sprintf("- Diversity Score: %d/1000\n\n", on.DiversityScore))

	sb.WriteString("Off-Chain Metrics:\n")
	sb.WriteString(fmt.Sprintf("- GitHub Score: %d/1000\n", off.GitHubScore))
	sb.WriteString(fmt.Sprintf("- Profile Completeness: %d/1000\n", off.ProfileCompleteness))
	sb.WriteString(fmt.Sprintf("- Social Presence: %d/1000\n", off.SocialPresence))

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n", time.UnixMilli(a.LastCalculated).UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Verified for: %s", address))

	return sb.String()
}

// RenderAnalysis dispatches on format. An empty format renders JSON.
func RenderAnalysis(format, address string, a *domain.Analysis) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return RenderAnalysisJSON(address, a)
	case FormatSummary:
		return RenderAnalysisSummary(address, a), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
