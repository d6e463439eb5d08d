package reputation

import (
	"slices"

	"omnirep/internal/domain"
)

// Insight texts.
const (
	StrengthOnChain   = "Strong on-chain presence"
	StrengthTechnical = "Active technical contributor"
	StrengthIdentity  = "Well-verified identity"
	StrengthSecurity  = "Excellent security practices"

	ImproveOnChain   = "Increase on-chain activity"
	ImproveTechnical = "Build technical contributions"
	ImproveSocial    = "Expand social verification"
	ImproveIdentity  = "Complete identity verification"

	MilestoneGitHub    = "Reach 100+ GitHub contributions"
	MilestoneDiversity = "Increase wallet diversity"
	MilestoneENS       = "Set up ENS name"
)

// GenerateInsights derives strengths, improvements, milestones, percentile
// and trust level from the components.
func (e Engine) GenerateInsights(c domain.Components) domain.Insights {
	strengths := []string{}
	improvements := []string{}
	milestones := []string{}

	if c.WalletScore > 80 {
		strengths = append(strengths, StrengthOnChain)
	}
	if c.GitHubScore > 70 {
		strengths = append(strengths, StrengthTechnical)
	}
	if c.IdentityScore > 80 {
		strengths = append(strengths, StrengthIdentity)
	}
	if c.SecurityScore > 80 {
		strengths = append(strengths, StrengthSecurity)
	}

	if c.WalletScore < 60 {
		improvements = append(improvements, ImproveOnChain)
	}
	if c.GitHubScore < 50 {
		improvements = append(improvements, ImproveTechnical)
	}
	if c.SocialScore < 40 {
		improvements = append(improvements, ImproveSocial)
	}
	if c.IdentityScore < 60 {
		improvements = append(improvements, ImproveIdentity)
	}

	if c.GitHubScore < 100 {
		milestones = append(milestones, MilestoneGitHub)
	}
	if c.WalletScore < 100 {
		milestones = append(milestones, MilestoneDiversity)
	}
	if !slices.Contains(strengths, StrengthIdentity) {
		milestones = append(milestones, MilestoneENS)
	}

	total := e.TotalScore(c)
	return domain.Insights{
		Strengths:      strengths,
		Improvements:   improvements,
		NextMilestones: milestones,
		Percentile:     Percentile(total),
		TrustLevel:     TrustLevelFor(total),
	}
}

// TrustLevelFor buckets a total score.
func TrustLevelFor(score int) domain.TrustLevel {
	switch {
	case score >= 750:
		return domain.TrustLevelExcellent
	case score >= 650:
		return domain.TrustLevelHigh
	case score >= 500:
		return domain.TrustLevelMedium
	default:
		return domain.TrustLevelLow
	}
}
