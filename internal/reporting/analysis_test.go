package reporting

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"omnirep/internal/domain"
	"omnirep/internal/reputation"
)

func testAnalysis() *domain.Analysis {
	return &domain.Analysis{
		OnChain:        domain.OnChainMetrics{WalletScore: 1000, TransactionHistory: 684, BalanceScore: 519, DiversityScore: 1000, AgeScore: 1000},
		OffChain:       domain.OffChainMetrics{GitHubScore: 0, ProfileCompleteness: 667, SocialPresence: 333},
		TotalScore:     489,
		Grade:          domain.GradeD,
		Percentile:     15,
		LastCalculated: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli(),
		Hash:           "stale",
	}
}

func TestRenderAnalysisSummary(t *testing.T) {
	out := RenderAnalysisSummary(testAddress, testAnalysis())

	want := "OmniRep Score: 489/1000 (Grade: D)\n" +
		"Percentile: 15%\n\n" +
		"On-Chain Metrics:\n" +
		"- Wallet Score: 1000/1000\n" +
		"- Transaction History: 684/1000\n" +
		"- Balance Score: 519/1000\n" +
		"- Diversity Score: 1000/1000\n\n" +
		"Off-Chain Metrics:\n" +
		"- GitHub Score: 0/1000\n" +
		"- Profile Completeness: 667/1000\n" +
		"- Social Presence: 333/1000\n\n" +
		"Generated: 2025-06-01T12:00:00Z\n" +
		"Verified for: " + testAddress
	if out != want {
		t.Errorf("summary mismatch\ngot:\n%s\nwant:\n%s", out, want)
	}
}

func TestRenderAnalysisJSON(t *testing.T) {
	a := testAnalysis()

	out, err := RenderAnalysisJSON(testAddress, a)
	if err != nil {
		t.Fatalf("RenderAnalysisJSON failed: %v", err)
	}

	var got AnalysisExport
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if got.Address != testAddress {
		t.Errorf("address = %q, want %q", got.Address, testAddress)
	}
	if got.Grade != domain.GradeD {
		t.Errorf("grade = %q, want D", got.Grade)
	}
	if got.OnChain != a.OnChain || got.OffChain != a.OffChain {
		t.Errorf("metrics = %+v %+v, want %+v %+v", got.OnChain, got.OffChain, a.OnChain, a.OffChain)
	}
	if want := reputation.AnalysisHash(a); got.Hash != want {
		t.Errorf("hash = %q, want recomputed %q", got.Hash, want)
	}
	if len(got.Insights.Recommendations) == 0 {
		t.Error("expected recommendations for a D grade")
	}
	if !strings.Contains(out, "\n  \"totalScore\": 489") {
		t.Errorf("expected two-space indentation, got:\n%s", out)
	}
	if a.Hash != "stale" || a.Address != "" {
		t.Error("rendering must not modify the analysis")
	}
}

func TestRenderAnalysis(t *testing.T) {
	a := testAnalysis()

	for _, format := range []string{"", "json", "JSON"} {
		out, err := RenderAnalysis(format, testAddress, a)
		if err != nil {
			t.Fatalf("RenderAnalysis(%q) failed: %v", format, err)
		}
		if !strings.HasPrefix(out, "{") {
			t.Errorf("RenderAnalysis(%q) should be JSON, got %q", format, out)
		}
	}

	out, err := RenderAnalysis("summary", testAddress, a)
	if err != nil {
		t.Fatalf("RenderAnalysis(summary) failed: %v", err)
	}
	if !strings.HasPrefix(out, "OmniRep Score: 489/1000 (Grade: D)") {
		t.Errorf("unexpected summary: %q", out)
	}

	if _, err := RenderAnalysis("xml", testAddress, a); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
