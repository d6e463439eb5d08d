// Package reporting renders reputation results for export.
package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"omnirep/internal/domain"
	"omnirep/internal/reputation"
)

// Export formats.
const (
	FormatJSON    = "json"
	FormatSummary = "summary"
)

// ErrUnknownFormat is returned for unsupported export formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Export is the JSON export document.
type Export struct {
	Address     string            `json:"address"`
	TotalScore  int               `json:"totalScore"`
	Components  domain.Components `json:"components"`
	Insights    domain.Insights   `json:"insights"`
	LastUpdated int64             `json:"lastUpdated"`
	Hash        string            `json:"hash"`
}

// NewExport builds the export document for address. The hash is recomputed
// from the components so a tampered stored hash is not propagated.
func NewExport(address string, data *domain.ReputationData) Export {
	return Export{
		Address:     address,
		TotalScore:  data.TotalScore,
		Components:  data.Components,
		Insights:    data.Insights,
		LastUpdated: data.LastUpdated,
		Hash:        reputation.ComponentsHash(data.Components),
	}
}

// RenderJSON renders data as indented JSON including address and hash.
func RenderJSON(address string, data *domain.ReputationData) (string, error) {
	out, err := json.MarshalIndent(NewExport(address, data), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(out), nil
}

// Render dispatches on format. An empty format renders JSON.
func Render(format, address string, data *domain.ReputationData) (string, error) {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		return RenderJSON(address, data)
	case FormatSummary:
		return RenderSummary(address, data), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
