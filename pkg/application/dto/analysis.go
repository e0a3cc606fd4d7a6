package dto

import (
	"fmt"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// AnalysisOutput contains the complete output of one engine run
type AnalysisOutput struct {
	Results     []entities.AnalysisResult
	FilteredOut []entities.FilteredOutResult
	Summary     entities.AnalysisSummary
}

// SessionInputs are the per-session record sets supplied alongside the stored plant data
type SessionInputs struct {
	Inventory []entities.InventoryRecord
	Status    []entities.StatusRecord
	Products  []entities.ProductRecord
}

// Complete reports whether all three session record sets have been supplied
func (in SessionInputs) Complete() bool {
	return in.Inventory != nil && in.Status != nil && in.Products != nil
}

// Report is the result of an assortment run as shown to users
type Report struct {
	Results      []entities.AnalysisResult   `json:"results"`
	FilteredOut  []entities.FilteredOutResult `json:"filteredOutResults"`
	Audit        []entities.FilteredOutResult `json:"auditResults"`
	Summary      entities.AnalysisSummary     `json:"summary"`
	ActiveStores []string                     `json:"activeStores"`
	GeneratedAt  time.Time                    `json:"generatedAt"`
}

// FilterResults returns the results whose recommendation passes the filter
func (r *Report) FilterResults(filter entities.RecommendationFilter) []entities.AnalysisResult {
	filtered := make([]entities.AnalysisResult, 0, len(r.Results))
	for _, result := range r.Results {
		if filter.Matches(result.Recommendation) {
			filtered = append(filtered, result)
		}
	}
	return filtered
}

// GetSummary returns a formatted summary of the run
func (r *Report) GetSummary() string {
	if r.Summary.Error != "" {
		return fmt.Sprintf("Analysis failed: %s", r.Summary.Error)
	}
	summary := fmt.Sprintf("Assortment Summary (%d active stores):\n", r.Summary.ActiveStores)
	summary += fmt.Sprintf("  PLUs analyzed: %d\n", r.Summary.TotalPLUs)
	summary += fmt.Sprintf("  Publish: %d, Unpublish: %d, No Action: %d\n",
		r.Summary.ToPublish, r.Summary.ToUnpublish, r.Summary.NoAction)
	summary += fmt.Sprintf("  Ecom ineligible needing action: %d\n", len(r.FilteredOut))
	summary += fmt.Sprintf("  Store-only but published: %d", len(r.Audit))
	return summary
}

// PlantStatus describes the stored plant data
type PlantStatus struct {
	Loaded       bool                    `json:"loaded"`
	Metadata     *entities.PlantMetadata `json:"metadata,omitempty"`
	RowCount     int                     `json:"rowCount"`
	ActiveStores int                     `json:"activeStores"`
}
