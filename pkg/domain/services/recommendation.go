package services

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// RecommendationRules holds the thresholds used to classify a PLU
type RecommendationRules struct {
	// PublishThreshold is the minimum inventory coverage percent for Publish
	PublishThreshold decimal.Decimal
	// UnpublishThreshold is the minimum out-of-stock percent for Unpublish
	UnpublishThreshold decimal.Decimal
	InactiveStatuses   []string
}

// DefaultRecommendationRules returns the production thresholds
func DefaultRecommendationRules() RecommendationRules {
	return RecommendationRules{
		PublishThreshold:   decimal.NewFromInt(90),
		UnpublishThreshold: decimal.NewFromInt(50),
		InactiveStatuses:   []string{"Inactive", "Discontinued"},
	}
}

// Classifier decides the recommendation for a single PLU
type Classifier struct {
	rules RecommendationRules
}

// NewClassifier creates a classifier with the given rules
func NewClassifier(rules RecommendationRules) *Classifier {
	return &Classifier{rules: rules}
}

// IsInactive reports whether the SAP status marks the item as no longer sold
func (c *Classifier) IsInactive(sapStatus string) bool {
	return slices.Contains(c.rules.InactiveStatuses, sapStatus)
}

// Classify returns Publish, Unpublish or No Action.
// Publish - TEMP is never produced: no threshold has been agreed for it.
func (c *Classifier) Classify(published bool, sapStatus string, inventoryPct decimal.Decimal) entities.Recommendation {
	inactive := c.IsInactive(sapStatus)
	outOfStockPct := hundred.Sub(inventoryPct)

	if !published && !inactive && inventoryPct.GreaterThanOrEqual(c.rules.PublishThreshold) {
		return entities.Publish
	}

	if published && inactive && outOfStockPct.GreaterThanOrEqual(c.rules.UnpublishThreshold) {
		return entities.Unpublish
	}

	return entities.NoAction
}

// CoveragePercent returns storesWithInventory / totalStores * 100 rounded to one decimal place
func CoveragePercent(storesWithInventory, totalStores int) decimal.Decimal {
	if totalStores <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(storesWithInventory)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(totalStores))).
		Round(1)
}
