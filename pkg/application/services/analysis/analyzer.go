package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	"github.com/vsinha/pluanalyzer/pkg/domain/services"
)

// DefaultDSLocations are the distribution supply channels reported next to each result
var DefaultDSLocations = []string{"9801", "9803"}

// Config holds configuration for the reconciliation engine
type Config struct {
	Rules       services.RecommendationRules
	DSLocations []string
}

// DefaultConfig returns the production engine configuration
func DefaultConfig() Config {
	return Config{
		Rules:       services.DefaultRecommendationRules(),
		DSLocations: append([]string(nil), DefaultDSLocations...),
	}
}

// Analyzer joins product, status and inventory records and classifies each PLU.
// It holds no state between calls and never mutates its inputs.
type Analyzer struct {
	config     Config
	classifier *services.Classifier
}

// NewAnalyzer creates an analyzer with the default configuration
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithConfig(DefaultConfig())
}

// NewAnalyzerWithConfig creates an analyzer with custom configuration
func NewAnalyzerWithConfig(config Config) *Analyzer {
	return &Analyzer{
		config:     config,
		classifier: services.NewClassifier(config.Rules),
	}
}

// pluView is the per-PLU data shared by the main pass and the audit pass
type pluView struct {
	product             entities.ProductRecord
	plu                 entities.PLU
	description         string
	published           bool
	storesWithInventory int
	inventoryPct        decimal.Decimal
}

// indexes are built once per run from the raw record sets
type indexes struct {
	activeStores  map[string]struct{}
	totalStores   int
	published     map[string]bool
	storesWithQty map[string]map[string]struct{}
	dsQuantities  map[string]map[string]float64
}

func (a *Analyzer) buildIndexes(
	inventory []entities.InventoryRecord,
	status []entities.StatusRecord,
	activeStores []string,
) *indexes {
	idx := &indexes{
		activeStores:  make(map[string]struct{}, len(activeStores)),
		published:     make(map[string]bool, len(status)),
		storesWithQty: make(map[string]map[string]struct{}),
		dsQuantities:  make(map[string]map[string]float64, len(a.config.DSLocations)),
	}

	for _, store := range activeStores {
		idx.activeStores[store] = struct{}{}
	}
	idx.totalStores = len(activeStores)

	// Last write wins on duplicate keys
	for _, s := range status {
		idx.published[s.Key] = s.Published
	}

	for _, loc := range a.config.DSLocations {
		idx.dsQuantities[loc] = make(map[string]float64)
	}

	for _, row := range inventory {
		// DS locations are summed across the whole feed, active or not
		if byPLU, ok := idx.dsQuantities[row.SupplyChannelKey]; ok {
			byPLU[row.SKU] += row.AvailableQuantity
		}

		if _, active := idx.activeStores[row.SupplyChannelKey]; !active || !row.InStock() {
			continue
		}
		stores, ok := idx.storesWithQty[row.SKU]
		if !ok {
			stores = make(map[string]struct{})
			idx.storesWithQty[row.SKU] = stores
		}
		stores[row.SupplyChannelKey] = struct{}{}
	}

	return idx
}

// eachPLU visits every valid PLU once, in product order, first occurrence winning
func (idx *indexes) eachPLU(products []entities.ProductRecord, visit func(pluView)) {
	processed := make(map[entities.PLU]struct{}, len(products))

	for _, product := range products {
		plu := product.PLU()
		if !plu.IsValid() {
			continue
		}
		if _, seen := processed[plu]; seen {
			continue
		}
		processed[plu] = struct{}{}

		stores := len(idx.storesWithQty[string(plu)])
		visit(pluView{
			product:             product,
			plu:                 plu,
			description:         product.Description(),
			published:           idx.published[string(plu)],
			storesWithInventory: stores,
			inventoryPct:        services.CoveragePercent(stores, idx.totalStores),
		})
	}
}

// Analyze runs the reconciliation and returns eligible results, channel-filtered rows and a summary
func (a *Analyzer) Analyze(
	inventory []entities.InventoryRecord,
	status []entities.StatusRecord,
	products []entities.ProductRecord,
	activeStores []string,
) dto.AnalysisOutput {
	output := dto.AnalysisOutput{
		Results:     make([]entities.AnalysisResult, 0),
		FilteredOut: make([]entities.FilteredOutResult, 0),
	}

	if len(activeStores) == 0 {
		output.Summary = entities.AnalysisSummary{Error: entities.NoActiveStoresError}
		return output
	}

	idx := a.buildIndexes(inventory, status, activeStores)
	output.Summary.ActiveStores = idx.totalStores

	idx.eachPLU(products, func(v pluView) {
		recommendation := a.classifier.Classify(v.published, v.product.StatusInSAP, v.inventoryPct)
		pct := v.inventoryPct.InexactFloat64()

		if !v.product.IsEcomEligible() {
			if recommendation.RequiresAction() {
				output.FilteredOut = append(output.FilteredOut, entities.FilteredOutResult{
					PLU:                v.plu,
					Description:        v.description,
					SAPStatus:          v.product.StatusInSAP,
					Published:          v.published,
					InventoryPct:       pct,
					AvailableInChannel: v.product.Channel(),
					WouldRecommend:     recommendation,
				})
			}
			return
		}

		output.Results = append(output.Results, entities.AnalysisResult{
			PLU:                 v.plu,
			Description:         v.description,
			SAPStatus:           v.product.StatusInSAP,
			Published:           v.published,
			InventoryPct:        pct,
			StoresWithInventory: v.storesWithInventory,
			TotalActiveStores:   idx.totalStores,
			DSInventory:         a.dsInventory(idx, string(v.plu)),
			Recommendation:      recommendation,
		})
		output.Summary.Count(recommendation)
	})

	return output
}

// Audit lists store-only PLUs that are currently published; each is always recommended for Unpublish
func (a *Analyzer) Audit(
	inventory []entities.InventoryRecord,
	status []entities.StatusRecord,
	products []entities.ProductRecord,
	activeStores []string,
) []entities.FilteredOutResult {
	audit := make([]entities.FilteredOutResult, 0)
	if len(activeStores) == 0 {
		return audit
	}

	idx := a.buildIndexes(inventory, status, activeStores)
	idx.eachPLU(products, func(v pluView) {
		if !v.product.IsStoreOnly() || !v.published {
			return
		}
		audit = append(audit, entities.FilteredOutResult{
			PLU:                v.plu,
			Description:        v.description,
			SAPStatus:          v.product.StatusInSAP,
			Published:          v.published,
			InventoryPct:       v.inventoryPct.InexactFloat64(),
			AvailableInChannel: v.product.Channel(),
			WouldRecommend:     entities.Unpublish,
		})
	})

	return audit
}

func (a *Analyzer) dsInventory(idx *indexes, sku string) []entities.LocationQuantity {
	quantities := make([]entities.LocationQuantity, 0, len(a.config.DSLocations))
	for _, loc := range a.config.DSLocations {
		quantities = append(quantities, entities.LocationQuantity{
			Location: loc,
			Quantity: idx.dsQuantities[loc][sku],
		})
	}
	return quantities
}
