package entities

// NoActiveStoresError is reported in the summary when the plant data yields no active store
const NoActiveStoresError = "No active stores found"

// AnalysisResult is one e-commerce eligible PLU with its recommendation
type AnalysisResult struct {
	PLU                 PLU                `json:"PLU"`
	Description         string             `json:"Description"`
	SAPStatus           string             `json:"SAP Status"`
	Published           bool               `json:"Published"`
	InventoryPct        float64            `json:"Inventory %"`
	StoresWithInventory int                `json:"Stores w/ Inventory"`
	TotalActiveStores   int                `json:"Total Active Stores"`
	DSInventory         []LocationQuantity `json:"DS Inventory"`
	Recommendation      Recommendation     `json:"Recommendation"`
}

// FilteredOutResult is a PLU kept out of the main results because of its channel
type FilteredOutResult struct {
	PLU                PLU            `json:"PLU"`
	Description        string         `json:"Description"`
	SAPStatus          string         `json:"SAP Status"`
	Published          bool           `json:"Published"`
	InventoryPct       float64        `json:"Inventory %"`
	AvailableInChannel string         `json:"Available In Channel"`
	WouldRecommend     Recommendation `json:"Would Recommend"`
}

// AnalysisSummary tallies the main results
type AnalysisSummary struct {
	TotalPLUs    int    `json:"total_plus"`
	ToPublish    int    `json:"to_publish"`
	ToUnpublish  int    `json:"to_unpublish"`
	NoAction     int    `json:"no_action"`
	ActiveStores int    `json:"active_stores"`
	Error        string `json:"error,omitempty"`
}

// Count adds one result to the tally
func (s *AnalysisSummary) Count(r Recommendation) {
	s.TotalPLUs++
	switch r {
	case Publish:
		s.ToPublish++
	case Unpublish:
		s.ToUnpublish++
	case NoAction:
		s.NoAction++
	}
}
