package analysis

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	testinghelpers "github.com/vsinha/pluanalyzer/pkg/infrastructure/testing"
)

func TestAnalyzer_SampleSession(t *testing.T) {
	session := testinghelpers.BuildSampleSession()
	stores := testinghelpers.StoreNumbers(10)

	analyzer := NewAnalyzer()
	output := analyzer.Analyze(session.Inventory, session.Status, session.Products, stores)

	expectedResults := []struct {
		plu            entities.PLU
		description    string
		pct            float64
		stores         int
		recommendation entities.Recommendation
	}{
		{"4011", "Bananas", 100, 10, entities.Publish},
		{"4022", "Lemons", 30, 3, entities.Unpublish},
		{"4033", "Limes", 50, 5, entities.NoAction},
	}

	if len(output.Results) != len(expectedResults) {
		t.Fatalf("Expected %d results, got %d: %+v", len(expectedResults), len(output.Results), output.Results)
	}
	for i, exp := range expectedResults {
		got := output.Results[i]
		if got.PLU != exp.plu {
			t.Errorf("Result %d: expected PLU %s, got %s", i, exp.plu, got.PLU)
		}
		if got.Description != exp.description {
			t.Errorf("PLU %s: expected description %q, got %q", exp.plu, exp.description, got.Description)
		}
		if got.InventoryPct != exp.pct {
			t.Errorf("PLU %s: expected inventory %% %v, got %v", exp.plu, exp.pct, got.InventoryPct)
		}
		if got.StoresWithInventory != exp.stores {
			t.Errorf("PLU %s: expected %d stores with inventory, got %d", exp.plu, exp.stores, got.StoresWithInventory)
		}
		if got.TotalActiveStores != 10 {
			t.Errorf("PLU %s: expected 10 total active stores, got %d", exp.plu, got.TotalActiveStores)
		}
		if got.Recommendation != exp.recommendation {
			t.Errorf("PLU %s: expected %s, got %s", exp.plu, exp.recommendation, got.Recommendation)
		}
	}

	expectedDS := []entities.LocationQuantity{{Location: "9801", Quantity: 120}, {Location: "9803", Quantity: 40}}
	if !reflect.DeepEqual(output.Results[0].DSInventory, expectedDS) {
		t.Errorf("Expected DS inventory %+v, got %+v", expectedDS, output.Results[0].DSInventory)
	}
	zeroDS := []entities.LocationQuantity{{Location: "9801", Quantity: 0}, {Location: "9803", Quantity: 0}}
	if !reflect.DeepEqual(output.Results[1].DSInventory, zeroDS) {
		t.Errorf("Expected zero DS inventory, got %+v", output.Results[1].DSInventory)
	}

	expectedFiltered := []entities.FilteredOutResult{
		{PLU: "4044", Description: "Kale", SAPStatus: "Active", Published: false, InventoryPct: 100, AvailableInChannel: "Store", WouldRecommend: entities.Publish},
		{PLU: "4055", Description: "Figs", SAPStatus: "Inactive", Published: true, InventoryPct: 0, AvailableInChannel: "Store", WouldRecommend: entities.Unpublish},
	}
	if !reflect.DeepEqual(output.FilteredOut, expectedFiltered) {
		t.Errorf("Expected filtered out %+v, got %+v", expectedFiltered, output.FilteredOut)
	}

	expectedSummary := entities.AnalysisSummary{
		TotalPLUs:    3,
		ToPublish:    1,
		ToUnpublish:  1,
		NoAction:     1,
		ActiveStores: 10,
	}
	if output.Summary != expectedSummary {
		t.Errorf("Expected summary %+v, got %+v", expectedSummary, output.Summary)
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	session := testinghelpers.BuildSampleSession()
	stores := testinghelpers.StoreNumbers(10)
	analyzer := NewAnalyzer()

	first := analyzer.Analyze(session.Inventory, session.Status, session.Products, stores)
	second := analyzer.Analyze(session.Inventory, session.Status, session.Products, stores)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output on repeated runs\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzer_DoesNotMutateInputs(t *testing.T) {
	session := testinghelpers.BuildSampleSession()
	stores := testinghelpers.StoreNumbers(10)

	inventory := append([]entities.InventoryRecord(nil), session.Inventory...)
	products := append([]entities.ProductRecord(nil), session.Products...)
	storesCopy := append([]string(nil), stores...)

	analyzer := NewAnalyzer()
	analyzer.Analyze(session.Inventory, session.Status, session.Products, stores)
	analyzer.Audit(session.Inventory, session.Status, session.Products, stores)

	if !reflect.DeepEqual(inventory, session.Inventory) {
		t.Error("Inventory records were modified")
	}
	if !reflect.DeepEqual(products, session.Products) {
		t.Error("Product records were modified")
	}
	if !reflect.DeepEqual(storesCopy, stores) {
		t.Error("Active store list was modified")
	}
}

func TestAnalyzer_FirstDuplicateWins(t *testing.T) {
	stores := []string{"1", "2"}
	products := []entities.ProductRecord{
		testinghelpers.Product("1234", "Active", "1234 - First", "Both"),
		testinghelpers.Product("1234", "Discontinued", "1234 - Second", "Store"),
	}

	output := NewAnalyzer().Analyze(nil, nil, products, stores)

	if len(output.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(output.Results))
	}
	if output.Results[0].Description != "First" || output.Results[0].SAPStatus != "Active" {
		t.Errorf("Expected first row to win, got %+v", output.Results[0])
	}
	if len(output.FilteredOut) != 0 {
		t.Errorf("Expected duplicate to be dropped entirely, got %+v", output.FilteredOut)
	}
}

func TestAnalyzer_InvalidPLUsExcluded(t *testing.T) {
	stores := []string{"1"}
	var products []entities.ProductRecord
	var inventory []entities.InventoryRecord
	for _, sku := range []string{"12A4", "123", "12345", " 1234", "", "abcd"} {
		products = append(products,
			testinghelpers.Product(sku, "Active", "", "Both"),
			testinghelpers.Product(sku, "Active", "", "Store"),
		)
		inventory = append(inventory, testinghelpers.Inventory(sku, 10, "1"))
	}

	output := NewAnalyzer().Analyze(inventory, nil, products, stores)

	if len(output.Results) != 0 {
		t.Errorf("Expected no results, got %+v", output.Results)
	}
	if len(output.FilteredOut) != 0 {
		t.Errorf("Expected no filtered out rows, got %+v", output.FilteredOut)
	}
	if output.Summary.TotalPLUs != 0 {
		t.Errorf("Expected total 0, got %d", output.Summary.TotalPLUs)
	}
}

func TestAnalyzer_CoverageMath(t *testing.T) {
	stores := []string{"1", "2", "3", "4"}
	inventory := []entities.InventoryRecord{
		testinghelpers.Inventory("1234", 3, "1"),
		testinghelpers.Inventory("1234", 1, "2"),
		testinghelpers.Inventory("1234", 8, "2"),
		testinghelpers.Inventory("1234", 0, "3"),
		testinghelpers.Inventory("1234", -2, "4"),
		testinghelpers.Inventory("1234", 50, "99"),
	}
	products := []entities.ProductRecord{testinghelpers.Product("1234", "Active", "", "Both")}

	output := NewAnalyzer().Analyze(inventory, nil, products, stores)

	if len(output.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(output.Results))
	}
	if output.Results[0].InventoryPct != 50.0 {
		t.Errorf("Expected inventory %% 50.0, got %v", output.Results[0].InventoryPct)
	}
	if output.Results[0].StoresWithInventory != 2 {
		t.Errorf("Expected 2 stores with inventory, got %d", output.Results[0].StoresWithInventory)
	}
}

func TestAnalyzer_RoundsToOneDecimal(t *testing.T) {
	stores := []string{"1", "2", "3"}
	inventory := testinghelpers.StockedAt("1234", "1")
	products := []entities.ProductRecord{testinghelpers.Product("1234", "Active", "", "Both")}

	output := NewAnalyzer().Analyze(inventory, nil, products, stores)

	if output.Results[0].InventoryPct != 33.3 {
		t.Errorf("Expected inventory %% 33.3, got %v", output.Results[0].InventoryPct)
	}
}

// coverageCase builds a run where sku is stocked at `stocked` of `total` active stores
func coverageCase(stocked, total int, published bool, sapStatus, channel string) ([]entities.InventoryRecord, []entities.StatusRecord, []entities.ProductRecord, []string) {
	stores := make([]string, total)
	for i := range stores {
		stores[i] = strconv.Itoa(i + 1)
	}
	inventory := testinghelpers.StockedAt("1234", stores[:stocked]...)
	status := []entities.StatusRecord{testinghelpers.Status("1234", published)}
	products := []entities.ProductRecord{testinghelpers.Product("1234", sapStatus, "1234 - Item", channel)}
	return inventory, status, products, stores
}

func TestAnalyzer_ClassificationBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		stocked   int
		total     int
		published bool
		sapStatus string
		pct       float64
		expected  entities.Recommendation
	}{
		{"publish_at_90", 9, 10, false, "Active", 90.0, entities.Publish},
		{"no_action_at_89_9", 899, 1000, false, "Active", 89.9, entities.NoAction},
		{"unpublish_at_50_out_of_stock", 5, 10, true, "Discontinued", 50.0, entities.Unpublish},
		{"no_action_at_49_9_out_of_stock", 501, 1000, true, "Discontinued", 50.1, entities.NoAction},
		{"inactive_not_published", 10, 10, false, "Inactive", 100, entities.NoAction},
		{"published_active", 10, 10, true, "Active", 100, entities.NoAction},
	}

	analyzer := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory, status, products, stores := coverageCase(tt.stocked, tt.total, tt.published, tt.sapStatus, "Both")
			output := analyzer.Analyze(inventory, status, products, stores)

			if len(output.Results) != 1 {
				t.Fatalf("Expected 1 result, got %d", len(output.Results))
			}
			got := output.Results[0]
			if got.InventoryPct != tt.pct {
				t.Errorf("Expected inventory %% %v, got %v", tt.pct, got.InventoryPct)
			}
			if got.Recommendation != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got.Recommendation)
			}
		})
	}
}

func TestAnalyzer_ChannelGate(t *testing.T) {
	tests := []struct {
		name         string
		channel      string
		stocked      int
		published    bool
		sapStatus    string
		wantResult   bool
		wantFiltered entities.Recommendation
	}{
		{"store_would_publish", "Store", 10, false, "Active", false, entities.Publish},
		{"store_would_unpublish", "Store", 0, true, "Inactive", false, entities.Unpublish},
		{"store_no_action_dropped", "Store", 2, false, "Active", false, ""},
		{"blank_channel_would_publish", "", 10, false, "Active", false, entities.Publish},
		{"unknown_channel_dropped", "Wholesale", 0, false, "Active", false, ""},
		{"both_is_eligible", "Both", 10, false, "Active", true, ""},
		{"ecom_is_eligible", "Ecom", 10, false, "Active", true, ""},
		{"padded_ecom_is_eligible", "  Ecom ", 10, false, "Active", true, ""},
	}

	analyzer := NewAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inventory, status, products, stores := coverageCase(tt.stocked, 10, tt.published, tt.sapStatus, tt.channel)
			output := analyzer.Analyze(inventory, status, products, stores)

			if tt.wantResult != (len(output.Results) == 1) {
				t.Fatalf("Expected result present = %v, got %+v", tt.wantResult, output.Results)
			}
			if !tt.wantResult && output.Summary.TotalPLUs != 0 {
				t.Errorf("Filtered PLU must not be tallied, got %+v", output.Summary)
			}

			if tt.wantFiltered == "" {
				if len(output.FilteredOut) != 0 {
					t.Errorf("Expected no filtered out rows, got %+v", output.FilteredOut)
				}
				return
			}
			if len(output.FilteredOut) != 1 {
				t.Fatalf("Expected 1 filtered out row, got %d", len(output.FilteredOut))
			}
			if output.FilteredOut[0].WouldRecommend != tt.wantFiltered {
				t.Errorf("Expected would recommend %s, got %s", tt.wantFiltered, output.FilteredOut[0].WouldRecommend)
			}
			if output.FilteredOut[0].AvailableInChannel != tt.channel {
				t.Errorf("Expected channel %q, got %q", tt.channel, output.FilteredOut[0].AvailableInChannel)
			}
		})
	}
}

func TestAnalyzer_NoActiveStores(t *testing.T) {
	session := testinghelpers.BuildSampleSession()

	for _, stores := range [][]string{nil, {}} {
		output := NewAnalyzer().Analyze(session.Inventory, session.Status, session.Products, stores)

		expected := entities.AnalysisSummary{Error: "No active stores found"}
		if output.Summary != expected {
			t.Errorf("Expected summary %+v, got %+v", expected, output.Summary)
		}
		if len(output.Results) != 0 || len(output.FilteredOut) != 0 {
			t.Errorf("Expected empty collections, got %d results and %d filtered", len(output.Results), len(output.FilteredOut))
		}
		if output.Results == nil || output.FilteredOut == nil {
			t.Error("Expected empty, non-nil collections")
		}
	}
}

func TestAnalyzer_EndToEndHalfCoverageIsNoAction(t *testing.T) {
	stores := []string{"100", "200"}
	inventory := []entities.InventoryRecord{testinghelpers.Inventory("0001", 5, "100")}
	status := []entities.StatusRecord{testinghelpers.Status("0001", false)}
	products := []entities.ProductRecord{{SKUNumber: "0001", StatusInSAP: "Active", AvailableInChannel: "Both"}}

	output := NewAnalyzer().Analyze(inventory, status, products, stores)

	if len(output.Results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(output.Results))
	}
	got := output.Results[0]
	if got.PLU != "0001" || got.InventoryPct != 50.0 || got.Published {
		t.Errorf("Unexpected result %+v", got)
	}
	if got.Recommendation != entities.NoAction {
		t.Errorf("Expected No Action at 50%% coverage, got %s", got.Recommendation)
	}
	if got.Description != "" {
		t.Errorf("Expected empty description, got %q", got.Description)
	}
}

func TestAnalyzer_StatusLastWriteWins(t *testing.T) {
	inventory, _, products, stores := coverageCase(10, 10, false, "Active", "Both")
	status := []entities.StatusRecord{
		testinghelpers.Status("1234", true),
		testinghelpers.Status("1234", false),
	}

	output := NewAnalyzer().Analyze(inventory, status, products, stores)

	if output.Results[0].Published {
		t.Error("Expected the last status row to win")
	}
	if output.Results[0].Recommendation != entities.Publish {
		t.Errorf("Expected Publish, got %s", output.Results[0].Recommendation)
	}
}

func TestAnalyzer_CustomDSLocations(t *testing.T) {
	config := DefaultConfig()
	config.DSLocations = []string{"7000"}
	analyzer := NewAnalyzerWithConfig(config)

	inventory := []entities.InventoryRecord{
		testinghelpers.Inventory("1234", 4, "7000"),
		testinghelpers.Inventory("1234", 6, "7000"),
		testinghelpers.Inventory("1234", 9, "9801"),
	}
	products := []entities.ProductRecord{testinghelpers.Product("1234", "Active", "", "Both")}

	output := analyzer.Analyze(inventory, nil, products, []string{"1"})

	expected := []entities.LocationQuantity{{Location: "7000", Quantity: 10}}
	if !reflect.DeepEqual(output.Results[0].DSInventory, expected) {
		t.Errorf("Expected %+v, got %+v", expected, output.Results[0].DSInventory)
	}
}

func TestAnalyzer_Audit(t *testing.T) {
	session := testinghelpers.BuildSampleSession()
	stores := testinghelpers.StoreNumbers(10)

	audit := NewAnalyzer().Audit(session.Inventory, session.Status, session.Products, stores)

	expected := []entities.FilteredOutResult{
		{PLU: "4055", Description: "Figs", SAPStatus: "Inactive", Published: true, InventoryPct: 0, AvailableInChannel: "Store", WouldRecommend: entities.Unpublish},
	}
	if !reflect.DeepEqual(audit, expected) {
		t.Errorf("Expected audit %+v, got %+v", expected, audit)
	}
}

func TestAnalyzer_AuditIgnoresStatusAndInventory(t *testing.T) {
	inventory, status, products, stores := coverageCase(10, 10, true, "Active", "Store")

	audit := NewAnalyzer().Audit(inventory, status, products, stores)

	if len(audit) != 1 {
		t.Fatalf("Expected 1 audit row, got %d", len(audit))
	}
	if audit[0].WouldRecommend != entities.Unpublish {
		t.Errorf("Expected Unpublish, got %s", audit[0].WouldRecommend)
	}
	if audit[0].InventoryPct != 100 {
		t.Errorf("Expected inventory %% 100, got %v", audit[0].InventoryPct)
	}
}

func TestAnalyzer_AuditNoActiveStores(t *testing.T) {
	inventory, status, products, _ := coverageCase(1, 1, true, "Active", "Store")

	audit := NewAnalyzer().Audit(inventory, status, products, nil)

	if audit == nil || len(audit) != 0 {
		t.Errorf("Expected empty audit, got %#v", audit)
	}
}

func TestAnalyzer_NeverRecommendsPublishTemp(t *testing.T) {
	analyzer := NewAnalyzer()
	for _, status := range []string{"Active", "Inactive", "Discontinued"} {
		for _, published := range []bool{true, false} {
			for stocked := 0; stocked <= 10; stocked++ {
				inventory, st, products, stores := coverageCase(stocked, 10, published, status, "Both")
				output := analyzer.Analyze(inventory, st, products, stores)
				if output.Results[0].Recommendation == entities.PublishTemp {
					t.Fatalf("Publish - TEMP returned for status=%s published=%v stocked=%d", status, published, stocked)
				}
			}
		}
	}
}
