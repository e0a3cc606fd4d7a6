package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

var reportDate = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func sampleReport() *dto.Report {
	return &dto.Report{
		Results: []entities.AnalysisResult{
			{
				PLU: "4011", Description: "Bananas, Organic", SAPStatus: "Active",
				Published: false, InventoryPct: 95.5, StoresWithInventory: 191, TotalActiveStores: 200,
				DSInventory: []entities.LocationQuantity{
					{Location: "9801", Quantity: 120},
					{Location: "9803", Quantity: 12.5},
				},
				Recommendation: entities.Publish,
			},
			{
				PLU: "4033", Description: `Limes "Persian"`, SAPStatus: "Active",
				Published: true, InventoryPct: 70, StoresWithInventory: 140, TotalActiveStores: 200,
				DSInventory: []entities.LocationQuantity{
					{Location: "9801", Quantity: 0},
					{Location: "9803", Quantity: 0},
				},
				Recommendation: entities.NoAction,
			},
		},
		FilteredOut: []entities.FilteredOutResult{
			{PLU: "4044", Description: "Kale", SAPStatus: "Active", InventoryPct: 100, AvailableInChannel: "Store", WouldRecommend: entities.Publish},
		},
		Audit: []entities.FilteredOutResult{
			{PLU: "4055", Description: "Figs", SAPStatus: "Inactive", Published: true, InventoryPct: 0, AvailableInChannel: "Store", WouldRecommend: entities.Unpublish},
		},
		Summary: entities.AnalysisSummary{
			TotalPLUs: 2, ToPublish: 1, NoAction: 1, ActiveStores: 200,
		},
		ActiveStores: []string{"1001"},
		GeneratedAt:  reportDate,
	}
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, sampleReport().Results, []string{"9801", "9803"}); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	expected := strings.Join([]string{
		"PLU,Description,SAP Status,Published,Inventory %,Stores w/ Inventory,Total Active Stores,Inv 9801,Inv 9803,Recommendation",
		`4011,"Bananas, Organic",Active,No,95.5,191,200,120,12.5,Publish`,
		`4033,"Limes ""Persian""",Active,Yes,70,140,200,0,0,No Action`,
		"",
	}, "\n")
	if buf.String() != expected {
		t.Errorf("Expected CSV:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestWriteFilteredOutCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFilteredOutCSV(&buf, sampleReport().Audit); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}

	expected := "PLU,Description,SAP Status,Published,Inventory %,Available In Channel,Would Recommend\n" +
		"4055,Figs,Inactive,Yes,0,Store,Unpublish\n"
	if buf.String() != expected {
		t.Errorf("Expected CSV:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestCSVWriters_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResultsCSV(&buf, nil, []string{"9801"}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := WriteFilteredOutCSV(&buf, []entities.FilteredOutResult{}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected empty output, got %q", buf.String())
	}
}

func TestFileNames(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"all results", ResultsFileName(reportDate, entities.FilterAll), "plu_analysis_2024-06-01.csv"},
		{"action results", ResultsFileName(reportDate, entities.FilterAction), "plu_analysis_2024-06-01_action.csv"},
		{"unpublish results", ResultsFileName(reportDate, entities.RecommendationFilter(entities.Unpublish)), "plu_analysis_2024-06-01_unpublish.csv"},
		{"ecom ineligible", FilteredOutFileName(reportDate), "plu_ecom_ineligible_2024-06-01.csv"},
		{"channel audit", AuditFileName(reportDate), "plu_channel_audit_2024-06-01.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, tt.got)
			}
		})
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(sampleReport(), Config{Format: "text", Filter: entities.FilterAction, Stdout: &buf})
	if err != nil {
		t.Fatalf("Failed to generate text: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Active Stores: 200", "To Publish: 1", "4011", "4044", "4055", "191/200", "95.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected text output to contain %q:\n%s", want, out)
		}
	}
	// No Action rows are hidden by the Action filter
	if strings.Contains(out, "4033") {
		t.Errorf("Expected 4033 to be filtered out:\n%s", out)
	}
}

func TestGenerate_TextNoActiveStores(t *testing.T) {
	var buf bytes.Buffer
	report := &dto.Report{Summary: entities.AnalysisSummary{Error: entities.NoActiveStoresError}, GeneratedAt: reportDate}
	if err := Generate(report, Config{Format: "text", Stdout: &buf}); err != nil {
		t.Fatalf("Failed to generate text: %v", err)
	}
	if !strings.Contains(buf.String(), entities.NoActiveStoresError) {
		t.Errorf("Expected error message in output, got:\n%s", buf.String())
	}
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(sampleReport(), Config{Format: "json", Filter: entities.FilterAll, Stdout: &buf})
	if err != nil {
		t.Fatalf("Failed to generate JSON: %v", err)
	}

	var decoded struct {
		Results []map[string]any `json:"results"`
		Summary map[string]any   `json:"summary"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON output: %v", err)
	}
	if len(decoded.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(decoded.Results))
	}
	if decoded.Results[0]["Inventory %"] != 95.5 {
		t.Errorf("Expected Inventory %% 95.5, got %v", decoded.Results[0]["Inventory %"])
	}
	if decoded.Summary["to_publish"] != float64(1) {
		t.Errorf("Expected to_publish 1, got %v", decoded.Summary["to_publish"])
	}
}

func TestGenerate_CSVWritesThreeFiles(t *testing.T) {
	dir := t.TempDir()
	err := Generate(sampleReport(), Config{
		Format:      "csv",
		OutputDir:   dir,
		Filter:      entities.FilterAction,
		DSLocations: []string{"9801", "9803"},
		Stdout:      &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Failed to generate CSV: %v", err)
	}

	results, err := os.ReadFile(filepath.Join(dir, "plu_analysis_2024-06-01_action.csv"))
	if err != nil {
		t.Fatalf("Expected results file: %v", err)
	}
	if lines := strings.Count(string(results), "\n"); lines != 2 {
		t.Errorf("Expected header and 1 action row, got %d lines", lines)
	}

	for _, name := range []string{"plu_ecom_ineligible_2024-06-01.csv", "plu_channel_audit_2024-06-01.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s to exist: %v", name, err)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	if err := Generate(sampleReport(), Config{Format: "csv"}); err == nil {
		t.Errorf("Expected error for CSV without output directory")
	}
	if err := Generate(sampleReport(), Config{Format: "xml"}); err == nil {
		t.Errorf("Expected error for unsupported format")
	}
}
