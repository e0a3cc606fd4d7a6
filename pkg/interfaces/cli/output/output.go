package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/application/dto"
	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// Config holds configuration for output generation
type Config struct {
	Format      string
	OutputDir   string
	Verbose     bool
	Filter      entities.RecommendationFilter
	DSLocations []string
	Elapsed     time.Duration
	InputFiles  map[string]string
	Stdout      io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate renders the report in the configured format
func Generate(report *dto.Report, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// ResultsFileName names the results export; the filter is appended unless it is All
func ResultsFileName(date time.Time, filter entities.RecommendationFilter) string {
	suffix := ""
	if filter != "" && filter != entities.FilterAll {
		suffix = "_" + strings.ToLower(string(filter))
	}
	return fmt.Sprintf("plu_analysis_%s%s.csv", date.Format(time.DateOnly), suffix)
}

// FilteredOutFileName names the ecom-ineligible export
func FilteredOutFileName(date time.Time) string {
	return fmt.Sprintf("plu_ecom_ineligible_%s.csv", date.Format(time.DateOnly))
}

// AuditFileName names the channel audit export
func AuditFileName(date time.Time) string {
	return fmt.Sprintf("plu_channel_audit_%s.csv", date.Format(time.DateOnly))
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report *dto.Report, config Config) error {
	var buf bytes.Buffer
	writeText(&buf, report, config)

	if _, err := config.stdout().Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}

	if config.OutputDir != "" {
		name := fmt.Sprintf("plu_analysis_%s.txt", report.GeneratedAt.Format(time.DateOnly))
		filename, err := writeFile(config.OutputDir, name, buf.Bytes())
		if err != nil {
			return err
		}
		if config.Verbose {
			fmt.Fprintf(config.stdout(), "💾 Results saved to: %s\n", filename)
		}
	}
	return nil
}

func writeText(w io.Writer, report *dto.Report, config Config) {
	fmt.Fprintf(w, "📊 PLU Analysis Summary\n")
	fmt.Fprintf(w, "=======================\n\n")

	if report.Summary.Error != "" {
		fmt.Fprintf(w, "⚠️  %s\n", report.Summary.Error)
		return
	}

	fmt.Fprintf(w, "Active Stores: %d\n", report.Summary.ActiveStores)
	fmt.Fprintf(w, "PLUs Analyzed: %d\n", report.Summary.TotalPLUs)
	fmt.Fprintf(w, "To Publish: %d\n", report.Summary.ToPublish)
	fmt.Fprintf(w, "To Unpublish: %d\n", report.Summary.ToUnpublish)
	fmt.Fprintf(w, "No Action: %d\n", report.Summary.NoAction)
	if config.Elapsed > 0 {
		fmt.Fprintf(w, "Analysis Time: %v\n", config.Elapsed)
	}
	if config.Verbose {
		for _, kind := range []string{"plants", "inventory", "status", "product"} {
			if name, ok := config.InputFiles[kind]; ok && name != "" {
				fmt.Fprintf(w, "Input (%s): %s\n", kind, name)
			}
		}
	}
	fmt.Fprintln(w)

	filter := config.Filter
	if filter == "" {
		filter = entities.DefaultRecommendationFilter
	}
	results := report.FilterResults(filter)

	if len(results) > 0 {
		fmt.Fprintf(w, "📋 Recommendations (%s):\n", filter)
		fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-8s %-15s\n",
			"PLU", "Description", "SAP Status", "Published", "Inventory", "Stores", "Recommendation")
		fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-8s %-15s\n",
			"------", "------------------------------", "--------------", "---------", "----------", "--------", "---------------")
		for _, r := range results {
			fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-8s %-15s\n",
				r.PLU,
				truncate(r.Description, 30),
				truncate(r.SAPStatus, 14),
				yesNo(r.Published),
				formatNumber(r.InventoryPct)+"%",
				fmt.Sprintf("%d/%d", r.StoresWithInventory, r.TotalActiveStores),
				r.Recommendation)
		}
		fmt.Fprintln(w)
	}

	writeFilteredText(w, "🚫 Ecom Ineligible (action suppressed):", report.FilteredOut)
	writeFilteredText(w, "🔍 Store-only but Published:", report.Audit)
}

func writeFilteredText(w io.Writer, title string, rows []entities.FilteredOutResult) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, title)
	fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-10s %-15s\n",
		"PLU", "Description", "SAP Status", "Published", "Inventory", "Channel", "Would Recommend")
	fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-10s %-15s\n",
		"------", "------------------------------", "--------------", "---------", "----------", "----------", "---------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-6s %-30s %-14s %-9s %-10s %-10s %-15s\n",
			r.PLU,
			truncate(r.Description, 30),
			truncate(r.SAPStatus, 14),
			yesNo(r.Published),
			formatNumber(r.InventoryPct)+"%",
			truncate(r.AvailableInChannel, 10),
			r.WouldRecommend)
	}
	fmt.Fprintln(w)
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report *dto.Report, config Config) error {
	filter := config.Filter
	if filter == "" {
		filter = entities.DefaultRecommendationFilter
	}
	filtered := *report
	filtered.Results = report.FilterResults(filter)

	jsonData, err := json.MarshalIndent(&filtered, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.stdout(), string(jsonData))
		return err
	}

	name := fmt.Sprintf("plu_analysis_%s.json", report.GeneratedAt.Format(time.DateOnly))
	filename, err := writeFile(config.OutputDir, name, jsonData)
	if err != nil {
		return err
	}
	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes the results, ecom-ineligible and audit exports
func generateCSVOutput(report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory required for CSV format")
	}

	filter := config.Filter
	if filter == "" {
		filter = entities.DefaultRecommendationFilter
	}

	var results, filteredOut, audit bytes.Buffer
	if err := WriteResultsCSV(&results, report.FilterResults(filter), config.DSLocations); err != nil {
		return fmt.Errorf("failed to write results CSV: %w", err)
	}
	if err := WriteFilteredOutCSV(&filteredOut, report.FilteredOut); err != nil {
		return fmt.Errorf("failed to write ecom ineligible CSV: %w", err)
	}
	if err := WriteFilteredOutCSV(&audit, report.Audit); err != nil {
		return fmt.Errorf("failed to write channel audit CSV: %w", err)
	}

	date := report.GeneratedAt
	files := []struct {
		name string
		data []byte
	}{
		{ResultsFileName(date, filter), results.Bytes()},
		{FilteredOutFileName(date), filteredOut.Bytes()},
		{AuditFileName(date), audit.Bytes()},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		filename, err := writeFile(config.OutputDir, f.name, f.data)
		if err != nil {
			return err
		}
		written = append(written, filename)
	}

	if config.Verbose {
		fmt.Fprintf(config.stdout(), "💾 CSV results saved to:\n")
		fmt.Fprintf(config.stdout(), "  Results: %s\n", written[0])
		fmt.Fprintf(config.stdout(), "  Ecom Ineligible: %s\n", written[1])
		fmt.Fprintf(config.stdout(), "  Channel Audit: %s\n", written[2])
	}
	return nil
}

func writeFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(dir, name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
