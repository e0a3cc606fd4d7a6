package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// FilteredOutColumns are the columns of the ecom-ineligible and audit exports
var FilteredOutColumns = []string{
	"PLU",
	"Description",
	"SAP Status",
	"Published",
	"Inventory %",
	"Available In Channel",
	"Would Recommend",
}

// ResultColumns returns the results export header with one inventory column per DS location
func ResultColumns(dsLocations []string) []string {
	columns := []string{
		"PLU",
		"Description",
		"SAP Status",
		"Published",
		"Inventory %",
		"Stores w/ Inventory",
		"Total Active Stores",
	}
	for _, loc := range dsLocations {
		columns = append(columns, "Inv "+loc)
	}
	return append(columns, "Recommendation")
}

// WriteResultsCSV writes results as CSV; an empty list produces no output
func WriteResultsCSV(w io.Writer, results []entities.AnalysisResult, dsLocations []string) error {
	if len(results) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ResultColumns(dsLocations)); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			string(r.PLU),
			r.Description,
			r.SAPStatus,
			yesNo(r.Published),
			formatNumber(r.InventoryPct),
			strconv.Itoa(r.StoresWithInventory),
			strconv.Itoa(r.TotalActiveStores),
		}
		for _, loc := range dsLocations {
			row = append(row, formatNumber(dsQuantity(r.DSInventory, loc)))
		}
		row = append(row, r.Recommendation.String())
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFilteredOutCSV writes ecom-ineligible or audit rows as CSV; an empty list produces no output
func WriteFilteredOutCSV(w io.Writer, rows []entities.FilteredOutResult) error {
	if len(rows) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(FilteredOutColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			string(r.PLU),
			r.Description,
			r.SAPStatus,
			yesNo(r.Published),
			formatNumber(r.InventoryPct),
			r.AvailableInChannel,
			r.WouldRecommend.String(),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func dsQuantity(quantities []entities.LocationQuantity, loc string) float64 {
	for _, q := range quantities {
		if q.Location == loc {
			return q.Quantity
		}
	}
	return 0
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
