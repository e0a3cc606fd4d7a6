package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
	apperrors "github.com/vsinha/pluanalyzer/pkg/shared/errors"
)

const utf8BOM = "\ufeff"

var serialPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

// FileKind identifies one of the four input files
type FileKind int

const (
	PlantFile FileKind = iota
	InventoryFile
	StatusFile
	ProductFile
)

// String method for FileKind enum
func (k FileKind) String() string {
	switch k {
	case PlantFile:
		return "plant"
	case InventoryFile:
		return "inventory"
	case StatusFile:
		return "status"
	case ProductFile:
		return "product"
	default:
		return "unknown"
	}
}

// column describes one expected header; aliases are accepted in place of the name
type column struct {
	name     string
	aliases  []string
	optional bool
}

var schemas = map[FileKind][]column{
	PlantFile: {
		{name: "SITE_NUMBER"},
		{name: "REGION"},
		{name: "ORGANIZATION_NUMBER"},
		{name: "OPEN_DATE"},
		{name: "CLOSE_DATE"},
		{name: "SITE_DESCRIPTION", optional: true},
	},
	InventoryFile: {
		{name: "sku"},
		{name: "availableQuantity"},
		{name: "supplyChannel.key", aliases: []string{"supplyChannel_key", "supply_channel_key", "supplyChannel"}},
	},
	StatusFile: {
		{name: "key"},
		{name: "published"},
	},
	ProductFile: {
		{name: "SKU_NUMBER"},
		{name: "STATUS_IN_SAP"},
		{name: "AVAILABLE_IN_CHANNEL"},
		{name: "SKU_DESCRIPTION", optional: true},
	},
}

// RequiredColumns lists the mandatory headers of a file kind
func RequiredColumns(kind FileKind) []string {
	var names []string
	for _, c := range schemas[kind] {
		if !c.optional {
			names = append(names, c.name)
		}
	}
	return names
}

// Loader parses the four CSV inputs into typed records
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// table is a parsed file with headers resolved to canonical column names
type table struct {
	index map[string]int
	rows  [][]string
}

func (t *table) cell(row []string, name string) string {
	i, ok := t.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (t *table) trimmed(row []string, name string) string {
	return strings.TrimSpace(t.cell(row, name))
}

// readTable validates the header and returns the data rows.
// Failures are validation errors carrying the message shown to users.
func readTable(r io.Reader, kind FileKind) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Parse error: %v", err))
	}

	var header []string
	var rows [][]string
	for _, record := range records {
		if isBlank(record) {
			continue
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("File is empty")
	}

	positions := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, utf8BOM)))
		if _, dup := positions[h]; !dup {
			positions[h] = i
		}
	}

	t := &table{index: make(map[string]int), rows: rows}
	var missing []string
	for _, c := range schemas[kind] {
		found := false
		for _, candidate := range append([]string{c.name}, c.aliases...) {
			if i, ok := positions[strings.ToLower(candidate)]; ok {
				t.index[c.name] = i
				found = true
				break
			}
		}
		if !found && !c.optional {
			missing = append(missing, c.name)
		}
	}

	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", ")))
	}

	return t, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// LoadPlants parses the plant master
func (l *Loader) LoadPlants(r io.Reader) ([]entities.PlantRecord, error) {
	t, err := readTable(r, PlantFile)
	if err != nil {
		return nil, err
	}

	plants := make([]entities.PlantRecord, 0, len(t.rows))
	for _, row := range t.rows {
		plants = append(plants, entities.PlantRecord{
			SiteNumber:         t.trimmed(row, "SITE_NUMBER"),
			Region:             t.trimmed(row, "REGION"),
			OrganizationNumber: t.trimmed(row, "ORGANIZATION_NUMBER"),
			OpenDate:           parseDateCell(t.trimmed(row, "OPEN_DATE")),
			CloseDate:          parseDateCell(t.trimmed(row, "CLOSE_DATE")),
			SiteDescription:    t.trimmed(row, "SITE_DESCRIPTION"),
		})
	}
	return plants, nil
}

// LoadInventory parses the inventory feed
func (l *Loader) LoadInventory(r io.Reader) ([]entities.InventoryRecord, error) {
	t, err := readTable(r, InventoryFile)
	if err != nil {
		return nil, err
	}

	inventory := make([]entities.InventoryRecord, 0, len(t.rows))
	for _, row := range t.rows {
		inventory = append(inventory, entities.InventoryRecord{
			SKU:               t.trimmed(row, "sku"),
			AvailableQuantity: parseQuantity(t.trimmed(row, "availableQuantity")),
			SupplyChannelKey:  t.trimmed(row, "supplyChannel.key"),
		})
	}
	return inventory, nil
}

// LoadStatus parses the publish status feed
func (l *Loader) LoadStatus(r io.Reader) ([]entities.StatusRecord, error) {
	t, err := readTable(r, StatusFile)
	if err != nil {
		return nil, err
	}

	status := make([]entities.StatusRecord, 0, len(t.rows))
	for _, row := range t.rows {
		status = append(status, entities.StatusRecord{
			Key:       t.trimmed(row, "key"),
			Published: strings.EqualFold(t.trimmed(row, "published"), "true"),
		})
	}
	return status, nil
}

// LoadProducts parses the product master
func (l *Loader) LoadProducts(r io.Reader) ([]entities.ProductRecord, error) {
	t, err := readTable(r, ProductFile)
	if err != nil {
		return nil, err
	}

	products := make([]entities.ProductRecord, 0, len(t.rows))
	for _, row := range t.rows {
		products = append(products, entities.ProductRecord{
			SKUNumber:          t.trimmed(row, "SKU_NUMBER"),
			StatusInSAP:        t.trimmed(row, "STATUS_IN_SAP"),
			SKUDescription:     t.cell(row, "SKU_DESCRIPTION"),
			AvailableInChannel: t.cell(row, "AVAILABLE_IN_CHANNEL"),
		})
	}
	return products, nil
}

// LoadPlantsFile loads the plant master from a file
func (l *Loader) LoadPlantsFile(filename string) ([]entities.PlantRecord, error) {
	return loadFile(filename, PlantFile, l.LoadPlants)
}

// LoadInventoryFile loads the inventory feed from a file
func (l *Loader) LoadInventoryFile(filename string) ([]entities.InventoryRecord, error) {
	return loadFile(filename, InventoryFile, l.LoadInventory)
}

// LoadStatusFile loads the status feed from a file
func (l *Loader) LoadStatusFile(filename string) ([]entities.StatusRecord, error) {
	return loadFile(filename, StatusFile, l.LoadStatus)
}

// LoadProductsFile loads the product master from a file
func (l *Loader) LoadProductsFile(filename string) ([]entities.ProductRecord, error) {
	return loadFile(filename, ProductFile, l.LoadProducts)
}

func loadFile[T any](filename string, kind FileKind, load func(io.Reader) ([]T, error)) ([]T, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	records, err := load(file)
	if err != nil {
		return nil, fmt.Errorf("%s file %s: %w", kind, filename, err)
	}
	return records, nil
}

// parseQuantity treats anything that is not a finite number as zero
func parseQuantity(s string) float64 {
	if s == "" {
		return 0
	}
	qty, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return 0
	}
	return qty
}

func parseDateCell(s string) entities.DateCell {
	if serialPattern.MatchString(s) {
		if serial, err := strconv.ParseFloat(s, 64); err == nil {
			return entities.SerialDate(serial)
		}
	}
	return entities.TextDate(s)
}
