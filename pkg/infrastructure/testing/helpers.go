package testing

import (
	"strconv"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// Inventory builds an inventory record for tests
func Inventory(sku string, qty float64, channel string) entities.InventoryRecord {
	return entities.InventoryRecord{SKU: sku, AvailableQuantity: qty, SupplyChannelKey: channel}
}

// Status builds a status record for tests
func Status(key string, published bool) entities.StatusRecord {
	return entities.StatusRecord{Key: key, Published: published}
}

// Product builds a product master row for tests
func Product(sku, sapStatus, description, channel string) entities.ProductRecord {
	return entities.ProductRecord{
		SKUNumber:          sku,
		StatusInSAP:        sapStatus,
		SKUDescription:     description,
		AvailableInChannel: channel,
	}
}

// OpenPlant builds a plant row that passes the default store rules
func OpenPlant(site string) entities.PlantRecord {
	return entities.PlantRecord{
		SiteNumber:         site,
		Region:             "West",
		OrganizationNumber: "9000",
		OpenDate:           entities.TextDate("2020-01-01"),
		SiteDescription:    "Store " + site,
	}
}

// ClosedPlant builds a plant row that the default store rules reject
func ClosedPlant(site string) entities.PlantRecord {
	p := OpenPlant(site)
	p.CloseDate = entities.TextDate("2022-06-30")
	return p
}

// StoreNumbers returns n site numbers starting at 1001
func StoreNumbers(n int) []string {
	stores := make([]string, n)
	for i := range stores {
		stores[i] = strconv.Itoa(1001 + i)
	}
	return stores
}

// StockedAt returns one in-stock inventory row for sku at each of the given stores
func StockedAt(sku string, stores ...string) []entities.InventoryRecord {
	rows := make([]entities.InventoryRecord, 0, len(stores))
	for _, store := range stores {
		rows = append(rows, Inventory(sku, 5, store))
	}
	return rows
}

// SampleSession is a small but realistic data set covering every recommendation path
type SampleSession struct {
	Plants    []entities.PlantRecord
	Inventory []entities.InventoryRecord
	Status    []entities.StatusRecord
	Products  []entities.ProductRecord
}

// BuildSampleSession returns ten open stores, one closed store and products in every category
func BuildSampleSession() SampleSession {
	stores := StoreNumbers(10)

	plants := make([]entities.PlantRecord, 0, len(stores)+2)
	for _, s := range stores {
		plants = append(plants, OpenPlant(s))
	}
	plants = append(plants, ClosedPlant("1999"), OpenPlant(stores[0]))

	var inventory []entities.InventoryRecord
	// 4011: stocked everywhere, unpublished, active -> Publish
	inventory = append(inventory, StockedAt("4011", stores...)...)
	// 4022: stocked at 3 of 10, published, discontinued -> Unpublish
	inventory = append(inventory, StockedAt("4022", stores[:3]...)...)
	// 4033: stocked at 5 of 10, unpublished, active -> No Action
	inventory = append(inventory, StockedAt("4033", stores[:5]...)...)
	// 4044: store-only but otherwise Publish -> filtered out
	inventory = append(inventory, StockedAt("4044", stores...)...)
	// DS locations
	inventory = append(inventory,
		Inventory("4011", 120, "9801"),
		Inventory("4011", 30, "9803"),
		Inventory("4011", 10, "9803"),
		Inventory("4011", 7, "1999"),
	)

	return SampleSession{
		Plants:    plants,
		Inventory: inventory,
		Status: []entities.StatusRecord{
			Status("4011", false),
			Status("4022", true),
			Status("4033", false),
			Status("4044", false),
			Status("4055", true),
		},
		Products: []entities.ProductRecord{
			Product("4011", "Active", "4011 - Bananas", "Both"),
			Product("4022", "Discontinued", "4022 - Lemons", "Ecom"),
			Product("4033", "Active", "4033 - Limes", "Both"),
			Product("4044", "Active", "4044 - Kale", "Store"),
			Product("4055", "Inactive", "4055 - Figs", "Store"),
			Product("4011", "Inactive", "4011 - Duplicate", "Store"),
			Product("SKU-1", "Active", "Not a PLU", "Both"),
		},
	}
}

// Clock returns a fixed clock for deterministic date filtering
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
