package entities

import "fmt"

// NoChannel is the supply channel key used when an inventory entry carries no channel
const NoChannel = "No Channel"

// InventoryRecord represents the available quantity of one SKU at one supply channel
type InventoryRecord struct {
	SKU               string  `json:"sku"`
	AvailableQuantity float64 `json:"availableQuantity"`
	SupplyChannelKey  string  `json:"supplyChannel.key"`
}

// NewInventoryRecord creates a validated InventoryRecord
func NewInventoryRecord(sku string, availableQuantity float64, supplyChannelKey string) (*InventoryRecord, error) {
	if sku == "" {
		return nil, fmt.Errorf("sku cannot be empty")
	}
	if supplyChannelKey == "" {
		return nil, fmt.Errorf("supply channel key cannot be empty")
	}

	return &InventoryRecord{
		SKU:               sku,
		AvailableQuantity: availableQuantity,
		SupplyChannelKey:  supplyChannelKey,
	}, nil
}

// InStock reports whether the record carries a positive available quantity
func (r InventoryRecord) InStock() bool {
	return r.AvailableQuantity > 0
}

// StatusRecord represents the publish state of one SKU on the storefront
type StatusRecord struct {
	Key       string `json:"key"`
	Published bool   `json:"published"`
}

// LocationQuantity is the aggregated available quantity of a SKU at a single location
type LocationQuantity struct {
	Location string  `json:"location"`
	Quantity float64 `json:"quantity"`
}
