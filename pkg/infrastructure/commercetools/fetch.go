package commercetools

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

// Fetch steps reported through Progress
const (
	StepAuth      = "auth"
	StepChannels  = "channels"
	StepProducts  = "products"
	StepInventory = "inventory"
)

// Progress is one step update of a running fetch
type Progress struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// Dataset is the session-ready result of a full fetch
type Dataset struct {
	Status       []entities.StatusRecord    `json:"status"`
	Inventory    []entities.InventoryRecord `json:"inventory"`
	ChannelCount int                        `json:"channelCount"`
	Requests     RequestSummary             `json:"subrequests"`
}

// ToStatusRecords maps products to publication status records keyed by SKU
func ToStatusRecords(products []ProductInfo) []entities.StatusRecord {
	records := make([]entities.StatusRecord, len(products))
	for i, p := range products {
		records[i] = entities.StatusRecord{Key: p.SKU, Published: p.Published}
	}
	return records
}

// ToInventoryRecords maps resolved inventory entries to inventory records
func ToInventoryRecords(inventory []InventoryInfo) []entities.InventoryRecord {
	records := make([]entities.InventoryRecord, len(inventory))
	for i, e := range inventory {
		records[i] = entities.InventoryRecord{
			SKU:               e.SKU,
			AvailableQuantity: e.AvailableQuantity,
			SupplyChannelKey:  e.SupplyChannel,
		}
	}
	return records
}

// Fetch authenticates, then reads channels, US products and their inventory.
// progress may be nil. Calls are recorded in log, which must not be shared between fetches.
func (c *Client) Fetch(ctx context.Context, log *RequestLog, progress func(Progress)) (*Dataset, error) {
	report := func(step, message string, percent int) {
		if progress != nil {
			progress(Progress{Step: step, Message: message, Percent: percent})
		}
	}

	start := time.Now()
	defer func() { c.metrics.ObserveFetch(time.Since(start)) }()

	c.logger.Info("starting storefront fetch")

	report(StepAuth, "Authenticating with CommerceTools...", 5)
	if err := c.Authenticate(ctx, log); err != nil {
		return nil, err
	}

	report(StepChannels, "Fetching supply channels...", 10)
	channels, err := c.FetchChannels(ctx, log)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels: %w", err)
	}
	report(StepChannels, fmt.Sprintf("Found %d supply channels", len(channels)), 15)

	report(StepProducts, "Fetching US products...", 20)
	products, err := c.FetchProducts(ctx, log, func(p FetchProgress) {
		percent := 50
		if p.Total > 0 {
			percent = min(20+p.Fetched*30/p.Total, 50)
		}
		report(StepProducts, fmt.Sprintf("Fetching products: %d/%d", p.Fetched, p.Total), percent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	report(StepProducts, fmt.Sprintf("Found %d US product SKUs", len(products)), 50)

	skus := SKUs(products)
	report(StepInventory, fmt.Sprintf("Fetching inventory for %d SKUs...", len(skus)), 55)
	inventory, err := c.FetchInventory(ctx, log, skus, channels, func(p BatchProgress) {
		percent := min(55+p.Completed*40/p.Total, 95)
		report(StepInventory, fmt.Sprintf("Fetching inventory: batch %d/%d", p.Completed, p.Total), percent)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	summary := log.Summary()
	c.logger.Info("storefront fetch complete",
		"channels", len(channels),
		"status_records", len(products),
		"inventory_records", len(inventory),
		"subrequests", summary.Total,
		"duration", time.Since(start),
	)

	return &Dataset{
		Status:       ToStatusRecords(products),
		Inventory:    ToInventoryRecords(inventory),
		ChannelCount: len(channels),
		Requests:     summary,
	}, nil
}
