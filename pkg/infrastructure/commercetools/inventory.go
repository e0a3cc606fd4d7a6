package commercetools

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vsinha/pluanalyzer/pkg/domain/entities"
)

const inventoryPageLimit = 500

// InventoryInfo is one inventory entry with its channel resolved to a display key
type InventoryInfo struct {
	SKU               string  `json:"sku"`
	SupplyChannel     string  `json:"supplyChannel"`
	QuantityOnStock   float64 `json:"quantityOnStock"`
	AvailableQuantity float64 `json:"availableQuantity"`
}

type inventoryEntry struct {
	SKU           string `json:"sku"`
	SupplyChannel *struct {
		ID string `json:"id"`
	} `json:"supplyChannel"`
	QuantityOnStock   float64 `json:"quantityOnStock"`
	AvailableQuantity float64 `json:"availableQuantity"`
}

// BatchProgress reports completed inventory batches
type BatchProgress struct {
	Completed int
	Total     int
}

// skuPredicate builds the `sku in (...)` filter for a batch
func skuPredicate(skus []string) string {
	quoted := make([]string, len(skus))
	for i, sku := range skus {
		quoted[i] = `"` + strings.ReplaceAll(sku, `"`, `\"`) + `"`
	}
	return "sku in (" + strings.Join(quoted, ",") + ")"
}

// batch splits skus into consecutive slices of at most size elements
func batch(skus []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(skus); start += size {
		end := min(start+size, len(skus))
		batches = append(batches, skus[start:end])
	}
	return batches
}

// FetchInventory reads inventory for skus in concurrent batches.
// Entries come back grouped by batch in input order.
func (c *Client) FetchInventory(
	ctx context.Context,
	log *RequestLog,
	skus []string,
	channels ChannelMap,
	onProgress func(BatchProgress),
) ([]InventoryInfo, error) {
	if len(skus) == 0 {
		return []InventoryInfo{}, nil
	}

	batches := batch(skus, c.cfg.BatchSize)
	results := make([][]InventoryInfo, len(batches))

	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, skuBatch := range batches {
		i, skuBatch := i, skuBatch
		g.Go(func() error {
			entries, err := c.fetchInventoryBatch(gctx, log, skuBatch, channels)
			if err != nil {
				return err
			}
			results[i] = entries

			mu.Lock()
			completed++
			if onProgress != nil {
				onProgress(BatchProgress{Completed: completed, Total: len(batches)})
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	inventory := make([]InventoryInfo, 0, len(skus))
	for _, entries := range results {
		inventory = append(inventory, entries...)
	}
	return inventory, nil
}

func (c *Client) fetchInventoryBatch(ctx context.Context, log *RequestLog, skus []string, channels ChannelMap) ([]InventoryInfo, error) {
	var inventory []InventoryInfo
	query := map[string]string{"where": skuPredicate(skus)}

	err := paginate(ctx, c, log, ModuleInventory, "/inventory", query, inventoryPageLimit,
		func(results []inventoryEntry, _, _ int) {
			for _, e := range results {
				supplyChannel := entities.NoChannel
				if e.SupplyChannel != nil {
					supplyChannel = e.SupplyChannel.ID
					if name, ok := channels[e.SupplyChannel.ID]; ok {
						supplyChannel = name
					}
				}
				inventory = append(inventory, InventoryInfo{
					SKU:               e.SKU,
					SupplyChannel:     supplyChannel,
					QuantityOnStock:   e.QuantityOnStock,
					AvailableQuantity: e.AvailableQuantity,
				})
			}
		})
	if err != nil {
		return nil, err
	}
	return inventory, nil
}
