package commercetools

import (
	"context"
	"encoding/json"
	"sort"
)

const (
	productPageLimit = 500
	usProductsWhere  = `variants(attributes(name="country" and value(key="US"))) or masterVariant(attributes(name="country" and value(key="US")))`
)

// ProductInfo is one sellable SKU with its publication state
type ProductInfo struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Published bool   `json:"published"`
}

type attribute struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

type variant struct {
	SKU        string       `json:"sku"`
	Attributes *[]attribute `json:"attributes"`
}

type productProjection struct {
	ID            string            `json:"id"`
	Name          map[string]string `json:"name"`
	Published     bool              `json:"published"`
	MasterVariant variant           `json:"masterVariant"`
	Variants      []variant         `json:"variants"`
}

// FetchProgress reports how many items of a paged listing have been read
type FetchProgress struct {
	Fetched int
	Total   int
}

func (p productProjection) displayName() string {
	locales := make([]string, 0, len(p.Name))
	for locale := range p.Name {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if p.Name[locale] != "" {
			return p.Name[locale]
		}
	}
	return "Unknown"
}

// sellsInUS is true when the variant is tagged country=US or carries no attributes at all
func (v variant) sellsInUS() bool {
	if v.Attributes == nil {
		return true
	}
	for _, attr := range *v.Attributes {
		if attr.Name != "country" {
			continue
		}
		var value struct {
			Key string `json:"key"`
		}
		if json.Unmarshal(attr.Value, &value) == nil && value.Key == "US" {
			return true
		}
	}
	return false
}

// skus returns the master SKU and every qualifying variant SKU
func (p productProjection) skus() []string {
	var skus []string
	if p.MasterVariant.SKU != "" {
		skus = append(skus, p.MasterVariant.SKU)
	}
	for _, v := range p.Variants {
		if v.SKU != "" && v.sellsInUS() {
			skus = append(skus, v.SKU)
		}
	}
	return skus
}

// FetchProducts lists the US product SKUs, staged products included
func (c *Client) FetchProducts(ctx context.Context, log *RequestLog, onProgress func(FetchProgress)) ([]ProductInfo, error) {
	var products []ProductInfo
	query := map[string]string{
		"where":  usProductsWhere,
		"staged": "true",
	}

	err := paginate(ctx, c, log, ModuleProducts, "/product-projections", query, productPageLimit,
		func(results []productProjection, fetched, total int) {
			for _, p := range results {
				name := p.displayName()
				for _, sku := range p.skus() {
					products = append(products, ProductInfo{SKU: sku, Name: name, Published: p.Published})
				}
			}
			if onProgress != nil {
				onProgress(FetchProgress{Fetched: fetched, Total: total})
			}
		})
	if err != nil {
		return nil, err
	}
	return products, nil
}

// SKUs extracts the SKU of every product
func SKUs(products []ProductInfo) []string {
	skus := make([]string, len(products))
	for i, p := range products {
		skus[i] = p.SKU
	}
	return skus
}
