package entities

import (
	"regexp"
	"strings"
)

var pluPattern = regexp.MustCompile(`^\d{4}$`)

// Channel values carried in the product master's AVAILABLE_IN_CHANNEL column
const (
	ChannelBoth  = "Both"
	ChannelEcom  = "Ecom"
	ChannelStore = "Store"
)

// descriptionPrefixLen is the length of the legacy "NNNN - " prefix on SKU descriptions
const descriptionPrefixLen = 7

// PLU represents a 4-digit price look-up code
type PLU string

// IsValid reports whether the PLU is exactly four decimal digits
func (p PLU) IsValid() bool {
	return pluPattern.MatchString(string(p))
}

// ProductRecord represents one row of the product master
type ProductRecord struct {
	SKUNumber          string `json:"SKU_NUMBER"`
	StatusInSAP        string `json:"STATUS_IN_SAP"`
	SKUDescription     string `json:"SKU_DESCRIPTION,omitempty"`
	AvailableInChannel string `json:"AVAILABLE_IN_CHANNEL,omitempty"`
}

// PLU returns the product's SKU number as a PLU
func (p ProductRecord) PLU() PLU {
	return PLU(p.SKUNumber)
}

// Description strips the "NNNN - " prefix from the SKU description when present
func (p ProductRecord) Description() string {
	runes := []rune(p.SKUDescription)
	if len(runes) > descriptionPrefixLen {
		return strings.TrimSpace(string(runes[descriptionPrefixLen:]))
	}
	return strings.TrimSpace(p.SKUDescription)
}

// Channel returns the trimmed AVAILABLE_IN_CHANNEL value
func (p ProductRecord) Channel() string {
	return strings.TrimSpace(p.AvailableInChannel)
}

// IsEcomEligible reports whether the product may be sold online
func (p ProductRecord) IsEcomEligible() bool {
	switch p.Channel() {
	case ChannelBoth, ChannelEcom:
		return true
	default:
		return false
	}
}

// IsStoreOnly reports whether the product is restricted to physical stores
func (p ProductRecord) IsStoreOnly() bool {
	return p.Channel() == ChannelStore
}
