package domain

import "strings"

// AttributeUsage classifies how an upstream attribute participates in the
// storefront product. Unknown usages are preserved so callers can still scan
// them for shipping markers before discarding.
type AttributeUsage string

const (
	// UsageDescriptive marks single-valued informational attributes.
	UsageDescriptive AttributeUsage = "descriptive"
	// UsageDefining marks attributes whose values distinguish SKUs.
	UsageDefining AttributeUsage = "defining"
	// UsageUnknown is the fallback for usages this service does not model.
	UsageUnknown AttributeUsage = "unknown"
)

// ParseAttributeUsage maps the raw usage string onto the known variants.
func ParseAttributeUsage(raw string) AttributeUsage {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(UsageDescriptive):
		return UsageDescriptive
	case string(UsageDefining):
		return UsageDefining
	default:
		return UsageUnknown
	}
}

// AttributeValue is one enumerated option of a defining attribute. Slug is a
// URL-safe form of the display value used by variant selectors.
type AttributeValue struct {
	UniqueID   string `json:"uniqueID,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Values     string `json:"values"`
	Slug       string `json:"slug,omitempty"`
}

// DescriptiveAttribute carries a single display value.
type DescriptiveAttribute struct {
	ID          string `json:"id,omitempty"`
	Identifier  string `json:"identifier"`
	Name        string `json:"name"`
	Usage       string `json:"usage"`
	Displayable bool   `json:"displayable"`
	Value       string `json:"value"`
}

// DefiningAttribute enumerates the values that generate child SKUs.
type DefiningAttribute struct {
	ID          string           `json:"id,omitempty"`
	Identifier  string           `json:"identifier"`
	Name        string           `json:"name"`
	Usage       string           `json:"usage"`
	Displayable bool             `json:"displayable"`
	Values      []AttributeValue `json:"values"`
}

// SkuAttribute is the per-variant attribute shape carried on each SKU.
type SkuAttribute struct {
	Identifier string           `json:"identifier"`
	Name       string           `json:"name,omitempty"`
	Usage      string           `json:"usage,omitempty"`
	Values     []AttributeValue `json:"Values,omitempty"`
}
