package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexBool tolerates the upstream habit of encoding booleans as true/false,
// "true"/"false", or omitting them entirely. The zero value reports
// (false, not present).
type FlexBool struct {
	Value   bool
	Present bool
}

// UnmarshalJSON accepts JSON booleans and their quoted forms.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = FlexBool{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	parsed, err := strconv.ParseBool(s)
	if err != nil {
		// Upstream occasionally sends junk; treat it as absent rather than
		// failing the whole payload.
		*b = FlexBool{}
		return nil
	}
	*b = FlexBool{Value: parsed, Present: true}
	return nil
}

// Or returns the carried value, or fallback when the field was absent.
func (b FlexBool) Or(fallback bool) bool {
	if !b.Present {
		return fallback
	}
	return b.Value
}

// RawCatalogProduct is the upstream catalog record exactly as fetched. Field
// names mirror the catalog wire format, including its inconsistent casing.
type RawCatalogProduct struct {
	PartNumber        string      `json:"partNumber"`
	UniqueID          string      `json:"uniqueID"`
	ParentProductID   string      `json:"parentProductID"`
	ParentCategoryID  string      `json:"parentCategoryId"`
	ProductType       string      `json:"productType"`
	Name              string      `json:"name"`
	Title             string      `json:"title"`
	MetaDescription   string      `json:"metaDescription"`
	MetaKeyword       string      `json:"metaKeyword"`
	ShortDescription  string      `json:"shortDescription"`
	LongDescription   string      `json:"longDescription"`
	Manufacturer      string      `json:"manufacturer"`
	FullImage         string      `json:"fullImage"`
	Buyable           FlexBool    `json:"buyable"`
	IsPublished       bool        `json:"is_published"`
	Blacklist         bool        `json:"blacklist"`
	NumberOfSKUs      json.Number `json:"numberOfSKUs"`
	SingleSKUUniqueID string      `json:"singleSKUUniqueID"`

	Attributes                []RawAttribute        `json:"Attributes"`
	Attachments               []RawAttachment       `json:"Attachments"`
	Images                    []RawImage            `json:"images"`
	Colors                    []RawColor            `json:"colors"`
	Related                   []RawChild            `json:"related"`
	Components                []RawComponentRef     `json:"components"`
	MerchandisingAssociations []RawMerchAssociation `json:"MerchandisingAssociations"`
	ParentPriceStock          RawParentPriceStock   `json:"parentpricestock"`

	// Two legacy spellings of the same stock quantity field.
	XCatEntryQuantity  json.Number `json:"xcatentry_quantity"`
	XCatEntryXQuantity json.Number `json:"xcatentry_xquantity"`
	XCatEntryCategory  string      `json:"xcatentry_category"`
	XCatEntryPriceRng  string      `json:"xcatentry_priceRange"`
}

// Quantity resolves the two legacy quantity spellings into one value.
// The boolean is false when neither field carried a usable integer.
func (p *RawCatalogProduct) Quantity() (int, bool) {
	return resolveQuantity(p.XCatEntryQuantity, p.XCatEntryXQuantity)
}

// SKUCount parses the loosely typed numberOfSKUs field.
func (p *RawCatalogProduct) SKUCount() (int, bool) {
	s := strings.TrimSpace(p.NumberOfSKUs.String())
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RawParentPriceStock groups the parent-level price block and shipping
// method codes.
type RawParentPriceStock struct {
	Price           RawPriceBlock `json:"price"`
	ShippingMethods []string      `json:"shippingmethods"`
}

// RawAttribute is the catalog attribute shape shared by products and SKUs.
type RawAttribute struct {
	UniqueID    string              `json:"uniqueID"`
	Identifier  string              `json:"identifier"`
	Name        string              `json:"name"`
	Usage       string              `json:"usage"`
	Displayable FlexBool            `json:"displayable"`
	Values      []RawAttributeValue `json:"Values"`
}

// RawAttributeValue is one value option of a raw attribute.
type RawAttributeValue struct {
	UniqueID   string `json:"uniqueID"`
	Identifier string `json:"identifier"`
	Values     string `json:"values"`
}

// RawAttachment carries secondary media referenced by the catalog record.
type RawAttachment struct {
	Usage string `json:"usage"`
	Path  string `json:"path"`
}

// RawImage wraps an image source URL.
type RawImage struct {
	Src string `json:"src"`
}

// RawColor is the color swatch shape attached to multi-variant products.
type RawColor struct {
	SkuUID string `json:"sku_uid"`
	Sku    string `json:"sku"`
	Name   string `json:"name"`
	Hex    string `json:"hex"`
}

// RawChild is a child variant record nested under the catalog product.
type RawChild struct {
	Sku         string          `json:"sku"`
	SkuMkp      string          `json:"sku_mkp"`
	Stock       bool            `json:"stock"`
	IsPublished bool            `json:"is_published"`
	IsEnabled   bool            `json:"is_enabled"`
	SKUUniqueID string          `json:"SKUUniqueID"`
	Attributes  []RawAttribute  `json:"attributes"`
	Images      []RawImage      `json:"images"`
	Price       RawPriceBlock   `json:"price"`
	ShippingMethods []string    `json:"shippingmethods"`

	XCatEntryQuantity  json.Number `json:"xcatentry_quantity"`
	XCatEntryXQuantity json.Number `json:"xcatentry_xquantity"`
}

// Quantity resolves the two legacy quantity spellings carried on children.
func (c *RawChild) Quantity() (int, bool) {
	return resolveQuantity(c.XCatEntryQuantity, c.XCatEntryXQuantity)
}

// RawComponentRef points at a package component resolved through its own
// catalog fetch.
type RawComponentRef struct {
	Sku string `json:"sku"`
}

// RawMerchAssociation is an upstream cross-sell/upsell entry.
type RawMerchAssociation struct {
	Type       string        `json:"type"`
	Name       string        `json:"name"`
	PartNumber string        `json:"partNumber"`
	Price      RawPriceBlock `json:"Price"`
}

// RawPriceBlock carries up to four price kinds under their legacy keys.
type RawPriceBlock struct {
	Master   RawPrice `json:"master"`
	Sale     RawPrice `json:"sale"`
	Card     RawPrice `json:"ripley"`
	Discount RawPrice `json:"discount"`
}

// RawPrice is a single price entry; Value is kept as json.Number because the
// upstream mixes quoted and unquoted numerics.
type RawPrice struct {
	Value      json.Number `json:"value"`
	Percentage json.Number `json:"percentage"`
}

// Float parses the price value; malformed or empty values report (0, false)
// so the field is simply omitted downstream.
func (p RawPrice) Float() (float64, bool) {
	return numberFloat(p.Value)
}

// PercentageFloat parses the discount percentage the same way.
func (p RawPrice) PercentageFloat() (float64, bool) {
	return numberFloat(p.Percentage)
}

func numberFloat(n json.Number) (float64, bool) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func resolveQuantity(primary, legacy json.Number) (int, bool) {
	for _, n := range []json.Number{primary, legacy} {
		s := strings.TrimSpace(n.String())
		if s == "" {
			continue
		}
		if v, err := strconv.Atoi(s); err == nil {
			return v, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}
