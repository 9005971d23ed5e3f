package domain

import "encoding/json"

// PriceSet holds the derived numeric/formatted pairs for the four recognized
// price kinds. Absent kinds keep nil pointers and empty formatted strings.
type PriceSet struct {
	ListPrice           *float64 `json:"listPrice,omitempty"`
	FormattedListPrice  string   `json:"formattedListPrice,omitempty"`
	OfferPrice          *float64 `json:"offerPrice,omitempty"`
	FormattedOfferPrice string   `json:"formattedOfferPrice,omitempty"`
	CardPrice           *float64 `json:"cardPrice,omitempty"`
	FormattedCardPrice  string   `json:"formattedCardPrice,omitempty"`
	Discount            *float64 `json:"discount,omitempty"`
	FormattedDiscount   string   `json:"formattedDiscount,omitempty"`
	DiscountPercentage  *float64 `json:"discountPercentage,omitempty"`
	LoyaltyPoints       int      `json:"loyaltyPoints,omitempty"`

	PriceRangeMin *int `json:"priceRangeMin,omitempty"`
	PriceRangeMax *int `json:"priceRangeMax,omitempty"`
}

// MinPrice picks the reference price used for loyalty point derivation:
// card price first, then offer, then list.
func (ps PriceSet) MinPrice() (float64, bool) {
	for _, p := range []*float64{ps.CardPrice, ps.OfferPrice, ps.ListPrice} {
		if p != nil {
			return *p, true
		}
	}
	return 0, false
}

// Empty reports whether none of the four price kinds is present.
func (ps PriceSet) Empty() bool {
	return ps.ListPrice == nil && ps.OfferPrice == nil && ps.CardPrice == nil && ps.Discount == nil
}

// ShippingFlags are four independent delivery options derived from attribute
// markers. NearbyPickup is a refinement of HomeDelivery and is forced off
// whenever home delivery is unavailable.
type ShippingFlags struct {
	HomeDelivery   bool `json:"homeDelivery"`
	StorePickup    bool `json:"storePickup"`
	NearbyPickup   bool `json:"nearbyPickup"`
	CashOnDelivery bool `json:"cashOnDelivery"`
}

// Seo groups the meta fields surfaced to crawlers.
type Seo struct {
	Title           string `json:"title,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty"`
	MetaKeyword     string `json:"metaKeyword,omitempty"`
}

// FormattedPrice is the usage-tagged price pair attached to merchandising
// associations.
type FormattedPrice struct {
	PriceUsage          string   `json:"priceUsage"`
	PriceValue          *float64 `json:"priceValue"`
	FormattedPriceValue string   `json:"formattedPriceValue"`
}

// MerchandisingAssociation is a related product offer (accessory, extended
// warranty, recycling fee) attached to the main product.
type MerchandisingAssociation struct {
	Type       string           `json:"type"`
	Name       string           `json:"name"`
	PartNumber string           `json:"partNumber,omitempty"`
	Prices     []FormattedPrice `json:"Price,omitempty"`
}

// ColorOption is the swatch descriptor used by the color selector component.
type ColorOption struct {
	UniqueID string `json:"uniqueID"`
	Hex      string `json:"hex"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Sku      string `json:"sku"`
}

// Sku is one purchasable variant of a storefront product.
type Sku struct {
	PartNumber        string         `json:"partNumber"`
	SkuMkp            string         `json:"sku_mkp,omitempty"`
	SKUUniqueID       string         `json:"SKUUniqueID,omitempty"`
	Stock             bool           `json:"stock"`
	Ineligible        bool           `json:"ineligible"`
	IsPublished       bool           `json:"is_published"`
	IsEnabled         bool           `json:"is_enabled"`
	EligibilityReason string         `json:"eligibilityReason,omitempty"`
	XCatEntryQuantity int            `json:"xCatEntryQuantity"`
	Attributes        []SkuAttribute `json:"Attributes"`
	Images            []string       `json:"images"`
	Prices            PriceSet       `json:"prices"`
	Shipping          ShippingFlags  `json:"shipping"`
}

// RemovedSku records a variant excluded from the sellable list, kept for
// auditing only.
type RemovedSku struct {
	PartNumber string `json:"partNumber"`
	Reason     string `json:"statusVariation"`
}

// Offer is the canonical marketplace offer merged into a product. The zero
// value marshals as an empty object, which is how non-enriched products are
// rendered.
type Offer struct {
	OfferID      int64    `json:"offerId,omitempty"`
	Active       bool     `json:"active,omitempty"`
	ShopID       int64    `json:"shopId,omitempty"`
	ShopName     string   `json:"shopName,omitempty"`
	ShopGrade    *float64 `json:"shopGrade,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	TotalPrice   *float64 `json:"totalPrice,omitempty"`
	Quantity     int      `json:"quantity,omitempty"`
	StateCode    string   `json:"stateCode,omitempty"`
	Currency     string   `json:"currencyIsoCode,omitempty"`
	LeadTimeDays int      `json:"leadtimeToShip,omitempty"`
	Description  string   `json:"description,omitempty"`
	LocalURL     string   `json:"localUrl,omitempty"`
}

// IsZero reports whether the offer carries no marketplace data.
func (o Offer) IsZero() bool {
	return o == Offer{}
}

// Shop is the canonical marketplace shop record.
type Shop struct {
	ShopID      int64  `json:"shopId"`
	Name        string `json:"shopName"`
	Description string `json:"description"`
}

// CanonicalProduct is the storefront-ready product record produced by the
// normalization pipeline. It is created fresh per pass, mutated in place by
// the pipeline stages, and owns every nested structure exclusively.
type CanonicalProduct struct {
	PartNumber         string `json:"partNumber"`
	SelectedPartNumber string `json:"selectedPartNumber,omitempty"`
	UniqueID           string `json:"uniqueID,omitempty"`
	ParentProductID    string `json:"parentProductID,omitempty"`
	ParentCategoryID   string `json:"parentCategoryId,omitempty"`
	ProductType        string `json:"productType"`
	Name               string `json:"name"`
	ProductString      string `json:"productString,omitempty"`
	URL                string `json:"url,omitempty"`
	ShortDescription   string `json:"shortDescription,omitempty"`
	LongDescription    string `json:"longDescription,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	Seo                Seo    `json:"seo"`

	Buyable     bool `json:"buyable"`
	IsPublished bool `json:"is_published"`
	Single      bool `json:"single"`
	Blacklist   bool `json:"orchestratorBlacklist,omitempty"`

	IsMarketplace bool   `json:"isMarketplaceProduct"`
	SellerID      string `json:"sellerId,omitempty"`

	Prices             PriceSet               `json:"prices"`
	Shipping           ShippingFlags          `json:"shipping"`
	Attributes         []DescriptiveAttribute `json:"attributes"`
	DefiningAttributes []DefiningAttribute    `json:"definingAttributes"`

	SKUs              []Sku        `json:"SKUs,omitempty"`
	RemovedSKUs       []RemovedSku `json:"removedSKUs,omitempty"`
	NumberOfSKUs      int          `json:"numberOfSKUs,omitempty"`
	SingleSKUUniqueID string       `json:"singleSKUUniqueID,omitempty"`
	XCatEntryQuantity *int         `json:"xCatEntryQuantity,omitempty"`
	XCatEntryCategory string       `json:"xCatEntryCategory,omitempty"`

	FullImage  string   `json:"fullImage,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	Images     []string `json:"images"`
	Thumbnails []string `json:"thumbnails,omitempty"`

	Colors      []ColorOption              `json:"colors,omitempty"`
	Accessories []MerchandisingAssociation `json:"accessories"`
	Warranties  []MerchandisingAssociation `json:"warranties"`
	Recycling   []MerchandisingAssociation `json:"recycling"`
	Components  []*CanonicalProduct        `json:"components,omitempty"`

	Marketplace Offer `json:"marketplace"`

	UnavailableReasons Reasons `json:"unavailableReasons"`
	OutOfStockReasons  Reasons `json:"outOfStockReasons"`
}

// NewCanonicalProduct returns a product with its reason maps initialised.
func NewCanonicalProduct() *CanonicalProduct {
	return &CanonicalProduct{
		UnavailableReasons: NewReasons(),
		OutOfStockReasons:  NewReasons(),
	}
}

// IsUnavailable derives the unavailable flag from the reason map. The value
// is never stored; it is computed at read time.
func (p *CanonicalProduct) IsUnavailable() bool {
	return p.UnavailableReasons.Any()
}

// IsOutOfStock derives the out-of-stock flag; an unavailable product is never
// additionally reported as out of stock.
func (p *CanonicalProduct) IsOutOfStock() bool {
	if p.IsUnavailable() {
		return false
	}
	return p.OutOfStockReasons.Any()
}

// MarshalJSON appends the derived availability booleans to the serialized
// record so clients never see them drift from the reason maps.
func (p *CanonicalProduct) MarshalJSON() ([]byte, error) {
	type alias CanonicalProduct
	return json.Marshal(struct {
		*alias
		IsUnavailable bool `json:"isUnavailable"`
		IsOutOfStock  bool `json:"isOutOfStock"`
	}{
		alias:         (*alias)(p),
		IsUnavailable: p.IsUnavailable(),
		IsOutOfStock:  p.IsOutOfStock(),
	})
}
