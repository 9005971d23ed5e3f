package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/platform/images"
	"github.com/mdco-storefront/api/internal/platform/textutil"
)

// Product type names used by the catalog.
const (
	productTypeProduct = "ProductBean"
	productTypeItem    = "ItemBean"
	productTypePackage = "PackageBean"
)

// Merchandising association types recognized by the storefront.
const (
	merchAccessory = "ACCESSORY"
	merchWarranty  = "EXTRAGARANTIA"
	merchCrossSell = "X-SELL"
)

var (
	// marketplacePartPattern matches the short numeric identifiers assigned
	// to marketplace listings.
	marketplacePartPattern = regexp.MustCompile(`^\d{4,6}$`)
	// imageAttrPattern matches descriptive attributes that carry extra image
	// URLs (Imagen1, Imagen2, ...).
	imageAttrPattern = regexp.MustCompile(`(?i)^Imagen\d+$`)
)

// ComponentResolver fetches and fully processes a package component by part
// number. The pipeline wires its own Process method in here; normalizer tests
// substitute a stub.
type ComponentResolver func(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error)

// NormalizerDeps collects the collaborators a Normalizer needs.
type NormalizerDeps struct {
	Prices      *PriceFormatter
	Transformer *images.Transformer
	CatalogCDN  *images.CatalogCDN
	Components  ComponentResolver
	// BaseURL is the storefront origin used when building product URLs.
	BaseURL string
}

// Normalizer turns raw catalog records into canonical storefront products.
type Normalizer struct {
	prices      *PriceFormatter
	transformer *images.Transformer
	cdn         *images.CatalogCDN
	components  ComponentResolver
	baseURL     string
	sanitizer   *bluemonday.Policy
}

// NewNormalizer validates dependencies and builds a Normalizer. The HTML
// policy is fixed to UGC rules so catalog descriptions keep their markup but
// lose scripts and event handlers.
func NewNormalizer(deps NormalizerDeps) (*Normalizer, error) {
	if deps.Prices == nil {
		return nil, errors.New("normalizer: price formatter is required")
	}
	return &Normalizer{
		prices:      deps.Prices,
		transformer: deps.Transformer,
		cdn:         deps.CatalogCDN,
		components:  deps.Components,
		baseURL:     strings.TrimRight(deps.BaseURL, "/"),
		sanitizer:   bluemonday.UGCPolicy(),
	}, nil
}

// Normalize maps a raw catalog record onto a canonical product, applying the
// identity, attribute, image, pricing, variant, and availability rules. The
// input record is never mutated.
func (n *Normalizer) Normalize(ctx context.Context, raw *domain.RawCatalogProduct) (*domain.CanonicalProduct, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedProduct)
	}
	productType := strings.TrimSpace(raw.ProductType)
	if strings.TrimSpace(raw.PartNumber) == "" || productType == "" {
		return nil, fmt.Errorf("%w: missing identity fields", ErrMalformedProduct)
	}
	if productType == productTypeItem {
		productType = productTypeProduct
	}

	p := domain.NewCanonicalProduct()
	p.ProductType = productType
	p.UniqueID = raw.UniqueID
	p.ParentProductID = raw.ParentProductID
	p.ParentCategoryID = raw.ParentCategoryID
	p.ShortDescription = strings.TrimSpace(raw.ShortDescription)
	p.LongDescription = n.sanitizer.Sanitize(raw.LongDescription)
	p.Manufacturer = strings.TrimSpace(raw.Manufacturer)
	p.Blacklist = raw.Blacklist
	p.IsPublished = raw.IsPublished
	p.XCatEntryCategory = raw.XCatEntryCategory

	identity := strings.TrimSpace(raw.ParentProductID)
	if identity == "" {
		identity = strings.TrimSpace(raw.PartNumber)
	}
	p.PartNumber = strings.ToUpper(identity)
	p.SelectedPartNumber = strings.TrimSpace(raw.PartNumber)

	p.Name = textutil.StripLocaleTag(strings.ToUpper(raw.Name))
	p.ProductString = textutil.Slugify(p.Name + " " + p.PartNumber)
	if p.ProductString != "" {
		p.URL = n.baseURL + "/" + p.ProductString
	}
	p.Seo = domain.Seo{
		Title:           textutil.StripLocaleTag(raw.Title),
		MetaDescription: textutil.StripLocaleTag(raw.MetaDescription),
		MetaKeyword:     raw.MetaKeyword,
	}

	p.Buyable = raw.Buyable.Or(true)
	if !p.Buyable {
		p.UnavailableReasons.Set(domain.ReasonNotBuyable)
	}

	p.IsMarketplace = IsMarketplaceProduct(raw)
	if p.IsMarketplace {
		p.Shipping.HomeDelivery = true
		p.SellerID = sellerIDFromAttributes(raw.Attributes)
	}

	// A product with no attributes of its own inherits them from the first
	// child, which carries the variant markers for marketplace listings.
	productAttrs := raw.Attributes
	if len(productAttrs) == 0 && len(raw.Related) > 0 {
		productAttrs = raw.Related[0].Attributes
	}

	groups := GroupAttributes(productAttrs)
	p.Attributes = groups.Descriptive
	if p.Manufacturer != "" {
		p.Attributes = append([]domain.DescriptiveAttribute{{
			Identifier:  "Marca",
			Name:        "Marca",
			Usage:       string(domain.UsageDescriptive),
			Displayable: true,
			Value:       p.Manufacturer,
		}}, p.Attributes...)
	}
	p.DefiningAttributes = groups.Defining

	p.Shipping = MergeShipping(
		ShippingFromAttributes(productAttrs, p.Shipping),
		ShippingFromMethods(raw.ParentPriceStock.ShippingMethods),
	)

	n.normalizeImages(raw, p)
	n.normalizeMerchandising(raw, p)

	if productType == productTypePackage {
		if err := n.normalizePackage(ctx, raw, p); err != nil {
			return nil, err
		}
	} else {
		n.normalizeChildren(raw, productAttrs, p)
		n.normalizeColors(raw, p)
	}

	n.normalizePrices(raw, productAttrs, p)
	n.applyStockReasons(raw, p)

	if p.IsPublished && len(p.SKUs) > 0 {
		removed, validated := ClassifySKUs(p.SKUs)
		p.RemovedSKUs = removed
		p.SKUs = validated
		if len(validated) > 0 && allIneligible(validated) {
			p.OutOfStockReasons.Set(domain.ReasonChildrenZero)
		}
	}

	return p, nil
}

// IsMarketplaceProduct reports whether the record is a marketplace listing:
// short numeric part numbers, the mpm/pmp prefixes, or an explicit attribute
// marker.
func IsMarketplaceProduct(raw *domain.RawCatalogProduct) bool {
	pn := strings.ToLower(strings.TrimSpace(raw.PartNumber))
	if marketplacePartPattern.MatchString(pn) {
		return true
	}
	if strings.HasPrefix(pn, "mpm") || strings.HasPrefix(pn, "pmp") {
		return true
	}
	return hasMarketplaceMarker(raw.Attributes)
}

func (n *Normalizer) normalizeImages(raw *domain.RawCatalogProduct, p *domain.CanonicalProduct) {
	var sources []string
	if len(raw.Images) > 0 {
		for _, img := range raw.Images {
			if img.Src != "" {
				sources = append(sources, img.Src)
			}
		}
	} else {
		if raw.FullImage != "" {
			sources = append(sources, raw.FullImage)
		}
		for _, att := range raw.Attachments {
			if strings.EqualFold(att.Usage, "IMAGES") && att.Path != "" {
				sources = append(sources, att.Path)
			}
		}
		for _, attr := range raw.Attributes {
			if !imageAttrPattern.MatchString(attr.Name) {
				continue
			}
			for _, v := range attr.Values {
				if v.Values != "" {
					sources = append(sources, v.Values)
				}
			}
		}
	}

	if p.IsMarketplace && n.transformer != nil && n.transformer.Active() {
		for _, src := range sources {
			full, err := n.transformer.URL(src, images.FormatProductFull, "https")
			if err != nil {
				continue
			}
			thumb, err := n.transformer.URL(src, images.FormatProductThumbnail, "https")
			if err != nil {
				continue
			}
			p.Images = append(p.Images, stripProtocol(full))
			p.Thumbnails = append(p.Thumbnails, stripProtocol(thumb))
		}
	} else {
		for _, src := range sources {
			rewritten := src
			if n.cdn != nil {
				rewritten = n.cdn.Rewrite(src)
			}
			p.Images = append(p.Images, rewritten)
			p.Thumbnails = append(p.Thumbnails, rewritten)
		}
	}

	if len(p.Images) > 0 {
		p.FullImage = p.Images[0]
	}
	if len(p.Thumbnails) > 0 {
		p.Thumbnail = p.Thumbnails[0]
	}
}

func stripProtocol(u string) string {
	if idx := strings.Index(u, "//"); idx > 0 {
		return u[idx:]
	}
	return u
}

func (n *Normalizer) normalizeMerchandising(raw *domain.RawCatalogProduct, p *domain.CanonicalProduct) {
	p.Accessories = []domain.MerchandisingAssociation{}
	p.Warranties = []domain.MerchandisingAssociation{}
	p.Recycling = []domain.MerchandisingAssociation{}
	for _, assoc := range raw.MerchandisingAssociations {
		entry := domain.MerchandisingAssociation{
			Type:       assoc.Type,
			Name:       strings.TrimSpace(assoc.Name),
			PartNumber: assoc.PartNumber,
		}
		switch assoc.Type {
		case merchAccessory:
			if pair, ok := n.prices.Pair(assoc.Price.Sale, "Offer"); ok {
				entry.Prices = append(entry.Prices, pair)
			}
			p.Accessories = append(p.Accessories, entry)
		case merchWarranty:
			if pair, ok := n.prices.Pair(assoc.Price.Master, "List"); ok {
				entry.Prices = append(entry.Prices, pair)
			}
			if pair, ok := n.prices.Pair(assoc.Price.Sale, "Offer"); ok {
				entry.Prices = append(entry.Prices, pair)
			}
			p.Warranties = append(p.Warranties, entry)
		case merchCrossSell:
			if entry.Name == "" {
				continue
			}
			if pair, ok := n.prices.Pair(assoc.Price.Master, "List"); ok {
				entry.Prices = append(entry.Prices, pair)
			}
			if pair, ok := n.prices.Pair(assoc.Price.Card, "Offer"); ok {
				entry.Prices = append(entry.Prices, pair)
			}
			p.Recycling = append(p.Recycling, entry)
		}
	}
}

func (n *Normalizer) normalizeChildren(raw *domain.RawCatalogProduct, productAttrs []domain.RawAttribute, p *domain.CanonicalProduct) {
	for _, child := range raw.Related {
		sku := domain.Sku{
			PartNumber:  child.Sku,
			SkuMkp:      child.SkuMkp,
			SKUUniqueID: child.SKUUniqueID,
			Stock:       child.Stock,
			Ineligible:  !child.Stock,
			IsPublished: child.IsPublished,
			IsEnabled:   child.IsEnabled,
			Prices:      n.prices.Normalize(child.Price, productAttrs),
			Shipping:    ShippingFromMethods(child.ShippingMethods),
		}
		if qty, ok := child.Quantity(); ok {
			sku.XCatEntryQuantity = qty
			if qty == 0 {
				sku.Ineligible = true
			}
		} else if child.Stock {
			sku.XCatEntryQuantity = 1
		}
		for _, attr := range child.Attributes {
			values := make([]domain.AttributeValue, 0, len(attr.Values))
			for _, v := range attr.Values {
				values = append(values, domain.AttributeValue{
					UniqueID:   v.UniqueID,
					Identifier: v.Identifier,
					Values:     v.Values,
					Slug:       textutil.Slugify(v.Values),
				})
			}
			sku.Attributes = append(sku.Attributes, domain.SkuAttribute{
				Identifier: attr.Identifier,
				Name:       attr.Name,
				Usage:      attr.Usage,
				Values:     values,
			})
		}
		for _, img := range child.Images {
			if img.Src != "" {
				sku.Images = append(sku.Images, img.Src)
			}
		}
		p.SKUs = append(p.SKUs, sku)
	}

	p.NumberOfSKUs = len(p.SKUs)
	if p.NumberOfSKUs == 1 {
		p.SingleSKUUniqueID = raw.UniqueID
		p.SKUs[0].SKUUniqueID = raw.UniqueID
	}

	switch {
	case len(raw.Attributes) > 0 && p.NumberOfSKUs > 1 && len(p.DefiningAttributes) == 0:
		// Variants exist but nothing distinguishes them; the selector cannot
		// render, so the product is held back rather than shown broken.
		p.UnavailableReasons.Set(domain.ReasonNoVariations)
	case len(p.DefiningAttributes) == 0:
		p.Single = true
		if p.SingleSKUUniqueID == "" {
			p.SingleSKUUniqueID = raw.SingleSKUUniqueID
		}
	}
}

func (n *Normalizer) normalizeColors(raw *domain.RawCatalogProduct, p *domain.CanonicalProduct) {
	if p.Single {
		return
	}
	seen := make(map[string]struct{})
	for _, c := range raw.Colors {
		if c.SkuUID == "" || c.Sku == "" || c.Name == "" || c.Hex == "" {
			continue
		}
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		p.Colors = append(p.Colors, domain.ColorOption{
			UniqueID: c.SkuUID,
			Hex:      c.Hex,
			Slug:     textutil.Slugify(c.Name),
			Name:     c.Name,
			Sku:      c.Sku,
		})
	}
}

func (n *Normalizer) normalizePackage(ctx context.Context, raw *domain.RawCatalogProduct, p *domain.CanonicalProduct) error {
	p.Single = true
	p.SingleSKUUniqueID = raw.UniqueID
	if n.components == nil {
		return nil
	}
	for _, ref := range raw.Components {
		if strings.TrimSpace(ref.Sku) == "" {
			continue
		}
		component, err := n.components(ctx, ref.Sku)
		if err != nil {
			return fmt.Errorf("resolve package component %s: %w", ref.Sku, err)
		}
		if component == nil {
			continue
		}
		p.Components = append(p.Components, component)
		p.Images = append(p.Images, component.Images...)
	}
	return nil
}

func (n *Normalizer) normalizePrices(raw *domain.RawCatalogProduct, productAttrs []domain.RawAttribute, p *domain.CanonicalProduct) {
	block := raw.ParentPriceStock.Price
	if child, ok := soleStockedChild(raw.Related); ok {
		block = child.Price
	}
	p.Prices = n.prices.Normalize(block, productAttrs)
	if min, max, ok := ParsePriceRange(raw.XCatEntryPriceRng); ok {
		p.Prices.PriceRangeMin = &min
		p.Prices.PriceRangeMax = &max
	}
	if p.Prices.Empty() {
		p.UnavailableReasons.Set(domain.ReasonNoPricesFromContent)
	}
}

// soleStockedChild finds the single in-stock variant, whose price block then
// represents the whole product.
func soleStockedChild(related []domain.RawChild) (domain.RawChild, bool) {
	var found domain.RawChild
	count := 0
	for _, child := range related {
		if child.Stock {
			found = child
			count++
		}
	}
	if count != 1 {
		return domain.RawChild{}, false
	}
	return found, true
}

func (n *Normalizer) applyStockReasons(raw *domain.RawCatalogProduct, p *domain.CanonicalProduct) {
	if qty, ok := raw.Quantity(); ok {
		p.XCatEntryQuantity = &qty
		if qty == 0 {
			p.OutOfStockReasons.Set(domain.ReasonQuantityZero)
		}
	}
	if count, ok := raw.SKUCount(); ok && count == 0 {
		p.OutOfStockReasons.Set(domain.ReasonSKUCountZero)
	}
	if len(p.SKUs) > 0 && allIneligible(p.SKUs) {
		p.OutOfStockReasons.Set(domain.ReasonChildrenZero)
	}
}

func allIneligible(skus []domain.Sku) bool {
	for _, sku := range skus {
		if !sku.Ineligible {
			return false
		}
	}
	return true
}

// ClassifySKUs applies the eligibility rules to each variant of a published
// product. Variants already stock-ineligible are removed without a reason;
// published-but-disabled variants are removed with one. Everything else stays
// sellable, though unpublished variants are forced ineligible with an
// explanatory reason.
func ClassifySKUs(skus []domain.Sku) (removed []domain.RemovedSku, validated []domain.Sku) {
	for _, sku := range skus {
		switch {
		case sku.Ineligible:
			removed = append(removed, domain.RemovedSku{PartNumber: sku.PartNumber})
		case sku.IsPublished && !sku.IsEnabled:
			removed = append(removed, domain.RemovedSku{
				PartNumber: sku.PartNumber,
				Reason:     "published but not enabled",
			})
		case sku.IsPublished && sku.IsEnabled:
			validated = append(validated, sku)
		case !sku.IsPublished && sku.IsEnabled:
			sku.Ineligible = true
			sku.EligibilityReason = "enabled but not published"
			validated = append(validated, sku)
		default:
			sku.Ineligible = true
			sku.EligibilityReason = "not published and not enabled"
			validated = append(validated, sku)
		}
	}
	return removed, validated
}
