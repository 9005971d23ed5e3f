package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/platform/requestctx"
	"github.com/mdco-storefront/api/internal/platform/textutil"
	"github.com/mdco-storefront/api/internal/upstream"
)

// DefaultEnrichmentWorkers bounds the concurrent offer lookups per product.
const DefaultEnrichmentWorkers = 4

const metaDescriptionLimit = 150

// EnricherDeps collects the enricher's collaborators.
type EnricherDeps struct {
	Marketplace MarketplaceAPI
	// Workers caps concurrent offer fetches; zero means the default.
	Workers int
}

// Enricher merges live marketplace offer data into canonical products. Only
// marketplace products are touched; everything else passes through untouched.
type Enricher struct {
	marketplace MarketplaceAPI
	workers     int
}

// NewEnricher validates dependencies and builds an Enricher.
func NewEnricher(deps EnricherDeps) (*Enricher, error) {
	if deps.Marketplace == nil {
		return nil, errors.New("enrichment: marketplace client is required")
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = DefaultEnrichmentWorkers
	}
	return &Enricher{marketplace: deps.Marketplace, workers: workers}, nil
}

type offerOutcome struct {
	sku   string
	offer domain.Offer
}

// Enrich fetches an offer per eligible SKU with bounded concurrency, keeps
// only the SKUs whose offers resolved, and attaches the first offer to
// complete as the product's primary marketplace offer. A product whose offers
// all fail is returned as-is: downstream sees it as out of stock, not as an
// error. The one hard failure is a primary offer whose shop cannot be found.
func (e *Enricher) Enrich(ctx context.Context, p *domain.CanonicalProduct) (*domain.CanonicalProduct, error) {
	if p == nil || !p.IsMarketplace {
		return p, nil
	}

	candidates := make([]domain.Sku, 0, len(p.SKUs))
	for _, sku := range p.SKUs {
		if !sku.Ineligible {
			candidates = append(candidates, sku)
		}
	}
	if len(candidates) == 0 {
		return p, nil
	}

	logger := requestctx.Logger(ctx)

	// The channel is buffered for every candidate, so workers never block on
	// send and receive order is completion order.
	results := make(chan offerOutcome, len(candidates))
	var group errgroup.Group
	group.SetLimit(e.workers)
	for _, sku := range candidates {
		sku := sku
		group.Go(func() error {
			raw, err := e.marketplace.GetOffer(ctx, sku.PartNumber)
			if err != nil {
				// A failed offer only drops its SKU from the sellable set.
				logger.Debug("marketplace offer dropped",
					zap.String("sku", sku.PartNumber),
					zap.Error(err))
				return nil
			}
			results <- offerOutcome{sku: sku.PartNumber, offer: canonicalOffer(raw)}
			return nil
		})
	}
	// Workers swallow their own errors; Wait only fences completion so the
	// success set below is final.
	_ = group.Wait()
	close(results)

	var primary domain.Offer
	succeeded := make(map[string]struct{}, len(candidates))
	for outcome := range results {
		if len(succeeded) == 0 {
			primary = outcome.offer
		}
		succeeded[outcome.sku] = struct{}{}
	}
	if len(succeeded) == 0 {
		return p, nil
	}

	kept := candidates[:0]
	for _, sku := range candidates {
		if _, ok := succeeded[sku.PartNumber]; ok {
			kept = append(kept, sku)
		}
	}
	p.SKUs = kept
	p.NumberOfSKUs = len(kept)
	p.Marketplace = primary

	meta := primary.ShopName + " - " + p.ShortDescription
	if p.ShortDescription == "" {
		raw, err := e.marketplace.FindShop(ctx, primary.ShopID)
		if err != nil {
			if errors.Is(err, upstream.ErrShopNotFound) {
				return nil, fmt.Errorf("%w: shop %d", ErrShopNotFound, primary.ShopID)
			}
			return nil, fmt.Errorf("%w: find shop %d: %w", ErrEnrichment, primary.ShopID, err)
		}
		shop := canonicalShop(raw)
		meta = primary.ShopName + " - " + shop.Description
	}
	p.Seo.MetaDescription = textutil.Truncate(meta, metaDescriptionLimit, "...")

	return p, nil
}

// canonicalOffer maps the wire offer onto the canonical shape, field by
// field, and derives the shop's local storefront URL.
func canonicalOffer(raw upstream.RawOffer) domain.Offer {
	return domain.Offer{
		OfferID:      raw.OfferID,
		Active:       raw.Active,
		ShopID:       raw.ShopID,
		ShopName:     raw.ShopName,
		ShopGrade:    raw.ShopGrade,
		Price:        raw.Price,
		TotalPrice:   raw.TotalPrice,
		Quantity:     raw.Quantity,
		StateCode:    raw.StateCode.String(),
		Currency:     raw.CurrencyISO,
		LeadTimeDays: raw.LeadTimeToShip,
		Description:  raw.Description,
		LocalURL:     ShopLocalURL(raw.ShopName, raw.ShopID),
	}
}

// canonicalShop maps the wire shop record onto the canonical shape.
func canonicalShop(raw upstream.RawShop) domain.Shop {
	return domain.Shop{
		ShopID:      raw.ShopID,
		Name:        raw.ShopName,
		Description: raw.Description,
	}
}

// ShopLocalURL builds the storefront path for a marketplace shop page.
func ShopLocalURL(shopName string, shopID int64) string {
	return "/tienda/" + textutil.Slugify(shopName) + "-" + strconv.FormatInt(shopID, 10)
}
