package services

import (
	"context"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/upstream"
)

// CatalogFetcher retrieves raw product records by part number. A nil record
// with a nil error means the catalog answered but carried no content.
type CatalogFetcher interface {
	FetchBySku(ctx context.Context, partNumber string) (*domain.RawCatalogProduct, error)
}

// MarketplaceAPI exposes the marketplace operator endpoints the enricher
// depends on.
type MarketplaceAPI interface {
	GetOffer(ctx context.Context, offerID string) (upstream.RawOffer, error)
	FindShop(ctx context.Context, shopID int64) (upstream.RawShop, error)
}

// ReportSink receives human-readable processing notes. Implementations must
// never fail the calling request.
type ReportSink interface {
	Record(message, channel string)
}

// ProductPipeline is the full fetch, normalize and enrich flow for a single
// part number.
type ProductPipeline interface {
	Process(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error)
}

type nopSink struct{}

func (nopSink) Record(string, string) {}
