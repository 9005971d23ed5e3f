package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/upstream"
)

var (
	// Plain numeric identifiers.
	partNumberDigits = regexp.MustCompile(`^\d{4,9}$`)
	// Prefixed or punctuated identifiers used by marketplace and legacy
	// catalogs.
	partNumberExtended = regexp.MustCompile(`(?i)^(mpm|mpp|pmp|sk-)?[\d\-?!\s]{10,20}p?$`)
)

// ValidPartNumber reports whether the identifier matches one of the accepted
// catalog patterns.
func ValidPartNumber(pn string) bool {
	return partNumberDigits.MatchString(pn) || partNumberExtended.MatchString(pn)
}

// PipelineDeps collects the pipeline's collaborators. Reports defaults to a
// no-op sink.
type PipelineDeps struct {
	Catalog    CatalogFetcher
	Normalizer *Normalizer
	Enricher   *Enricher
	Reports    ReportSink
	// ReportChannel names the report stream processing notes land on.
	ReportChannel string
}

// Pipeline is the end-to-end flow for one part number: validate, fetch,
// normalize, enrich, report.
type Pipeline struct {
	catalog    CatalogFetcher
	normalizer *Normalizer
	enricher   *Enricher
	reports    ReportSink
	channel    string
}

// NewPipeline validates dependencies and builds a Pipeline.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Catalog == nil {
		return nil, errors.New("pipeline: catalog fetcher is required")
	}
	if deps.Normalizer == nil {
		return nil, errors.New("pipeline: normalizer is required")
	}
	if deps.Enricher == nil {
		return nil, errors.New("pipeline: enricher is required")
	}
	reports := deps.Reports
	if reports == nil {
		reports = nopSink{}
	}
	channel := deps.ReportChannel
	if channel == "" {
		channel = "productos"
	}
	return &Pipeline{
		catalog:    deps.Catalog,
		normalizer: deps.Normalizer,
		enricher:   deps.Enricher,
		reports:    reports,
		channel:    channel,
	}, nil
}

// Process runs the full flow. A nil product with a nil error means the
// catalog answered without content; callers render that as an empty response,
// not a failure.
func (p *Pipeline) Process(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error) {
	pn := strings.TrimSpace(partNumber)
	if !ValidPartNumber(pn) {
		p.reports.Record(fmt.Sprintf("[No es un sku valido: %s]", pn), p.channel)
		return nil, fmt.Errorf("%w: %q", ErrInvalidPartNumber, pn)
	}

	raw, err := p.catalog.FetchBySku(ctx, pn)
	if err != nil {
		if errors.Is(err, upstream.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, pn)
		}
		return nil, fmt.Errorf("fetch %s: %w", pn, err)
	}
	if raw == nil {
		p.reports.Record(fmt.Sprintf("[Producto: %s sin contenido no se puede mostrar en navegación]", pn), p.channel)
		return nil, nil
	}

	product, err := p.normalizer.Normalize(ctx, raw)
	if err != nil {
		return nil, err
	}

	product, err = p.enricher.Enrich(ctx, product)
	if err != nil {
		return nil, err
	}

	p.reportAvailability(product, pn)
	return product, nil
}

// reportAvailability records the published/stock state combination for the
// processed product.
func (p *Pipeline) reportAvailability(product *domain.CanonicalProduct, pn string) {
	var msg string
	switch {
	case product.IsOutOfStock() && product.IsPublished:
		msg = fmt.Sprintf("[Producto: %s se encuentra publicado y sin stock en navegación]", pn)
	case product.IsUnavailable() && product.IsPublished:
		msg = fmt.Sprintf("[Producto: %s se encuentra publicado y pronto disponible en navegación]", pn)
	case !product.IsPublished && product.IsOutOfStock():
		msg = fmt.Sprintf("[Producto: %s no se encuentra publicado y no tiene stock en navegación]", pn)
	case !product.IsPublished:
		msg = fmt.Sprintf("[Producto: %s no se encuentra publicado y tiene stock en navegación]", pn)
	default:
		msg = fmt.Sprintf("[Producto: %s se encuentra publicado y con stock en navegación]", pn)
	}
	p.reports.Record(msg, p.channel)
}
