package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mdco-storefront/api/internal/platform/httpx"
	"github.com/mdco-storefront/api/internal/services"
)

// ProductHandlers exposes the storefront product lookup endpoints.
type ProductHandlers struct {
	pipeline services.ProductPipeline
	limiter  rateLimiter
}

// ProductOption customises the product handlers.
type ProductOption func(*ProductHandlers)

// WithProductRateLimit throttles lookups per client IP.
func WithProductRateLimit(limit int, window time.Duration) ProductOption {
	return func(h *ProductHandlers) {
		h.limiter = newSimpleRateLimiter(limit, window, nil)
	}
}

// NewProductHandlers constructs a new ProductHandlers instance.
func NewProductHandlers(pipeline services.ProductPipeline, opts ...ProductOption) *ProductHandlers {
	h := &ProductHandlers{pipeline: pipeline}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the /products endpoints.
func (h *ProductHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/by-sku/{partNumber}", h.getBySku)
}

func (h *ProductHandlers) getBySku(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.pipeline == nil {
		httpx.WriteError(ctx, w, httpx.NewError("product_service_unavailable", "product pipeline unavailable", http.StatusServiceUnavailable))
		return
	}

	if h.limiter != nil && !h.limiter.Allow(r.RemoteAddr) {
		httpx.WriteError(ctx, w, httpx.NewError("rate_limited", "too many product lookups", http.StatusTooManyRequests))
		return
	}

	partNumber := strings.TrimSpace(chi.URLParam(r, "partNumber"))
	product, err := h.pipeline.Process(ctx, partNumber)
	if err != nil {
		writeProductError(ctx, w, err)
		return
	}
	if product == nil {
		httpx.WriteNoContent(ctx, w)
		return
	}
	httpx.WriteData(ctx, w, product)
}

func writeProductError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPartNumber):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_part_number", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrShopNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("marketplace_shop_not_found", "marketplace shop not found", http.StatusBadGateway))
	case errors.Is(err, services.ErrEnrichment):
		httpx.WriteError(ctx, w, httpx.NewError("marketplace_unavailable", "marketplace enrichment failed", http.StatusBadGateway))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("product_error", "failed to process product request", http.StatusInternalServerError))
	}
}
