package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mdco-storefront/api/internal/domain"
	"github.com/mdco-storefront/api/internal/services"
)

type stubProductPipeline struct {
	process func(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error)
}

func (s *stubProductPipeline) Process(ctx context.Context, partNumber string) (*domain.CanonicalProduct, error) {
	if s.process != nil {
		return s.process(ctx, partNumber)
	}
	return nil, nil
}

func newProductRouter(h *ProductHandlers) chi.Router {
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func getProduct(t *testing.T, r chi.Router, partNumber string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/by-sku/"+partNumber, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestProductHandlersGetBySku(t *testing.T) {
	pipeline := &stubProductPipeline{
		process: func(ctx context.Context, pn string) (*domain.CanonicalProduct, error) {
			if pn != "2000378866682" {
				t.Fatalf("unexpected part number %q", pn)
			}
			product := domain.NewCanonicalProduct()
			product.PartNumber = pn
			product.Name = "ZAPATILLA URBANA"
			return product, nil
		},
	}
	router := newProductRouter(NewProductHandlers(pipeline))

	rr := getProduct(t, router, "2000378866682")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var body struct {
		Data    map[string]any `json:"data"`
		Message string         `json:"message"`
		Status  int            `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Message != "success" || body.Status != http.StatusOK {
		t.Fatalf("unexpected envelope: %+v", body)
	}
	if body.Data["partNumber"] != "2000378866682" {
		t.Fatalf("expected part number in payload, got %v", body.Data["partNumber"])
	}
}

func TestProductHandlersGetBySkuNoContent(t *testing.T) {
	router := newProductRouter(NewProductHandlers(&stubProductPipeline{}))

	rr := getProduct(t, router, "2000378866682")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected transport status 200, got %d", rr.Code)
	}

	var body struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Message != "no content" || body.Status != http.StatusNoContent {
		t.Fatalf("unexpected envelope: %+v", body)
	}
}

func TestProductHandlersGetBySkuErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid part number", services.ErrInvalidPartNumber, http.StatusBadRequest, "invalid_part_number"},
		{"not found", services.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
		{"shop not found", services.ErrShopNotFound, http.StatusBadGateway, "marketplace_shop_not_found"},
		{"enrichment failed", services.ErrEnrichment, http.StatusBadGateway, "marketplace_unavailable"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pipeline := &stubProductPipeline{
				process: func(context.Context, string) (*domain.CanonicalProduct, error) {
					return nil, tc.err
				},
			}
			router := newProductRouter(NewProductHandlers(pipeline))

			rr := getProduct(t, router, "x")
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rr.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if body["error"] != tc.wantCode {
				t.Fatalf("expected error code %q, got %v", tc.wantCode, body["error"])
			}
		})
	}
}

func TestProductHandlersRateLimit(t *testing.T) {
	pipeline := &stubProductPipeline{
		process: func(context.Context, string) (*domain.CanonicalProduct, error) {
			product := domain.NewCanonicalProduct()
			product.PartNumber = "2000378866682"
			return product, nil
		},
	}
	router := newProductRouter(NewProductHandlers(pipeline, WithProductRateLimit(2, time.Minute)))

	for i := 0; i < 2; i++ {
		if rr := getProduct(t, router, "2000378866682"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i, rr.Code)
		}
	}
	if rr := getProduct(t, router, "2000378866682"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
}

func TestProductHandlersNilPipeline(t *testing.T) {
	router := newProductRouter(NewProductHandlers(nil))
	if rr := getProduct(t, router, "x"); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}
