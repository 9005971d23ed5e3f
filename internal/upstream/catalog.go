package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mdco-storefront/api/internal/domain"
)

const defaultFetchTimeout = 23 * time.Second

// CatalogClient fetches raw product records from the catalog orchestrator.
type CatalogClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// CatalogOption customises a CatalogClient.
type CatalogOption func(*CatalogClient)

// WithCatalogHTTPClient overrides the HTTP client, mainly for tests.
func WithCatalogHTTPClient(client *http.Client) CatalogOption {
	return func(c *CatalogClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCatalogUserAgent sets the User-Agent header sent upstream.
func WithCatalogUserAgent(ua string) CatalogOption {
	return func(c *CatalogClient) {
		if strings.TrimSpace(ua) != "" {
			c.userAgent = strings.TrimSpace(ua)
		}
	}
}

// NewCatalogClient builds a client against the given base URL.
func NewCatalogClient(baseURL string, opts ...CatalogOption) (*CatalogClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("catalog client: base url is required")
	}
	c := &CatalogClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FetchBySku retrieves the raw catalog record for a part number. A 4xx
// response maps to ErrProductNotFound; an empty or null body returns
// (nil, nil), which callers treat as "no content".
func (c *CatalogClient) FetchBySku(ctx context.Context, partNumber string) (*domain.RawCatalogProduct, error) {
	endpoint := fmt.Sprintf("%s/products/by-sku/%s", c.baseURL, url.PathEscape(partNumber))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("catalog client: build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog client: fetch %s: %w", partNumber, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 && res.StatusCode < 500 {
		return nil, fmt.Errorf("%w: %s (status %d)", ErrProductNotFound, partNumber, res.StatusCode)
	}
	if res.StatusCode >= 500 {
		return nil, fmt.Errorf("catalog client: fetch %s: upstream status %d", partNumber, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("catalog client: read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var raw domain.RawCatalogProduct
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("catalog client: decode %s: %w", partNumber, err)
	}
	return &raw, nil
}
