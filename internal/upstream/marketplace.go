package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Offer state code requested from the marketplace; 11 is "active/sellable".
const defaultOfferStateCodes = "11"

// RawOffer is the marketplace offer exactly as it arrives on the wire,
// snake_cased. The explicit struct is the whole key-mapping story: every
// canonical field is assigned by name, never by generic renaming.
type RawOffer struct {
	OfferID        int64       `json:"offer_id"`
	Active         bool        `json:"active"`
	ShopID         int64       `json:"shop_id"`
	ShopName       string      `json:"shop_name"`
	ShopGrade      *float64    `json:"shop_grade"`
	Price          *float64    `json:"price"`
	TotalPrice     *float64    `json:"total_price"`
	Quantity       int         `json:"quantity"`
	StateCode      json.Number `json:"state_code"`
	CurrencyISO    string      `json:"currency_iso_code"`
	LeadTimeToShip int         `json:"leadtime_to_ship"`
	Description    string      `json:"description"`
}

// RawShop is the marketplace shop record on the wire.
type RawShop struct {
	ShopID      int64  `json:"shop_id"`
	ShopName    string `json:"shop_name"`
	Description string `json:"description"`
}

type shopsEnvelope struct {
	Shops []RawShop `json:"shops"`
}

// MarketplaceClient talks to the marketplace offers/shops API.
type MarketplaceClient struct {
	baseURL         string
	authHeader      string
	offerStateCodes string
	userAgent       string
	client          *http.Client
}

// MarketplaceOption customises a MarketplaceClient.
type MarketplaceOption func(*MarketplaceClient)

// WithMarketplaceHTTPClient overrides the HTTP client, mainly for tests.
func WithMarketplaceHTTPClient(client *http.Client) MarketplaceOption {
	return func(m *MarketplaceClient) {
		if client != nil {
			m.client = client
		}
	}
}

// WithOfferStateCodes overrides the offer state filter sent on offer lookups.
func WithOfferStateCodes(codes string) MarketplaceOption {
	return func(m *MarketplaceClient) {
		if strings.TrimSpace(codes) != "" {
			m.offerStateCodes = strings.TrimSpace(codes)
		}
	}
}

// WithMarketplaceUserAgent sets the User-Agent header sent upstream.
func WithMarketplaceUserAgent(ua string) MarketplaceOption {
	return func(m *MarketplaceClient) {
		if strings.TrimSpace(ua) != "" {
			m.userAgent = strings.TrimSpace(ua)
		}
	}
}

// NewMarketplaceClient builds a client. authHeader is sent verbatim as the
// Authorization header value.
func NewMarketplaceClient(baseURL, authHeader string, opts ...MarketplaceOption) (*MarketplaceClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("marketplace client: base url is required")
	}
	m := &MarketplaceClient{
		baseURL:         baseURL,
		authHeader:      strings.TrimSpace(authHeader),
		offerStateCodes: defaultOfferStateCodes,
		client:          &http.Client{Timeout: defaultFetchTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// GetOffer fetches one offer by id. Inactive offers are an ErrInactiveOffer;
// active offers with no sellable quantity are ErrOfferOutOfStock; missing
// offers are ErrOfferNotFound; a 400 means the id itself was invalid.
func (m *MarketplaceClient) GetOffer(ctx context.Context, offerID string) (RawOffer, error) {
	offerID = strings.TrimSpace(offerID)
	if offerID == "" {
		return RawOffer{}, fmt.Errorf("%w: empty id", ErrInvalidOfferID)
	}

	endpoint := fmt.Sprintf("%s/api/offers/%s?offer_state_codes=%s",
		m.baseURL, url.PathEscape(offerID), url.QueryEscape(m.offerStateCodes))

	var offer RawOffer
	if err := m.getJSON(ctx, endpoint, &offer, offerID); err != nil {
		return RawOffer{}, err
	}
	if !offer.Active {
		return RawOffer{}, fmt.Errorf("%w: offer %s", ErrInactiveOffer, offerID)
	}
	if offer.Quantity <= 0 {
		return RawOffer{}, fmt.Errorf("%w: offer %s", ErrOfferOutOfStock, offerID)
	}
	return offer, nil
}

// FindShop fetches the shop record for a shop id. Zero results is a hard
// ErrShopNotFound, never an empty success.
func (m *MarketplaceClient) FindShop(ctx context.Context, shopID int64) (RawShop, error) {
	endpoint := fmt.Sprintf("%s/api/shops?shop_ids=%d", m.baseURL, shopID)

	var envelope shopsEnvelope
	if err := m.getJSON(ctx, endpoint, &envelope, fmt.Sprintf("shop %d", shopID)); err != nil {
		return RawShop{}, err
	}
	if len(envelope.Shops) == 0 {
		return RawShop{}, fmt.Errorf("%w: %d", ErrShopNotFound, shopID)
	}
	return envelope.Shops[0], nil
}

func (m *MarketplaceClient) getJSON(ctx context.Context, endpoint string, out any, subject string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("marketplace client: build request: %w", err)
	}
	if m.authHeader != "" {
		req.Header.Set("Authorization", m.authHeader)
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}

	res, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("marketplace client: fetch %s: %w", subject, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrInvalidOfferID, subject)
	case res.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrOfferNotFound, subject)
	case res.StatusCode >= 400:
		return fmt.Errorf("marketplace client: fetch %s: upstream status %d", subject, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("marketplace client: decode %s: %w", subject, err)
	}
	return nil
}
