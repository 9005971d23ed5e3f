// Package upstream implements the HTTP clients for the catalog service and
// the marketplace (offers/shops) API. Both are thin fetch layers: fixed
// timeout, no retries, typed errors for the conditions the pipeline
// distinguishes.
package upstream

import "errors"

var (
	// ErrProductNotFound indicates the catalog has no record for the SKU.
	ErrProductNotFound = errors.New("upstream: product not found")

	// ErrInvalidOfferID indicates the marketplace rejected the offer id.
	ErrInvalidOfferID = errors.New("upstream: invalid marketplace offer id")
	// ErrInactiveOffer indicates the offer exists but is not currently active.
	ErrInactiveOffer = errors.New("upstream: offer is currently not active")
	// ErrOfferOutOfStock indicates the product has no available offers.
	ErrOfferOutOfStock = errors.New("upstream: product has no available offers")
	// ErrOfferNotFound indicates the marketplace has no such offer.
	ErrOfferNotFound = errors.New("upstream: offer not found on marketplace")
	// ErrShopNotFound indicates a shop lookup returned zero results.
	ErrShopNotFound = errors.New("upstream: shop not found")
)
