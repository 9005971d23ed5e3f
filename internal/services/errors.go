package services

import "errors"

var (
	// ErrInvalidPartNumber signals a part number that fails the accepted
	// patterns; it never propagates past the pipeline entry check's caller.
	ErrInvalidPartNumber = errors.New("pipeline: part number is not valid")
	// ErrProductNotFound means the catalog has no record for the part number.
	ErrProductNotFound = errors.New("pipeline: product not found")
	// ErrMalformedProduct indicates the catalog record is missing required
	// identity fields and cannot be normalized.
	ErrMalformedProduct = errors.New("normalizer: malformed catalog record")
	// ErrShopNotFound is the hard enrichment failure: a primary offer's shop
	// lookup yielded zero results.
	ErrShopNotFound = errors.New("enrichment: marketplace shop not found")
	// ErrEnrichment wraps any other marketplace failure that aborts
	// enrichment.
	ErrEnrichment = errors.New("enrichment: marketplace enrichment failed")
)
