// Package domain holds cross-cutting domain types and sentinel errors.
package domain

import "errors"

var (
	// ErrValidation signals a malformed filter spec or search request.
	// A query that fails validation never partially executes.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable signals that the listing store failed to respond.
	// The engine propagates it without retrying.
	ErrStoreUnavailable = errors.New("listing store unavailable")
	// ErrFacetCounts signals that the facet-count fan-out failed. The
	// primary match/pagination result resolves before facet counting
	// starts and remains valid when this error is returned.
	ErrFacetCounts = errors.New("facet counting failed")
	// ErrListingNotFound signals a missing listing.
	ErrListingNotFound = errors.New("listing not found")
)
