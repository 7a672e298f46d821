package query

import (
	"context"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
)

// Store is the read contract the engine requires from a listing store.
// Implementations must tolerate being called many times per request:
// facet counting issues one sub-query per facet.
type Store interface {
	// FindMatching returns ids of listings satisfying every constraint,
	// active listings only unless includeInactive. The geo circle is
	// never part of constraints; radius narrowing happens engine-side.
	FindMatching(
		ctx context.Context, constraints []filter.Constraint, includeInactive bool,
	) ([]listing.ID, error)

	// GetAttributes bulk-fetches attribute values for a set of ids.
	// keys narrows the result; nil fetches everything. Missing ids are
	// omitted, never an error.
	GetAttributes(
		ctx context.Context, ids []listing.ID, keys []listing.Key,
	) (map[listing.ID]*listing.Record, error)
}
