package query

import (
	"context"
	"sync"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
)

// querier wraps the store for the duration of one request, memoizing
// repeated work: facet sub-queries share most of their constraints, so
// identical signatures and overlapping id sets show up constantly.
// Safe for use from concurrent facet goroutines.
type querier struct {
	store Store

	mu      sync.Mutex
	matches map[string][]listing.ID
	records map[listing.ID]*listing.Record
}

func newQuerier(store Store) *querier {
	return &querier{
		store:   store,
		matches: make(map[string][]listing.ID),
		records: make(map[listing.ID]*listing.Record),
	}
}

// findMatching runs a store match, memoized by canonical constraint
// signature.
func (q *querier) findMatching(
	ctx context.Context, constraints []filter.Constraint,
) ([]listing.ID, error) {
	sig := filter.Signature(constraints)

	q.mu.Lock()
	ids, ok := q.matches[sig]
	q.mu.Unlock()
	if ok {
		return ids, nil
	}

	ids, err := q.store.FindMatching(ctx, constraints, false)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	q.matches[sig] = ids
	q.mu.Unlock()
	return ids, nil
}

// getRecords returns full records for the given ids, fetching only the
// ones this request has not seen yet.
func (q *querier) getRecords(
	ctx context.Context, ids []listing.ID,
) (map[listing.ID]*listing.Record, error) {
	out := make(map[listing.ID]*listing.Record, len(ids))

	q.mu.Lock()
	var missing []listing.ID
	for _, id := range ids {
		if rec, ok := q.records[id]; ok {
			out[id] = rec
		} else {
			missing = append(missing, id)
		}
	}
	q.mu.Unlock()

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := q.store.GetAttributes(ctx, missing, nil)
	if err != nil {
		return nil, err
	}

	q.mu.Lock()
	for id, rec := range fetched {
		q.records[id] = rec
		out[id] = rec
	}
	q.mu.Unlock()
	return out, nil
}
