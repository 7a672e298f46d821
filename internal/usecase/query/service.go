// Package query implements the listing search engine: constraint
// matching, radius narrowing, ordering, pagination, and concurrent
// facet counting over a single memoized view of the store.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/request"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/result"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
	"github.com/llkotidis/AutoAgora-sub000/internal/logger"
	"github.com/llkotidis/AutoAgora-sub000/internal/metrics"
)

// DefaultFacetParallelism bounds the concurrent facet sub-queries of a
// single request.
const DefaultFacetParallelism = 8

// Service runs search queries against a listing store.
type Service struct {
	store            Store
	facetParallelism int
}

// New creates a query service with default facet parallelism.
func New(store Store) *Service {
	return &Service{store: store, facetParallelism: DefaultFacetParallelism}
}

// WithFacetParallelism creates a query service with a custom bound on
// concurrent facet sub-queries. Values below 1 are treated as 1.
func WithFacetParallelism(store Store, parallelism int) *Service {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Service{store: store, facetParallelism: parallelism}
}

// Run executes one search request: match, radius-narrow, order,
// paginate, and (when requested) count facets.
//
// Facet counting failures do not void the primary result: the returned
// QueryResult is valid and complete except for its nil facet tables,
// and the error wraps domain.ErrFacetCounts so the caller can degrade
// instead of failing the whole request.
func (s *Service) Run(ctx context.Context, req *request.Request) (result.QueryResult, error) {
	start := time.Now()
	res, err := s.run(ctx, req)

	status := "ok"
	switch {
	case errors.Is(err, domain.ErrFacetCounts):
		status = "degraded"
	case err != nil:
		status = "error"
	}
	metrics.QueryRequestsTotal.WithLabelValues(status).Inc()
	metrics.QueryDuration.WithLabelValues(strconv.FormatBool(req.WantFacets())).
		Observe(time.Since(start).Seconds())
	if err == nil || errors.Is(err, domain.ErrFacetCounts) {
		metrics.QueryResultSize.Observe(float64(res.Total()))
	}
	return res, err
}

func (s *Service) run(ctx context.Context, req *request.Request) (result.QueryResult, error) {
	spec, dropped := req.Spec().Normalize()
	if len(dropped) > 0 {
		logger.FromContext(ctx).Debug("dropped orphaned dependent constraints",
			zap.Any("keys", dropped))
	}

	q := newQuerier(s.store)

	ids, err := q.findMatching(ctx, spec.Constraints())
	if err != nil {
		return result.QueryResult{}, fmt.Errorf("match listings: %w", err)
	}

	var distances map[listing.ID]float64
	if circle := spec.Geo(); circle != nil {
		ids, distances, err = q.applyRadius(ctx, ids, *circle)
		if err != nil {
			return result.QueryResult{}, fmt.Errorf("apply radius: %w", err)
		}
	}

	total := len(ids)

	ids, err = s.order(ctx, q, ids, req.Order(), distances)
	if err != nil {
		return result.QueryResult{}, fmt.Errorf("order results: %w", err)
	}

	page := paginate(ids, req.Page(), req.PageSize())

	if !req.WantFacets() {
		return result.New(page, total, nil), nil
	}

	facets, err := s.countFacets(ctx, q, spec)
	if err != nil {
		return result.New(page, total, nil),
			fmt.Errorf("%w: %w", domain.ErrFacetCounts, err)
	}
	return result.New(page, total, facets), nil
}

// order sorts the full matching id set before pagination. Ties break on
// id ascending so the same request always yields the same page.
func (s *Service) order(
	ctx context.Context, q *querier, ids []listing.ID,
	ord sortorder.Order, distances map[listing.ID]float64,
) ([]listing.ID, error) {
	switch ord {
	case sortorder.DistanceAsc:
		sorted := append([]listing.ID(nil), ids...)
		sort.Slice(sorted, func(i, j int) bool {
			di, dj := distances[sorted[i]], distances[sorted[j]]
			if di != dj {
				return di < dj
			}
			return sorted[i] < sorted[j]
		})
		return sorted, nil

	case sortorder.DateDesc:
		records, err := q.getRecords(ctx, ids)
		if err != nil {
			return nil, err
		}
		sorted := append([]listing.ID(nil), ids...)
		sort.Slice(sorted, func(i, j int) bool {
			var pi, pj int64
			if rec, ok := records[sorted[i]]; ok {
				pi = rec.PublishedAt
			}
			if rec, ok := records[sorted[j]]; ok {
				pj = rec.PublishedAt
			}
			if pi != pj {
				return pi > pj
			}
			return sorted[i] < sorted[j]
		})
		return sorted, nil

	default:
		// Request validation only admits the orders above.
		return nil, fmt.Errorf("unsupported sort order %q", ord)
	}
}

// paginate slices the zero-based page window out of the ordered ids.
// Pages past the end yield an empty, non-nil window.
func paginate(ids []listing.ID, page, pageSize int) []listing.ID {
	start := page * pageSize
	if start >= len(ids) {
		return []listing.ID{}
	}
	end := start + pageSize
	if end > len(ids) {
		end = len(ids)
	}
	return append([]listing.ID{}, ids[start:end]...)
}
