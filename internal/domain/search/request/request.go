// Package request defines the validated search request consumed by the
// query engine.
package request

import (
	"fmt"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
)

// Pagination limits.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Limits bounds request pagination. Zero fields fall back to the
// package defaults, so the zero Limits is usable as-is.
type Limits struct {
	DefaultPageSize int
	MaxPageSize     int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultPageSize <= 0 {
		l.DefaultPageSize = DefaultPageSize
	}
	if l.MaxPageSize <= 0 {
		l.MaxPageSize = MaxPageSize
	}
	if l.DefaultPageSize > l.MaxPageSize {
		l.DefaultPageSize = l.MaxPageSize
	}
	return l
}

// Request is a validated search query: a filter spec plus pagination,
// ordering, and facet-count options.
type Request struct {
	spec       filter.Spec
	page       int
	pageSize   int
	order      sortorder.Order
	wantFacets bool
}

// New validates and normalizes search parameters with the package
// default pagination limits. Defaults: page=0, pageSize=DefaultPageSize,
// order=date_desc. pageSize is clamped to MaxPageSize. distance_asc
// requires a geo constraint on the spec.
func New(
	spec filter.Spec,
	page, pageSize int,
	order sortorder.Order,
	wantFacets bool,
) (Request, error) {
	return NewWithLimits(spec, page, pageSize, order, wantFacets, Limits{})
}

// NewWithLimits is New with operator-configured pagination limits.
func NewWithLimits(
	spec filter.Spec,
	page, pageSize int,
	order sortorder.Order,
	wantFacets bool,
	lim Limits,
) (Request, error) {
	lim = lim.withDefaults()
	if page < 0 {
		return Request{}, fmt.Errorf("page must not be negative, got %d", page)
	}
	if pageSize < 0 {
		return Request{}, fmt.Errorf("page size must not be negative, got %d", pageSize)
	}
	if pageSize == 0 {
		pageSize = lim.DefaultPageSize
	}
	if pageSize > lim.MaxPageSize {
		pageSize = lim.MaxPageSize
	}
	if order == "" {
		order = sortorder.DateDesc
	}
	if !order.IsValid() {
		return Request{}, fmt.Errorf("invalid sort order %q", order)
	}
	if order == sortorder.DistanceAsc && spec.Geo() == nil {
		return Request{}, fmt.Errorf("distance_asc requires a geo constraint")
	}

	return Request{
		spec:       spec,
		page:       page,
		pageSize:   pageSize,
		order:      order,
		wantFacets: wantFacets,
	}, nil
}

// Spec returns the filter spec.
func (r *Request) Spec() filter.Spec { return r.spec }

// Page returns the zero-based page index.
func (r *Request) Page() int { return r.page }

// PageSize returns the page window size.
func (r *Request) PageSize() int { return r.pageSize }

// Order returns the result ordering strategy.
func (r *Request) Order() sortorder.Order { return r.order }

// WantFacets reports whether per-facet counts were requested.
func (r *Request) WantFacets() bool { return r.wantFacets }
