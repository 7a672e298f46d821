// Package result defines the query engine output: the paged id window,
// the total match count, and the per-facet count tables.
package result

import (
	"sort"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
)

// Table maps a facet candidate value to the number of listings that
// would match if the facet were constrained to that value.
type Table map[string]int

// SortedValues returns the candidate values in lexicographic order, for
// deterministic presentation.
func (t Table) SortedValues() []string {
	values := make([]string, 0, len(t))
	for v := range t {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// FacetCounts holds the what-if count tables for one query: each table
// answers "how many listings remain if this facet's own constraint were
// replaced by value V, with every other active constraint kept".
type FacetCounts struct {
	// Values holds independent enumerable facets (fuel type, body type,
	// colors, extras, ...). Multi-valued attributes may count one
	// listing under several values.
	Values map[listing.Key]Table
	// MinCumulative holds, per range facet, the count of remaining
	// listings whose attribute is ≥ each candidate bound.
	MinCumulative map[listing.Key]Table
	// MaxCumulative is the symmetric ≤ table.
	MaxCumulative map[listing.Key]Table
	// ModelByMake holds model counts keyed by the currently selected
	// make. Empty when make is unconstrained.
	ModelByMake map[string]Table
	// VariantByModel holds variant counts keyed by selected make, then
	// selected model. Empty unless both are constrained.
	VariantByModel map[string]map[string]Table
}

// NewFacetCounts creates an empty, fully initialized FacetCounts.
func NewFacetCounts() *FacetCounts {
	return &FacetCounts{
		Values:         make(map[listing.Key]Table),
		MinCumulative:  make(map[listing.Key]Table),
		MaxCumulative:  make(map[listing.Key]Table),
		ModelByMake:    make(map[string]Table),
		VariantByModel: make(map[string]map[string]Table),
	}
}

// QueryResult is the outcome of one engine run.
type QueryResult struct {
	ids    []listing.ID
	total  int
	facets *FacetCounts
}

// New creates a query result. facets may be nil when counts were not
// requested.
func New(ids []listing.ID, total int, facets *FacetCounts) QueryResult {
	return QueryResult{ids: ids, total: total, facets: facets}
}

// IDs returns the page window of matching listing ids.
func (r *QueryResult) IDs() []listing.ID { return r.ids }

// Total returns the total match count across all pages.
func (r *QueryResult) Total() int { return r.total }

// Facets returns the facet count tables, or nil when not requested.
func (r *QueryResult) Facets() *FacetCounts { return r.facets }
