// Package listingsearch embeds the faceted listing search engine in the
// caller's process: load records, then query with filters, a geo
// circle, and facet counts. No server required.
package listingsearch

import (
	"context"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/request"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/result"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
	"github.com/llkotidis/AutoAgora-sub000/internal/repository/memory"
	queryuc "github.com/llkotidis/AutoAgora-sub000/internal/usecase/query"
)

// Re-exported domain types, so embedding callers never import internal
// packages.
type (
	// ID is an opaque listing identifier.
	ID = listing.ID
	// Key names a listing attribute.
	Key = listing.Key
	// Record is one listing's attribute data.
	Record = listing.Record
	// Coords is a latitude/longitude pair in degrees.
	Coords = listing.Coords
	// Constraint is a single attribute filter.
	Constraint = filter.Constraint
	// GeoCircle is a center-plus-radius location filter.
	GeoCircle = filter.GeoCircle
	// Spec is a validated set of constraints plus an optional circle.
	Spec = filter.Spec
	// Request is a validated search request.
	Request = request.Request
	// Result is the engine output.
	Result = result.QueryResult
	// FacetCounts holds the per-facet what-if tables.
	FacetCounts = result.FacetCounts
	// Order selects the result ordering.
	Order = sortorder.Order
)

// Sort orders.
const (
	DateDesc    = sortorder.DateDesc
	DistanceAsc = sortorder.DistanceAsc
)

// Constraint constructors.
var (
	NewExact     = filter.NewExact
	NewRange     = filter.NewRange
	NewValueSet  = filter.NewValueSet
	NewGeoCircle = filter.NewGeoCircle
	NewSpec      = filter.NewSpec
	NewRequest   = request.New
)

// Client is an embedded listing search engine over an in-memory store.
// Safe for concurrent use.
type Client struct {
	store  *memory.Store
	engine *queryuc.Service
}

// New creates an empty embedded engine.
func New() *Client {
	store := memory.NewStore()
	return &Client{store: store, engine: queryuc.New(store)}
}

// Put stores or replaces a listing.
func (c *Client) Put(ctx context.Context, rec *Record) error {
	return c.store.Put(ctx, rec)
}

// Get returns one listing by id.
func (c *Client) Get(ctx context.Context, id ID) (*Record, error) {
	return c.store.Get(ctx, id)
}

// MarkSold removes a listing from search results without deleting it.
func (c *Client) MarkSold(ctx context.Context, id ID) error {
	return c.store.MarkSold(ctx, id)
}

// MarkAvailable puts a sold listing back into search results.
func (c *Client) MarkAvailable(ctx context.Context, id ID) error {
	return c.store.MarkAvailable(ctx, id)
}

// Search runs one query.
func (c *Client) Search(ctx context.Context, req *Request) (Result, error) {
	return c.engine.Run(ctx, req)
}
