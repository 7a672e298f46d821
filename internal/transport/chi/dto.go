package chi

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/request"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/result"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
)

// searchPayload is the POST /v1/search body. Each filter value is one
// of: a scalar (exact match), a two-element [min, max] array with null
// for an open bound (numeric range), or an array of strings (match
// any).
type searchPayload struct {
	Filters    map[string]json.RawMessage `json:"filters"`
	Lat        *float64                   `json:"lat"`
	Lng        *float64                   `json:"lng"`
	RadiusKm   *float64                   `json:"radius_km"`
	Page       int                        `json:"page"`
	PageSize   int                        `json:"page_size"`
	Sort       string                     `json:"sort"`
	WantFacets bool                       `json:"want_facets"`
}

// toRequest converts the wire payload into a validated engine request,
// clamped to the server's pagination limits. Every failure wraps
// domain.ErrValidation.
func (p *searchPayload) toRequest(lim request.Limits) (*request.Request, error) {
	constraints := make([]filter.Constraint, 0, len(p.Filters))
	for key, raw := range p.Filters {
		c, err := parseFilter(listing.Key(key), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %w", domain.ErrValidation, key, err)
		}
		constraints = append(constraints, c)
	}

	circle, err := p.geoCircle()
	if err != nil {
		return nil, err
	}

	spec, err := filter.NewSpec(constraints, circle)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	req, err := request.NewWithLimits(spec, p.Page, p.PageSize, sortorder.Order(p.Sort), p.WantFacets, lim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return &req, nil
}

func (p *searchPayload) geoCircle() (*filter.GeoCircle, error) {
	if p.Lat == nil && p.Lng == nil && p.RadiusKm == nil {
		return nil, nil
	}
	if p.Lat == nil || p.Lng == nil || p.RadiusKm == nil {
		return nil, fmt.Errorf("%w: lat, lng and radius_km must be set together", domain.ErrValidation)
	}
	circle, err := filter.NewGeoCircle(*p.Lat, *p.Lng, *p.RadiusKm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return &circle, nil
}

// parseFilter decodes one filter value by shape.
func parseFilter(key listing.Key, raw json.RawMessage) (filter.Constraint, error) {
	if !listing.IsKnown(key) {
		return filter.Constraint{}, fmt.Errorf("unknown attribute")
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err == nil {
		return parseArrayFilter(key, elems)
	}
	return parseScalarFilter(key, raw)
}

func parseArrayFilter(key listing.Key, elems []json.RawMessage) (filter.Constraint, error) {
	if len(elems) == 0 {
		return filter.Constraint{}, fmt.Errorf("empty array")
	}

	// All strings: a value set.
	values := make([]string, 0, len(elems))
	allStrings := true
	for _, e := range elems {
		var s string
		if err := json.Unmarshal(e, &s); err != nil {
			allStrings = false
			break
		}
		values = append(values, s)
	}
	if allStrings {
		return filter.NewValueSet(key, values...)
	}

	// Otherwise a [min, max] range; null leaves a bound open.
	if len(elems) != 2 {
		return filter.Constraint{}, fmt.Errorf("range needs exactly [min, max]")
	}
	bounds := make([]*float64, 2)
	for i, e := range elems {
		var v *float64
		if err := json.Unmarshal(e, &v); err != nil {
			return filter.Constraint{}, fmt.Errorf("range bound must be a number or null")
		}
		bounds[i] = v
	}
	return filter.NewRange(key, bounds[0], bounds[1])
}

func parseScalarFilter(key listing.Key, raw json.RawMessage) (filter.Constraint, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return filter.NewExact(key, s)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return filter.NewExact(key, strconv.FormatFloat(n, 'f', -1, 64))
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return filter.NewExact(key, strconv.FormatBool(b))
	}
	return filter.Constraint{}, fmt.Errorf("unsupported value shape")
}

// searchResponse is the POST /v1/search reply.
type searchResponse struct {
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	IDs         []listing.ID    `json:"ids"`
	FacetCounts *facetCountsDTO `json:"facet_counts,omitempty"`
}

type facetCountsDTO struct {
	Values         map[string]map[string]int            `json:"values"`
	MinCumulative  map[string]map[string]int            `json:"min_cumulative"`
	MaxCumulative  map[string]map[string]int            `json:"max_cumulative"`
	ModelByMake    map[string]map[string]int            `json:"model_by_make"`
	VariantByModel map[string]map[string]map[string]int `json:"variant_by_model"`
}

func facetsToDTO(fc *result.FacetCounts) *facetCountsDTO {
	if fc == nil {
		return nil
	}
	dto := &facetCountsDTO{
		Values:         keyTables(fc.Values),
		MinCumulative:  keyTables(fc.MinCumulative),
		MaxCumulative:  keyTables(fc.MaxCumulative),
		ModelByMake:    make(map[string]map[string]int, len(fc.ModelByMake)),
		VariantByModel: make(map[string]map[string]map[string]int, len(fc.VariantByModel)),
	}
	for mk, table := range fc.ModelByMake {
		dto.ModelByMake[mk] = table
	}
	for mk, byModel := range fc.VariantByModel {
		models := make(map[string]map[string]int, len(byModel))
		for model, table := range byModel {
			models[model] = table
		}
		dto.VariantByModel[mk] = models
	}
	return dto
}

func keyTables(in map[listing.Key]result.Table) map[string]map[string]int {
	out := make(map[string]map[string]int, len(in))
	for k, table := range in {
		out[string(k)] = table
	}
	return out
}

// listingResponse is the GET /v1/listings/{id} reply.
type listingResponse struct {
	ID          listing.ID     `json:"id"`
	Active      bool           `json:"active"`
	PublishedAt int64          `json:"published_at"`
	Attributes  map[string]any `json:"attributes"`
	Coords      *coordsDTO     `json:"coords,omitempty"`
}

type coordsDTO struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func listingToDTO(rec *listing.Record) listingResponse {
	attrs := make(map[string]any, len(rec.Tags)+len(rec.Numerics)+len(rec.Sets))
	for k, v := range rec.Tags {
		attrs[string(k)] = v
	}
	for k, v := range rec.Numerics {
		attrs[string(k)] = v
	}
	for k, v := range rec.Sets {
		attrs[string(k)] = v
	}

	resp := listingResponse{
		ID:          rec.ID,
		Active:      rec.Active,
		PublishedAt: rec.PublishedAt,
		Attributes:  attrs,
	}
	if rec.Coords != nil {
		resp.Coords = &coordsDTO{Lat: rec.Coords.Lat, Lng: rec.Coords.Lng}
	}
	return resp
}

// errorResponse is the JSON error body for every non-2xx reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
