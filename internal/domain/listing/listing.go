// Package listing defines the vehicle-listing data model: the attribute
// registry (typed keys, facet roles, dependent-facet parents) and the
// in-memory record representation the query engine works over.
package listing

import "sort"

// ID is an opaque listing identifier, stable for the listing's lifetime.
type ID string

// Kind classifies an attribute value type.
type Kind string

const (
	// KindText is free text matched exactly (make, model, variant).
	KindText Kind = "text"
	// KindEnum is an enumerated category (fuel type, body type, colors).
	KindEnum Kind = "enum"
	// KindNumeric is an integer or decimal value supporting range queries.
	KindNumeric Kind = "numeric"
	// KindFlag is a boolean stored as the tags "true"/"false".
	KindFlag Kind = "flag"
	// KindMulti is a multi-valued category set (extras, vehicle history).
	KindMulti Kind = "multi"
)

// Key names a listing attribute.
type Key string

// Attribute keys known to the engine.
const (
	Make           Key = "make"
	Model          Key = "model"
	Variant        Key = "variant"
	Year           Key = "year"
	Price          Key = "price"
	Mileage        Key = "mileage"
	EngineCapacity Key = "engine_capacity"
	Horsepower     Key = "hp"
	NumberOfOwners Key = "number_of_owners"
	Transmission   Key = "transmission"
	FuelType       Key = "fuel_type"
	BodyType       Key = "body_type"
	DriveType      Key = "drive_type"
	ExteriorColor  Key = "exterior_color"
	InteriorColor  Key = "interior_color"
	NumberOfDoors  Key = "number_of_doors"
	NumberOfSeats  Key = "number_of_seats"
	Availability   Key = "availability"
	Extras         Key = "extras"
	VehicleHistory Key = "vehicle_history"
	IsAntique      Key = "is_antique"
	PublishedAt    Key = "publication_date"
)

// attrInfo describes one registry entry.
type attrInfo struct {
	kind   Kind
	parent Key // dependent facets only: model→make, variant→model
	facet  facetRole
}

type facetRole int

const (
	facetNone facetRole = iota
	facetEnum
	facetRange
	facetDependent
)

var registry = map[Key]attrInfo{
	Make:           {kind: KindText, facet: facetEnum},
	Model:          {kind: KindText, parent: Make, facet: facetDependent},
	Variant:        {kind: KindText, parent: Model, facet: facetDependent},
	Year:           {kind: KindNumeric, facet: facetRange},
	Price:          {kind: KindNumeric, facet: facetRange},
	Mileage:        {kind: KindNumeric, facet: facetRange},
	EngineCapacity: {kind: KindNumeric, facet: facetRange},
	Horsepower:     {kind: KindNumeric, facet: facetRange},
	NumberOfOwners: {kind: KindNumeric, facet: facetRange},
	Transmission:   {kind: KindEnum, facet: facetEnum},
	FuelType:       {kind: KindEnum, facet: facetEnum},
	BodyType:       {kind: KindEnum, facet: facetEnum},
	DriveType:      {kind: KindEnum, facet: facetEnum},
	ExteriorColor:  {kind: KindEnum, facet: facetEnum},
	InteriorColor:  {kind: KindEnum, facet: facetEnum},
	NumberOfDoors:  {kind: KindEnum, facet: facetEnum},
	NumberOfSeats:  {kind: KindEnum, facet: facetEnum},
	Availability:   {kind: KindEnum, facet: facetEnum},
	Extras:         {kind: KindMulti, facet: facetEnum},
	VehicleHistory: {kind: KindMulti, facet: facetEnum},
	IsAntique:      {kind: KindFlag, facet: facetEnum},
	PublishedAt:    {kind: KindNumeric},
}

// IsKnown reports whether k is a registered attribute key.
func IsKnown(k Key) bool {
	_, ok := registry[k]
	return ok
}

// KindOf returns the value kind of a registered key.
func KindOf(k Key) (Kind, bool) {
	info, ok := registry[k]
	return info.kind, ok
}

// IsMulti reports whether k holds a multi-valued category set.
func IsMulti(k Key) bool {
	return registry[k].kind == KindMulti
}

// ParentOf returns the direct parent of a dependent attribute
// (model→make, variant→model) and false for independent attributes.
func ParentOf(k Key) (Key, bool) {
	info, ok := registry[k]
	if !ok || info.parent == "" {
		return "", false
	}
	return info.parent, true
}

// ParentChain returns all ancestors of a dependent attribute, outermost
// first: ParentChain(Variant) = [make, model].
func ParentChain(k Key) []Key {
	var chain []Key
	for {
		parent, ok := ParentOf(k)
		if !ok {
			break
		}
		chain = append([]Key{parent}, chain...)
		k = parent
	}
	return chain
}

// EnumFacets returns the independent enumerable facet keys, sorted for
// deterministic iteration. Multi-valued attributes are included.
func EnumFacets() []Key { return facetsByRole(facetEnum) }

// RangeFacets returns the facet keys with cumulative min/max count
// tables, sorted for deterministic iteration.
func RangeFacets() []Key { return facetsByRole(facetRange) }

func facetsByRole(role facetRole) []Key {
	var keys []Key
	for k, info := range registry {
		if info.facet == role {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Coords is a latitude/longitude pair in degrees.
type Coords struct {
	Lat float64
	Lng float64
}

// Record is the engine-side view of one listing. Tags hold text, enum
// and flag attributes; Numerics hold numeric attributes; Sets hold
// multi-valued attributes. Coords is nil when the listing carries no
// location.
type Record struct {
	ID          ID
	Active      bool
	PublishedAt int64 // unix seconds
	Tags        map[Key]string
	Numerics    map[Key]float64
	Sets        map[Key][]string
	Coords      *Coords
}

// Tag returns a tag attribute value and whether it is present.
func (r *Record) Tag(k Key) (string, bool) {
	v, ok := r.Tags[k]
	return v, ok
}

// Numeric returns a numeric attribute value and whether it is present.
func (r *Record) Numeric(k Key) (float64, bool) {
	if k == PublishedAt {
		if r.PublishedAt == 0 {
			return 0, false
		}
		return float64(r.PublishedAt), true
	}
	v, ok := r.Numerics[k]
	return v, ok
}

// Set returns a multi-valued attribute and whether it is present.
func (r *Record) Set(k Key) ([]string, bool) {
	v, ok := r.Sets[k]
	return v, ok
}
