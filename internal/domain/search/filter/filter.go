// Package filter defines the constraint model for one listing query: a
// tagged-union Constraint (exact match, numeric range, value set), the
// immutable Spec holding at most one constraint per attribute plus an
// optional geo circle, and predicate evaluation over listing records.
package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/geo"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
)

// MaxConstraints is the maximum number of attribute constraints per spec.
const MaxConstraints = 32

type constraintKind int

const (
	kindExact constraintKind = iota + 1
	kindRange
	kindValueSet
)

// Constraint is a single attribute predicate: exact match, numeric
// range, or set membership. Geo circles are carried separately on the
// Spec since the store cannot evaluate them.
type Constraint struct {
	key    listing.Key
	kind   constraintKind
	exact  string
	min    *float64
	max    *float64
	values []string
}

// NewExact creates an exact-match constraint. For numeric attributes the
// value must parse as a number.
func NewExact(key listing.Key, value string) (Constraint, error) {
	attrKind, ok := listing.KindOf(key)
	if !ok {
		return Constraint{}, fmt.Errorf("unknown attribute %q", key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Constraint{}, fmt.Errorf("empty match value for %q", key)
	}
	if attrKind == listing.KindNumeric {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return Constraint{}, fmt.Errorf("non-numeric value %q for %q", value, key)
		}
	}
	return Constraint{key: key, kind: kindExact, exact: value}, nil
}

// NewRange creates a numeric range constraint. Bounds are independently
// optional but at least one is required, both inclusive, min ≤ max.
func NewRange(key listing.Key, min, max *float64) (Constraint, error) {
	attrKind, ok := listing.KindOf(key)
	if !ok {
		return Constraint{}, fmt.Errorf("unknown attribute %q", key)
	}
	if attrKind != listing.KindNumeric {
		return Constraint{}, fmt.Errorf("range constraint on non-numeric attribute %q", key)
	}
	if min == nil && max == nil {
		return Constraint{}, fmt.Errorf("range for %q needs at least one bound", key)
	}
	if min != nil && max != nil && *min > *max {
		return Constraint{}, fmt.Errorf("range for %q has min %g > max %g", key, *min, *max)
	}
	return Constraint{key: key, kind: kindRange, min: copyFloat(min), max: copyFloat(max)}, nil
}

// NewValueSet creates a match-any set-membership constraint. Values are
// trimmed and deduplicated; at least one non-empty value is required.
func NewValueSet(key listing.Key, values ...string) (Constraint, error) {
	if !listing.IsKnown(key) {
		return Constraint{}, fmt.Errorf("unknown attribute %q", key)
	}
	seen := make(map[string]struct{}, len(values))
	clean := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		clean = append(clean, v)
	}
	if len(clean) == 0 {
		return Constraint{}, fmt.Errorf("value set for %q is empty", key)
	}
	sort.Strings(clean)
	return Constraint{key: key, kind: kindValueSet, values: clean}, nil
}

// Key returns the attribute the constraint applies to.
func (c Constraint) Key() listing.Key { return c.key }

// IsExact reports whether this is an exact-match constraint.
func (c Constraint) IsExact() bool { return c.kind == kindExact }

// IsRange reports whether this is a range constraint.
func (c Constraint) IsRange() bool { return c.kind == kindRange }

// IsValueSet reports whether this is a set-membership constraint.
func (c Constraint) IsValueSet() bool { return c.kind == kindValueSet }

// Exact returns the exact-match value.
func (c Constraint) Exact() string { return c.exact }

// Bounds returns the inclusive range bounds; either may be nil.
func (c Constraint) Bounds() (min, max *float64) { return c.min, c.max }

// Values returns the sorted, deduplicated value set.
func (c Constraint) Values() []string { return c.values }

// Matches evaluates the constraint against a listing record. Records
// missing the attribute never match.
func (c Constraint) Matches(r *listing.Record) bool {
	switch c.kind {
	case kindExact:
		return c.matchesExact(r)
	case kindRange:
		v, ok := r.Numeric(c.key)
		if !ok {
			return false
		}
		if c.min != nil && v < *c.min {
			return false
		}
		if c.max != nil && v > *c.max {
			return false
		}
		return true
	case kindValueSet:
		if listing.IsMulti(c.key) {
			set, ok := r.Set(c.key)
			if !ok {
				return false
			}
			for _, have := range set {
				for _, want := range c.values {
					if have == want {
						return true
					}
				}
			}
			return false
		}
		v, ok := r.Tag(c.key)
		if !ok {
			return false
		}
		for _, want := range c.values {
			if v == want {
				return true
			}
		}
		return false
	}
	return false
}

func (c Constraint) matchesExact(r *listing.Record) bool {
	attrKind, _ := listing.KindOf(c.key)
	switch attrKind {
	case listing.KindNumeric:
		v, ok := r.Numeric(c.key)
		if !ok {
			return false
		}
		want, _ := strconv.ParseFloat(c.exact, 64)
		return v == want
	case listing.KindMulti:
		set, ok := r.Set(c.key)
		if !ok {
			return false
		}
		for _, have := range set {
			if have == c.exact {
				return true
			}
		}
		return false
	default:
		v, ok := r.Tag(c.key)
		return ok && v == c.exact
	}
}

// MatchesAll reports whether the record satisfies every constraint.
func MatchesAll(r *listing.Record, cs []Constraint) bool {
	for _, c := range cs {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}

// GeoCircle is a center + radius constraint in kilometers.
type GeoCircle struct {
	lat      float64
	lng      float64
	radiusKm float64
}

// NewGeoCircle validates and creates a geo circle.
func NewGeoCircle(lat, lng, radiusKm float64) (GeoCircle, error) {
	if radiusKm <= 0 {
		return GeoCircle{}, fmt.Errorf("radius must be positive, got %g", radiusKm)
	}
	if !geo.ValidCoordinates(lat, lng) {
		return GeoCircle{}, fmt.Errorf("invalid center coordinates (%g, %g)", lat, lng)
	}
	return GeoCircle{lat: lat, lng: lng, radiusKm: radiusKm}, nil
}

// Lat returns the center latitude in degrees.
func (g GeoCircle) Lat() float64 { return g.lat }

// Lng returns the center longitude in degrees.
func (g GeoCircle) Lng() float64 { return g.lng }

// RadiusKm returns the radius in kilometers.
func (g GeoCircle) RadiusKm() float64 { return g.radiusKm }

// Spec is one validated filter request: at most one constraint per
// attribute plus an optional geo circle. Immutable once built.
type Spec struct {
	constraints map[listing.Key]Constraint
	geo         *GeoCircle
}

// NewSpec validates and creates a Spec.
func NewSpec(constraints []Constraint, circle *GeoCircle) (Spec, error) {
	if len(constraints) > MaxConstraints {
		return Spec{}, fmt.Errorf("too many constraints (max %d)", MaxConstraints)
	}
	byKey := make(map[listing.Key]Constraint, len(constraints))
	for _, c := range constraints {
		if c.kind == 0 {
			return Spec{}, fmt.Errorf("uninitialized constraint for %q", c.key)
		}
		if _, dup := byKey[c.key]; dup {
			return Spec{}, fmt.Errorf("duplicate constraint for %q", c.key)
		}
		byKey[c.key] = c
	}
	var g *GeoCircle
	if circle != nil {
		cp := *circle
		g = &cp
	}
	return Spec{constraints: byKey, geo: g}, nil
}

// Constraints returns the attribute constraints sorted by key.
func (s Spec) Constraints() []Constraint {
	out := make([]Constraint, 0, len(s.constraints))
	for _, c := range s.constraints {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Get returns the constraint on the given attribute, if any.
func (s Spec) Get(key listing.Key) (Constraint, bool) {
	c, ok := s.constraints[key]
	return c, ok
}

// Geo returns the geo circle, or nil.
func (s Spec) Geo() *GeoCircle {
	if s.geo == nil {
		return nil
	}
	cp := *s.geo
	return &cp
}

// Len returns the number of attribute constraints.
func (s Spec) Len() int { return len(s.constraints) }

// Without returns a copy of the spec with the constraint on key removed.
func (s Spec) Without(key listing.Key) Spec {
	out := Spec{constraints: make(map[listing.Key]Constraint, len(s.constraints)), geo: s.geo}
	for k, c := range s.constraints {
		if k != key {
			out.constraints[k] = c
		}
	}
	return out
}

// Normalize drops dependent constraints whose parents are unset (model
// without make, variant without make or model) and returns the dropped
// keys. The stricter of the two behaviors the product has shipped with.
func (s Spec) Normalize() (Spec, []listing.Key) {
	var dropped []listing.Key
	out := Spec{constraints: make(map[listing.Key]Constraint, len(s.constraints)), geo: s.geo}
	for k, c := range s.constraints {
		orphaned := false
		for _, parent := range listing.ParentChain(k) {
			if _, ok := s.constraints[parent]; !ok {
				orphaned = true
				break
			}
		}
		if orphaned {
			dropped = append(dropped, k)
			continue
		}
		out.constraints[k] = c
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i] < dropped[j] })
	return out, dropped
}

// Signature returns a canonical string for a constraint list, used to
// memoize identical store sub-queries within one request.
func Signature(cs []Constraint) string {
	parts := make([]string, 0, len(cs))
	for _, c := range cs {
		var b strings.Builder
		b.WriteString(string(c.key))
		switch c.kind {
		case kindExact:
			b.WriteString("=")
			b.WriteString(c.exact)
		case kindRange:
			b.WriteString("[")
			if c.min != nil {
				b.WriteString(strconv.FormatFloat(*c.min, 'f', -1, 64))
			}
			b.WriteString(":")
			if c.max != nil {
				b.WriteString(strconv.FormatFloat(*c.max, 'f', -1, 64))
			}
			b.WriteString("]")
		case kindValueSet:
			b.WriteString("{")
			b.WriteString(strings.Join(c.values, ","))
			b.WriteString("}")
		}
		parts = append(parts, b.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, "|")
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
