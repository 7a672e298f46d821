package filter

import (
	"strings"
	"testing"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
)

func f64(v float64) *float64 { return &v }

func mustExact(t *testing.T, key listing.Key, value string) Constraint {
	t.Helper()
	c, err := NewExact(key, value)
	if err != nil {
		t.Fatalf("NewExact(%s, %s): %v", key, value, err)
	}
	return c
}

func mustRange(t *testing.T, key listing.Key, min, max *float64) Constraint {
	t.Helper()
	c, err := NewRange(key, min, max)
	if err != nil {
		t.Fatalf("NewRange(%s): %v", key, err)
	}
	return c
}

func mustSpec(t *testing.T, circle *GeoCircle, cs ...Constraint) Spec {
	t.Helper()
	s, err := NewSpec(cs, circle)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	return s
}

func testRecord() *listing.Record {
	return &listing.Record{
		ID:     "L1",
		Active: true,
		Tags: map[listing.Key]string{
			listing.Make:         "Toyota",
			listing.Model:        "Corolla",
			listing.FuelType:     "petrol",
			listing.Transmission: "manual",
		},
		Numerics: map[listing.Key]float64{
			listing.Price: 10000,
			listing.Year:  2015,
		},
		Sets: map[listing.Key][]string{
			listing.Extras: {"sunroof", "leather_seats"},
		},
	}
}

func TestNewExact(t *testing.T) {
	if _, err := NewExact("no_such_attr", "x"); err == nil {
		t.Error("unknown attribute should be rejected")
	}
	if _, err := NewExact(listing.Make, "  "); err == nil {
		t.Error("blank value should be rejected")
	}
	if _, err := NewExact(listing.Price, "cheap"); err == nil {
		t.Error("non-numeric value on numeric attribute should be rejected")
	}
	c := mustExact(t, listing.Make, " Toyota ")
	if c.Exact() != "Toyota" {
		t.Errorf("value not trimmed: %q", c.Exact())
	}
}

func TestNewRange(t *testing.T) {
	if _, err := NewRange(listing.Price, nil, nil); err == nil {
		t.Error("range without bounds should be rejected")
	}
	if _, err := NewRange(listing.Price, f64(200), f64(100)); err == nil {
		t.Error("min > max should be rejected")
	}
	if _, err := NewRange(listing.Make, f64(1), nil); err == nil {
		t.Error("range on non-numeric attribute should be rejected")
	}
	if _, err := NewRange(listing.Price, f64(100), nil); err != nil {
		t.Errorf("min-only range should be accepted: %v", err)
	}
	if _, err := NewRange(listing.Price, nil, f64(100)); err != nil {
		t.Errorf("max-only range should be accepted: %v", err)
	}
}

func TestNewValueSet_Dedup(t *testing.T) {
	c, err := NewValueSet(listing.FuelType, "petrol", " diesel", "petrol", "")
	if err != nil {
		t.Fatal(err)
	}
	got := c.Values()
	if len(got) != 2 || got[0] != "diesel" || got[1] != "petrol" {
		t.Errorf("Values() = %v, want [diesel petrol]", got)
	}
	if _, err := NewValueSet(listing.FuelType, "", "  "); err == nil {
		t.Error("all-blank value set should be rejected")
	}
}

func TestNewGeoCircle(t *testing.T) {
	if _, err := NewGeoCircle(35, 33, 0); err == nil {
		t.Error("zero radius should be rejected")
	}
	if _, err := NewGeoCircle(35, 33, -1); err == nil {
		t.Error("negative radius should be rejected")
	}
	if _, err := NewGeoCircle(95, 33, 10); err == nil {
		t.Error("bad latitude should be rejected")
	}
	g, err := NewGeoCircle(35.05, 33.05, 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.Lat() != 35.05 || g.Lng() != 33.05 || g.RadiusKm() != 20 {
		t.Errorf("accessors returned %g %g %g", g.Lat(), g.Lng(), g.RadiusKm())
	}
}

func TestConstraintMatches(t *testing.T) {
	r := testRecord()
	tests := []struct {
		name string
		c    Constraint
		want bool
	}{
		{"exact tag hit", mustExact(t, listing.Make, "Toyota"), true},
		{"exact tag miss", mustExact(t, listing.Make, "Honda"), false},
		{"exact numeric hit", mustExact(t, listing.Year, "2015"), true},
		{"exact numeric miss", mustExact(t, listing.Year, "2016"), false},
		{"exact on multi", mustExact(t, listing.Extras, "sunroof"), true},
		{"range inside", mustRange(t, listing.Price, f64(5000), f64(15000)), true},
		{"range boundary inclusive", mustRange(t, listing.Price, f64(10000), f64(10000)), true},
		{"range below min", mustRange(t, listing.Price, f64(12000), nil), false},
		{"range above max", mustRange(t, listing.Price, nil, f64(9999)), false},
		{"range missing attr", mustRange(t, listing.Mileage, f64(0), nil), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.Matches(r); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValueSetMatches(t *testing.T) {
	r := testRecord()
	anyFuel, _ := NewValueSet(listing.FuelType, "diesel", "petrol")
	if !anyFuel.Matches(r) {
		t.Error("value set should match-any on tags")
	}
	noFuel, _ := NewValueSet(listing.FuelType, "electric")
	if noFuel.Matches(r) {
		t.Error("value set with no overlap should not match")
	}
	anyExtra, _ := NewValueSet(listing.Extras, "tow_bar", "sunroof")
	if !anyExtra.Matches(r) {
		t.Error("multi-valued attribute should match on intersection")
	}
}

func TestSpecRejectsDuplicates(t *testing.T) {
	_, err := NewSpec([]Constraint{
		mustExact(t, listing.Make, "Toyota"),
		mustExact(t, listing.Make, "Honda"),
	}, nil)
	if err == nil {
		t.Error("duplicate key should be rejected")
	}
}

func TestSpecWithout(t *testing.T) {
	s := mustSpec(t, nil,
		mustExact(t, listing.Make, "Toyota"),
		mustRange(t, listing.Price, f64(5000), nil),
	)
	trimmed := s.Without(listing.Make)
	if _, ok := trimmed.Get(listing.Make); ok {
		t.Error("make should be removed")
	}
	if _, ok := trimmed.Get(listing.Price); !ok {
		t.Error("price should remain")
	}
	// Original untouched.
	if _, ok := s.Get(listing.Make); !ok {
		t.Error("Without must not mutate the receiver")
	}
}

func TestNormalizeDropsOrphanedDependents(t *testing.T) {
	s := mustSpec(t, nil, mustExact(t, listing.Model, "Corolla"))
	norm, dropped := s.Normalize()
	if norm.Len() != 0 {
		t.Errorf("orphaned model should be dropped, got %d constraints", norm.Len())
	}
	if len(dropped) != 1 || dropped[0] != listing.Model {
		t.Errorf("dropped = %v, want [model]", dropped)
	}

	// Variant needs both make and model.
	s = mustSpec(t, nil,
		mustExact(t, listing.Make, "Toyota"),
		mustExact(t, listing.Variant, "GR Sport"),
	)
	norm, dropped = s.Normalize()
	if _, ok := norm.Get(listing.Variant); ok {
		t.Error("variant without model should be dropped")
	}
	if _, ok := norm.Get(listing.Make); !ok {
		t.Error("make should survive normalization")
	}
	if len(dropped) != 1 || dropped[0] != listing.Variant {
		t.Errorf("dropped = %v, want [variant]", dropped)
	}

	// Full chain intact: nothing dropped.
	s = mustSpec(t, nil,
		mustExact(t, listing.Make, "Toyota"),
		mustExact(t, listing.Model, "Corolla"),
		mustExact(t, listing.Variant, "GR Sport"),
	)
	norm, dropped = s.Normalize()
	if norm.Len() != 3 || len(dropped) != 0 {
		t.Errorf("intact chain altered: %d constraints, dropped %v", norm.Len(), dropped)
	}
}

func TestSignatureCanonical(t *testing.T) {
	a := mustExact(t, listing.Make, "Toyota")
	b := mustRange(t, listing.Price, f64(5000), f64(15000))
	s1 := Signature([]Constraint{a, b})
	s2 := Signature([]Constraint{b, a})
	if s1 != s2 {
		t.Errorf("signature depends on order: %q vs %q", s1, s2)
	}
	if !strings.Contains(s1, "make=Toyota") {
		t.Errorf("signature missing exact clause: %q", s1)
	}
	c := mustRange(t, listing.Price, f64(5000), nil)
	if Signature([]Constraint{a, b}) == Signature([]Constraint{a, c}) {
		t.Error("different bounds must produce different signatures")
	}
}
