package listing

import "testing"

func TestParentChain(t *testing.T) {
	tests := []struct {
		key  Key
		want []Key
	}{
		{Variant, []Key{Make, Model}},
		{Model, []Key{Make}},
		{Make, nil},
		{FuelType, nil},
	}
	for _, tt := range tests {
		got := ParentChain(tt.key)
		if len(got) != len(tt.want) {
			t.Fatalf("ParentChain(%s) = %v, want %v", tt.key, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("ParentChain(%s)[%d] = %s, want %s", tt.key, i, got[i], tt.want[i])
			}
		}
	}
}

func TestFacetSetsAreDisjoint(t *testing.T) {
	seen := make(map[Key]string)
	for _, k := range EnumFacets() {
		seen[k] = "enum"
	}
	for _, k := range RangeFacets() {
		if role, ok := seen[k]; ok {
			t.Errorf("key %s appears in both %s and range facets", k, role)
		}
		seen[k] = "range"
	}
	for _, k := range []Key{Model, Variant} {
		if role, ok := seen[k]; ok {
			t.Errorf("dependent key %s also listed as %s facet", k, role)
		}
	}
}

func TestEnumFacetsSorted(t *testing.T) {
	keys := EnumFacets()
	for i := 1; i < len(keys); i++ {
		if keys[i-1] >= keys[i] {
			t.Fatalf("EnumFacets not sorted: %s before %s", keys[i-1], keys[i])
		}
	}
}

func TestKindOf(t *testing.T) {
	if kind, ok := KindOf(Extras); !ok || kind != KindMulti {
		t.Errorf("KindOf(extras) = %v, %v", kind, ok)
	}
	if !IsMulti(VehicleHistory) {
		t.Error("vehicle_history should be multi-valued")
	}
	if IsMulti(FuelType) {
		t.Error("fuel_type should not be multi-valued")
	}
	if _, ok := KindOf("no_such_attr"); ok {
		t.Error("unknown key should not resolve")
	}
}
