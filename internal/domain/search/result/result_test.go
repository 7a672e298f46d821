package result

import (
	"testing"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
)

func TestTableSortedValues(t *testing.T) {
	tbl := Table{"suv": 3, "coupe": 1, "hatchback": 7}
	got := tbl.SortedValues()
	want := []string{"coupe", "hatchback", "suv"}
	if len(got) != len(want) {
		t.Fatalf("SortedValues = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SortedValues[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNewFacetCountsInitialized(t *testing.T) {
	fc := NewFacetCounts()
	// All maps must be usable immediately.
	fc.Values[listing.FuelType] = Table{"petrol": 1}
	fc.ModelByMake["Toyota"] = Table{"Corolla": 2}
	fc.VariantByModel["Toyota"] = map[string]Table{"Corolla": {"GR": 1}}
	if fc.Values[listing.FuelType]["petrol"] != 1 {
		t.Error("Values map not writable")
	}
}

func TestQueryResultAccessors(t *testing.T) {
	r := New([]listing.ID{"L2", "L1"}, 5, nil)
	if r.Total() != 5 {
		t.Errorf("Total = %d", r.Total())
	}
	if len(r.IDs()) != 2 || r.IDs()[0] != "L2" {
		t.Errorf("IDs = %v", r.IDs())
	}
	if r.Facets() != nil {
		t.Error("Facets should be nil when not provided")
	}
}
