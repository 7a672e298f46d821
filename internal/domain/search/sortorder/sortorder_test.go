package sortorder

import "testing"

func TestIsValid(t *testing.T) {
	for _, o := range []Order{DateDesc, DistanceAsc} {
		if !o.IsValid() {
			t.Errorf("%s should be valid", o)
		}
	}
	for _, o := range []Order{"", "price_asc", "random"} {
		if o.IsValid() {
			t.Errorf("%q should be invalid", o)
		}
	}
}
