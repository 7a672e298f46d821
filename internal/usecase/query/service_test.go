package query

import (
	"context"
	"errors"
	"testing"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
)

// Cyprus fixtures: Larnaca is ~40 km from Nicosia, Limassol ~64 km.
var (
	nicosia  = listing.Coords{Lat: 35.1856, Lng: 33.3823}
	larnaca  = listing.Coords{Lat: 34.9003, Lng: 33.6232}
	limassol = listing.Coords{Lat: 34.7071, Lng: 33.0226}
)

func TestRunMatchesAndOrdersByDateDesc(t *testing.T) {
	store := newMockStore(
		car("L1", "Toyota", "Corolla", 10000, 100),
		car("L2", "Toyota", "Yaris", 12000, 300),
		car("L3", "Honda", "Civic", 15000, 200),
	)
	svc := New(store)

	req := searchReq(t, spec(t, nil, exact(t, listing.Make, "Toyota")),
		0, 10, sortorder.DateDesc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 2 {
		t.Errorf("total = %d, want 2", res.Total())
	}
	wantIDs(t, res.IDs(), "L2", "L1")
}

func TestRunDateTieBreaksOnID(t *testing.T) {
	store := newMockStore(
		car("B", "Toyota", "Corolla", 10000, 500),
		car("A", "Toyota", "Yaris", 12000, 500),
		car("C", "Toyota", "Aygo", 9000, 500),
	)
	svc := New(store)

	req := searchReq(t, spec(t, nil), 0, 10, sortorder.DateDesc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs(t, res.IDs(), "A", "B", "C")
}

func TestRunPaginates(t *testing.T) {
	store := newMockStore(
		car("L1", "Toyota", "Corolla", 10000, 50),
		car("L2", "Toyota", "Yaris", 11000, 40),
		car("L3", "Toyota", "Aygo", 12000, 30),
		car("L4", "Toyota", "Hilux", 13000, 20),
		car("L5", "Toyota", "Supra", 14000, 10),
	)
	svc := New(store)
	ctx := context.Background()

	cases := []struct {
		page int
		want []listing.ID
	}{
		{0, []listing.ID{"L1", "L2"}},
		{1, []listing.ID{"L3", "L4"}},
		{2, []listing.ID{"L5"}},
		{3, []listing.ID{}},
	}
	for _, tc := range cases {
		req := searchReq(t, spec(t, nil), tc.page, 2, sortorder.DateDesc, false)
		res, err := svc.Run(ctx, req)
		if err != nil {
			t.Fatal(err)
		}
		if res.Total() != 5 {
			t.Errorf("page %d: total = %d, want 5", tc.page, res.Total())
		}
		wantIDs(t, res.IDs(), tc.want...)
	}
}

func TestRunGeoRadius(t *testing.T) {
	near := car("near", "Toyota", "Corolla", 10000, 100)
	near.Coords = &larnaca
	far := car("far", "Toyota", "Yaris", 11000, 200)
	far.Coords = &limassol
	nowhere := car("nowhere", "Toyota", "Aygo", 12000, 300)

	store := newMockStore(near, far, nowhere)
	svc := New(store)

	req := searchReq(t,
		spec(t, circle(t, nicosia.Lat, nicosia.Lng, 50), exact(t, listing.Make, "Toyota")),
		0, 10, sortorder.DateDesc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	// Limassol is outside 50 km; a listing without coordinates never
	// matches a geo query.
	if res.Total() != 1 {
		t.Errorf("total = %d, want 1", res.Total())
	}
	wantIDs(t, res.IDs(), "near")
}

func TestRunDistanceAscOrdering(t *testing.T) {
	a := car("larnaca", "Toyota", "Corolla", 10000, 100)
	a.Coords = &larnaca
	b := car("limassol", "Toyota", "Yaris", 11000, 900)
	b.Coords = &limassol
	c := car("nicosia", "Toyota", "Aygo", 12000, 500)
	c.Coords = &listing.Coords{Lat: 35.17, Lng: 33.36}

	store := newMockStore(a, b, c)
	svc := New(store)

	req := searchReq(t,
		spec(t, circle(t, nicosia.Lat, nicosia.Lng, 100)),
		0, 10, sortorder.DistanceAsc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs(t, res.IDs(), "nicosia", "larnaca", "limassol")
}

func TestRunDropsOrphanedModelConstraint(t *testing.T) {
	store := newMockStore(
		car("L1", "Toyota", "Corolla", 10000, 100),
		car("L2", "Honda", "Civic", 15000, 200),
	)
	svc := New(store)

	// Model without make is dropped, so both listings match.
	req := searchReq(t, spec(t, nil, exact(t, listing.Model, "Corolla")),
		0, 10, sortorder.DateDesc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 2 {
		t.Errorf("total = %d, want 2 (orphaned model constraint kept?)", res.Total())
	}
}

func TestRunRangeConstraint(t *testing.T) {
	store := newMockStore(
		car("cheap", "Toyota", "Aygo", 8000, 100),
		car("mid", "Toyota", "Corolla", 15000, 200),
		car("dear", "Toyota", "Supra", 40000, 300),
	)
	svc := New(store)

	req := searchReq(t,
		spec(t, nil, rangeC(t, listing.Price, f64(10000), f64(20000))),
		0, 10, sortorder.DateDesc, false)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs(t, res.IDs(), "mid")
}

func TestRunStoreFailure(t *testing.T) {
	store := newMockStore(car("L1", "Toyota", "Corolla", 10000, 100))
	store.failSignature = "make=Toyota"
	store.failErr = domain.ErrStoreUnavailable

	svc := New(store)
	req := searchReq(t, spec(t, nil, exact(t, listing.Make, "Toyota")),
		0, 10, sortorder.DateDesc, false)
	_, err := svc.Run(context.Background(), req)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("err = %v, want ErrStoreUnavailable", err)
	}
	if errors.Is(err, domain.ErrFacetCounts) {
		t.Error("primary failure must not wear the facet error")
	}
}

func TestRunFacetFailureKeepsPrimaryResult(t *testing.T) {
	store := newMockStore(
		car("L1", "Toyota", "Corolla", 10000, 100),
		car("L2", "Toyota", "Yaris", 12000, 200),
	)
	// The primary query carries both constraints; the fuel-type facet
	// sub-query drops its own and runs with make only. Failing that
	// signature hits facet counting but not the primary match.
	store.failSignature = "make=Toyota"
	store.failErr = domain.ErrStoreUnavailable

	rec := store.records["L1"]
	rec.Tags[listing.FuelType] = "petrol"
	store.records["L2"].Tags[listing.FuelType] = "petrol"

	svc := New(store)
	req := searchReq(t,
		spec(t, nil, exact(t, listing.Make, "Toyota"), exact(t, listing.FuelType, "petrol")),
		0, 10, sortorder.DateDesc, true)
	res, err := svc.Run(context.Background(), req)
	if !errors.Is(err, domain.ErrFacetCounts) {
		t.Fatalf("err = %v, want ErrFacetCounts", err)
	}
	if res.Total() != 2 || len(res.IDs()) != 2 {
		t.Errorf("primary result lost: total=%d ids=%v", res.Total(), res.IDs())
	}
	if res.Facets() != nil {
		t.Error("facets must be nil on counting failure")
	}
}

func TestRunMemoizesIdenticalSubQueries(t *testing.T) {
	store := newMockStore(
		car("L1", "Toyota", "Corolla", 10000, 100),
	)
	svc := New(store)

	// No constraints: every facet sub-query shares the empty signature
	// with the primary match, so the store sees exactly one match call.
	req := searchReq(t, spec(t, nil), 0, 10, sortorder.DateDesc, true)
	if _, err := svc.Run(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if store.findCalls != 1 {
		t.Errorf("findCalls = %d, want 1 (memoization broken)", store.findCalls)
	}
}

func TestRunEmptyResultWithFacets(t *testing.T) {
	store := newMockStore(car("L1", "Honda", "Civic", 15000, 100))
	svc := New(store)

	req := searchReq(t, spec(t, nil, exact(t, listing.Make, "Lada")),
		0, 10, sortorder.DateDesc, true)
	res, err := svc.Run(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 0 {
		t.Errorf("total = %d, want 0", res.Total())
	}
	fc := res.Facets()
	if fc == nil {
		t.Fatal("facets missing")
	}
	// The make facet drops its own constraint, so Honda still counts.
	if fc.Values[listing.Make]["Honda"] != 1 {
		t.Errorf("make table = %v, want Honda:1", fc.Values[listing.Make])
	}
}
