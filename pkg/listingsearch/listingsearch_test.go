package listingsearch

import (
	"context"
	"errors"
	"testing"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
)

func seed(t *testing.T) *Client {
	t.Helper()
	c := New()
	ctx := context.Background()

	records := []*Record{
		{
			ID: "L1", Active: true, PublishedAt: 100,
			Tags:     map[Key]string{"make": "Toyota", "model": "Corolla", "fuel_type": "petrol"},
			Numerics: map[Key]float64{"price": 10000},
		},
		{
			ID: "L2", Active: true, PublishedAt: 200,
			Tags:     map[Key]string{"make": "Toyota", "model": "Yaris", "fuel_type": "diesel"},
			Numerics: map[Key]float64{"price": 12000},
		},
		{
			ID: "L3", Active: true, PublishedAt: 300,
			Tags:     map[Key]string{"make": "Honda", "model": "Civic", "fuel_type": "petrol"},
			Numerics: map[Key]float64{"price": 15000},
		},
	}
	for _, rec := range records {
		if err := c.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func TestEmbeddedSearch(t *testing.T) {
	c := seed(t)

	mk, err := NewExact("make", "Toyota")
	if err != nil {
		t.Fatal(err)
	}
	spec, err := NewSpec([]Constraint{mk}, nil)
	if err != nil {
		t.Fatal(err)
	}
	req, err := NewRequest(spec, 0, 10, DateDesc, true)
	if err != nil {
		t.Fatal(err)
	}

	res, err := c.Search(context.Background(), &req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 2 {
		t.Errorf("total = %d, want 2", res.Total())
	}
	ids := res.IDs()
	if len(ids) != 2 || ids[0] != "L2" || ids[1] != "L1" {
		t.Errorf("ids = %v, want [L2 L1]", ids)
	}

	fc := res.Facets()
	if fc == nil {
		t.Fatal("facets missing")
	}
	if fc.Values["make"]["Honda"] != 1 {
		t.Errorf("make facet = %v, want Honda:1 (own constraint excluded)", fc.Values["make"])
	}
}

func TestEmbeddedSoldToggle(t *testing.T) {
	c := seed(t)
	ctx := context.Background()

	if err := c.MarkSold(ctx, "L1"); err != nil {
		t.Fatal(err)
	}

	spec, err := NewSpec(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	req, err := NewRequest(spec, 0, 10, DateDesc, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err := c.Search(ctx, &req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 2 {
		t.Errorf("total after sold = %d, want 2", res.Total())
	}

	if err := c.MarkAvailable(ctx, "L1"); err != nil {
		t.Fatal(err)
	}
	res, err = c.Search(ctx, &req)
	if err != nil {
		t.Fatal(err)
	}
	if res.Total() != 3 {
		t.Errorf("total after relist = %d, want 3", res.Total())
	}
}

func TestEmbeddedGetMissing(t *testing.T) {
	c := New()
	if _, err := c.Get(context.Background(), "ghost"); !errors.Is(err, domain.ErrListingNotFound) {
		t.Errorf("err = %v, want ErrListingNotFound", err)
	}
}
