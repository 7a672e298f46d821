package query

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/request"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/sortorder"
)

// mockStore is an in-memory Store that evaluates constraints directly
// and counts calls, so tests can assert both results and fan-out
// behavior. failSignature makes the matching sub-query with that
// canonical signature fail.
type mockStore struct {
	mu sync.Mutex

	records map[listing.ID]*listing.Record

	findCalls int
	getCalls  int

	failSignature string
	failErr       error
	failGet       error
}

func newMockStore(records ...*listing.Record) *mockStore {
	s := &mockStore{records: make(map[listing.ID]*listing.Record)}
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return s
}

func (s *mockStore) FindMatching(
	_ context.Context, constraints []filter.Constraint, includeInactive bool,
) ([]listing.ID, error) {
	s.mu.Lock()
	s.findCalls++
	s.mu.Unlock()

	if s.failErr != nil && filter.Signature(constraints) == s.failSignature {
		return nil, s.failErr
	}

	var ids []listing.ID
	for id, rec := range s.records {
		if !rec.Active && !includeInactive {
			continue
		}
		if filter.MatchesAll(rec, constraints) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *mockStore) GetAttributes(
	_ context.Context, ids []listing.ID, _ []listing.Key,
) (map[listing.ID]*listing.Record, error) {
	s.mu.Lock()
	s.getCalls++
	s.mu.Unlock()

	if s.failGet != nil {
		return nil, s.failGet
	}

	out := make(map[listing.ID]*listing.Record, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

// car builds an active test listing. Mutate the returned record for
// scenario specifics.
func car(id listing.ID, mk, model string, price float64, published int64) *listing.Record {
	return &listing.Record{
		ID:          id,
		Active:      true,
		PublishedAt: published,
		Tags: map[listing.Key]string{
			listing.Make:  mk,
			listing.Model: model,
		},
		Numerics: map[listing.Key]float64{
			listing.Price: price,
		},
		Sets: map[listing.Key][]string{},
	}
}

func exact(t *testing.T, key listing.Key, value string) filter.Constraint {
	t.Helper()
	c, err := filter.NewExact(key, value)
	if err != nil {
		t.Fatalf("NewExact(%s, %s): %v", key, value, err)
	}
	return c
}

func rangeC(t *testing.T, key listing.Key, min, max *float64) filter.Constraint {
	t.Helper()
	c, err := filter.NewRange(key, min, max)
	if err != nil {
		t.Fatalf("NewRange(%s): %v", key, err)
	}
	return c
}

func valueSet(t *testing.T, key listing.Key, values ...string) filter.Constraint {
	t.Helper()
	c, err := filter.NewValueSet(key, values...)
	if err != nil {
		t.Fatalf("NewValueSet(%s): %v", key, err)
	}
	return c
}

func spec(t *testing.T, circle *filter.GeoCircle, cs ...filter.Constraint) filter.Spec {
	t.Helper()
	sp, err := filter.NewSpec(cs, circle)
	if err != nil {
		t.Fatalf("NewSpec: %v", err)
	}
	return sp
}

func circle(t *testing.T, lat, lng, radiusKm float64) *filter.GeoCircle {
	t.Helper()
	c, err := filter.NewGeoCircle(lat, lng, radiusKm)
	if err != nil {
		t.Fatalf("NewGeoCircle: %v", err)
	}
	return &c
}

func searchReq(
	t *testing.T, sp filter.Spec, page, pageSize int,
	order sortorder.Order, wantFacets bool,
) *request.Request {
	t.Helper()
	req, err := request.New(sp, page, pageSize, order, wantFacets)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &req
}

func f64(v float64) *float64 { return &v }

func wantIDs(t *testing.T, got []listing.ID, want ...listing.ID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ids = %v, want %v", got, want)
		}
	}
}
