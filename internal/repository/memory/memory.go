// Package memory implements the listing store over an in-process map.
// It backs the engine in tests and in embedded library use, where the
// dataset is loaded once and queried read-mostly.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
)

// Store is an in-memory listing store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[listing.ID]*listing.Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[listing.ID]*listing.Record)}
}

// Put stores or replaces a listing. The record is copied.
func (s *Store) Put(_ context.Context, rec *listing.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = clone(rec)
	return nil
}

// Get returns one listing.
func (s *Store) Get(_ context.Context, id listing.ID) (*listing.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	return clone(rec), nil
}

// MarkSold deactivates a listing; the next query sees it immediately.
func (s *Store) MarkSold(ctx context.Context, id listing.ID) error {
	return s.setActive(ctx, id, false)
}

// MarkAvailable reactivates a listing.
func (s *Store) MarkAvailable(ctx context.Context, id listing.ID) error {
	return s.setActive(ctx, id, true)
}

func (s *Store) setActive(_ context.Context, id listing.ID, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	rec.Active = active
	return nil
}

// FindMatching returns sorted ids of listings satisfying every
// constraint. Only active listings participate unless includeInactive.
func (s *Store) FindMatching(
	_ context.Context, constraints []filter.Constraint, includeInactive bool,
) ([]listing.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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

// GetAttributes bulk-fetches attributes for a set of ids. Missing ids
// are omitted.
func (s *Store) GetAttributes(
	_ context.Context, ids []listing.ID, keys []listing.Key,
) (map[listing.ID]*listing.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[listing.ID]*listing.Record, len(ids))
	for _, id := range ids {
		rec, ok := s.records[id]
		if !ok {
			continue
		}
		out[id] = project(clone(rec), keys)
	}
	return out, nil
}

// Ping always succeeds; the store lives in the caller's process.
func (s *Store) Ping(context.Context) error { return nil }

func clone(rec *listing.Record) *listing.Record {
	cp := &listing.Record{
		ID:          rec.ID,
		Active:      rec.Active,
		PublishedAt: rec.PublishedAt,
		Tags:        make(map[listing.Key]string, len(rec.Tags)),
		Numerics:    make(map[listing.Key]float64, len(rec.Numerics)),
		Sets:        make(map[listing.Key][]string, len(rec.Sets)),
	}
	for k, v := range rec.Tags {
		cp.Tags[k] = v
	}
	for k, v := range rec.Numerics {
		cp.Numerics[k] = v
	}
	for k, v := range rec.Sets {
		cp.Sets[k] = append([]string(nil), v...)
	}
	if rec.Coords != nil {
		c := *rec.Coords
		cp.Coords = &c
	}
	return cp
}

func project(rec *listing.Record, keys []listing.Key) *listing.Record {
	if len(keys) == 0 {
		return rec
	}
	out := &listing.Record{
		ID:          rec.ID,
		Active:      rec.Active,
		PublishedAt: rec.PublishedAt,
		Coords:      rec.Coords,
		Tags:        make(map[listing.Key]string),
		Numerics:    make(map[listing.Key]float64),
		Sets:        make(map[listing.Key][]string),
	}
	for _, k := range keys {
		if v, ok := rec.Tags[k]; ok {
			out.Tags[k] = v
		}
		if v, ok := rec.Numerics[k]; ok {
			out.Numerics[k] = v
		}
		if v, ok := rec.Sets[k]; ok {
			out.Sets[k] = v
		}
	}
	return out
}
