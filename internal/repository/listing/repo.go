// Package listing implements the listing store over a db.Store backend:
// one hash per listing plus active/inactive id sets. Predicate matching
// runs in-process over decoded records, so the backend only needs bulk
// hash reads — no query engine of its own.
package listing

import (
	"context"
	"fmt"
	"sort"

	"github.com/llkotidis/AutoAgora-sub000/internal/domain"
	domlisting "github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/domain/search/filter"
	"github.com/llkotidis/AutoAgora-sub000/internal/db"
)

// DefaultKeyPrefix namespaces all repository keys.
const DefaultKeyPrefix = "autoagora:"

// Repo is a listing repository over a db.Store.
type Repo struct {
	store  db.Store
	prefix string
}

// New creates a repository with the default key prefix.
func New(store db.Store) *Repo {
	return &Repo{store: store, prefix: DefaultKeyPrefix}
}

// WithKeyPrefix overrides the key prefix.
func (r *Repo) WithKeyPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

func (r *Repo) listingKey(id domlisting.ID) string {
	return r.prefix + "listing:" + string(id)
}

func (r *Repo) activeKey() string   { return r.prefix + "listings:active" }
func (r *Repo) inactiveKey() string { return r.prefix + "listings:inactive" }

// Put stores a listing and files it under the matching id set. The
// stored hash is replaced, not merged: a re-put drops attributes the
// new record no longer carries.
func (r *Repo) Put(ctx context.Context, rec *domlisting.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: listing id is required", domain.ErrValidation)
	}
	key := r.listingKey(rec.ID)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("%w: clear %s: %w", domain.ErrStoreUnavailable, rec.ID, err)
	}
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("%w: put %s: %w", domain.ErrStoreUnavailable, rec.ID, err)
	}
	addTo, removeFrom := r.activeKey(), r.inactiveKey()
	if !rec.Active {
		addTo, removeFrom = removeFrom, addTo
	}
	if err := r.store.SAdd(ctx, addTo, string(rec.ID)); err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrStoreUnavailable, rec.ID, err)
	}
	if err := r.store.SRem(ctx, removeFrom, string(rec.ID)); err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrStoreUnavailable, rec.ID, err)
	}
	return nil
}

// PutMulti bulk-loads listings: all hashes go out in one round-trip,
// then each id set is updated once. Meant for import jobs reseeding the
// store, where per-listing Put round-trips add up.
func (r *Repo) PutMulti(ctx context.Context, recs []*domlisting.Record) error {
	if len(recs) == 0 {
		return nil
	}

	keys := make([]string, len(recs))
	items := make([]db.HashSetItem, len(recs))
	var active, inactive []string
	for i, rec := range recs {
		if rec.ID == "" {
			return fmt.Errorf("%w: listing id is required", domain.ErrValidation)
		}
		keys[i] = r.listingKey(rec.ID)
		items[i] = db.HashSetItem{Key: keys[i], Fields: buildHashFields(rec)}
		if rec.Active {
			active = append(active, string(rec.ID))
		} else {
			inactive = append(inactive, string(rec.ID))
		}
	}

	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("%w: bulk clear: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("%w: bulk put: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, r.activeKey(), active...); err != nil {
		return fmt.Errorf("%w: bulk index: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, r.inactiveKey(), active...); err != nil {
		return fmt.Errorf("%w: bulk index: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SAdd(ctx, r.inactiveKey(), inactive...); err != nil {
		return fmt.Errorf("%w: bulk index: %w", domain.ErrStoreUnavailable, err)
	}
	if err := r.store.SRem(ctx, r.activeKey(), inactive...); err != nil {
		return fmt.Errorf("%w: bulk index: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns one listing.
func (r *Repo) Get(ctx context.Context, id domlisting.ID) (*domlisting.Record, error) {
	fields, err := r.store.HGetAll(ctx, r.listingKey(id))
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
	}
	return parseHashFields(id, fields), nil
}

// MarkSold deactivates a listing. The next query sees the transition
// immediately: there is no cache between the sets and FindMatching.
func (r *Repo) MarkSold(ctx context.Context, id domlisting.ID) error {
	return r.setActive(ctx, id, false)
}

// MarkAvailable reactivates a listing.
func (r *Repo) MarkAvailable(ctx context.Context, id domlisting.ID) error {
	return r.setActive(ctx, id, true)
}

func (r *Repo) setActive(ctx context.Context, id domlisting.ID, active bool) error {
	src, dst, flag := r.activeKey(), r.inactiveKey(), "0"
	if active {
		src, dst, flag = r.inactiveKey(), r.activeKey(), "1"
	}

	moved, err := r.store.SMove(ctx, src, dst, string(id))
	if err != nil {
		return fmt.Errorf("%w: move %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	if !moved {
		// Not in the source set: either already in the target state or
		// unknown to the repository.
		known, err := r.store.SIsMember(ctx, dst, string(id))
		if err != nil {
			return fmt.Errorf("%w: check %s: %w", domain.ErrStoreUnavailable, id, err)
		}
		if !known {
			return fmt.Errorf("%w: %s", domain.ErrListingNotFound, id)
		}
	}
	if err := r.store.HSet(ctx, r.listingKey(id), map[string]string{fieldActive: flag}); err != nil {
		return fmt.Errorf("%w: flag %s: %w", domain.ErrStoreUnavailable, id, err)
	}
	return nil
}

// FindMatching returns the ids of listings satisfying every constraint.
// Only active listings participate unless includeInactive is set. Ids
// come back sorted for deterministic downstream ordering.
func (r *Repo) FindMatching(
	ctx context.Context, constraints []filter.Constraint, includeInactive bool,
) ([]domlisting.ID, error) {
	records, err := r.scan(ctx, includeInactive)
	if err != nil {
		return nil, err
	}

	var ids []domlisting.ID
	for _, rec := range records {
		if filter.MatchesAll(rec, constraints) {
			ids = append(ids, rec.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// GetAttributes bulk-fetches the requested attributes for a set of ids.
// Records for missing ids are omitted, never an error.
func (r *Repo) GetAttributes(
	ctx context.Context, ids []domlisting.ID, keys []domlisting.Key,
) (map[domlisting.ID]*domlisting.Record, error) {
	if len(ids) == 0 {
		return map[domlisting.ID]*domlisting.Record{}, nil
	}

	hashKeys := make([]string, len(ids))
	for i, id := range ids {
		hashKeys[i] = r.listingKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, hashKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: bulk fetch: %w", domain.ErrStoreUnavailable, err)
	}

	out := make(map[domlisting.ID]*domlisting.Record, len(ids))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		out[ids[i]] = project(parseHashFields(ids[i], fields), keys)
	}
	return out, nil
}

// scan loads every listing in scope in one DoMulti round-trip.
func (r *Repo) scan(ctx context.Context, includeInactive bool) ([]*domlisting.Record, error) {
	members, err := r.store.SMembers(ctx, r.activeKey())
	if err != nil {
		return nil, fmt.Errorf("%w: scan active: %w", domain.ErrStoreUnavailable, err)
	}
	if includeInactive {
		inactive, err := r.store.SMembers(ctx, r.inactiveKey())
		if err != nil {
			return nil, fmt.Errorf("%w: scan inactive: %w", domain.ErrStoreUnavailable, err)
		}
		members = append(members, inactive...)
	}
	if len(members) == 0 {
		return nil, nil
	}

	hashKeys := make([]string, len(members))
	for i, id := range members {
		hashKeys[i] = r.listingKey(domlisting.ID(id))
	}
	hashes, err := r.store.HGetAllMulti(ctx, hashKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: scan fetch: %w", domain.ErrStoreUnavailable, err)
	}

	records := make([]*domlisting.Record, 0, len(members))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		records = append(records, parseHashFields(domlisting.ID(members[i]), fields))
	}
	return records, nil
}

// project strips a record down to the requested attribute keys. Engine
// state (id, active flag, publication date, coordinates) always stays.
func project(rec *domlisting.Record, keys []domlisting.Key) *domlisting.Record {
	if len(keys) == 0 {
		return rec
	}
	out := &domlisting.Record{
		ID:          rec.ID,
		Active:      rec.Active,
		PublishedAt: rec.PublishedAt,
		Coords:      rec.Coords,
		Tags:        make(map[domlisting.Key]string),
		Numerics:    make(map[domlisting.Key]float64),
		Sets:        make(map[domlisting.Key][]string),
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
