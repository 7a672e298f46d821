package listing

import (
	"context"
	"testing"
	"time"

	domlisting "github.com/llkotidis/AutoAgora-sub000/internal/domain/listing"
	"github.com/llkotidis/AutoAgora-sub000/internal/db"
)

// fakeStore is an in-memory db.Store with per-op error injection.
type fakeStore struct {
	hashes map[string]map[string]string
	sets   map[string]map[string]struct{}

	failHGetAll  error
	failSMembers error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		hashes: make(map[string]map[string]string),
		sets:   make(map[string]map[string]struct{}),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close()                     {}
func (f *fakeStore) WaitForReady(context.Context, time.Duration) error {
	return nil
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	h, ok := f.hashes[key]
	if !ok {
		h = make(map[string]string)
		f.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
	return nil
}

func (f *fakeStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for _, item := range items {
		if err := f.HSet(ctx, item.Key, item.Fields); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	if f.failHGetAll != nil {
		return nil, f.failHGetAll
	}
	out := make(map[string]string, len(f.hashes[key]))
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	out := make([]map[string]string, len(keys))
	for i, key := range keys {
		m, err := f.HGetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.hashes, key)
	}
	return nil
}

func (f *fakeStore) SAdd(_ context.Context, key string, members ...string) error {
	s, ok := f.sets[key]
	if !ok {
		s = make(map[string]struct{})
		f.sets[key] = s
	}
	for _, m := range members {
		s[m] = struct{}{}
	}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key string, members ...string) error {
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	if f.failSMembers != nil {
		return nil, f.failSMembers
	}
	members := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		members = append(members, m)
	}
	return members, nil
}

func (f *fakeStore) SIsMember(_ context.Context, key, member string) (bool, error) {
	_, ok := f.sets[key][member]
	return ok, nil
}

func (f *fakeStore) SMove(ctx context.Context, src, dst, member string) (bool, error) {
	if _, ok := f.sets[src][member]; !ok {
		return false, nil
	}
	delete(f.sets[src], member)
	if err := f.SAdd(ctx, dst, member); err != nil {
		return false, err
	}
	return true, nil
}

func newTestRepo(t *testing.T) (*Repo, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	return New(fs), fs
}

func activeRecord(id domlisting.ID, make, model string, price float64) *domlisting.Record {
	return &domlisting.Record{
		ID:          id,
		Active:      true,
		PublishedAt: 1700000000,
		Tags: map[domlisting.Key]string{
			domlisting.Make:  make,
			domlisting.Model: model,
		},
		Numerics: map[domlisting.Key]float64{
			domlisting.Price: price,
		},
		Sets: map[domlisting.Key][]string{},
	}
}
