// Package db defines the minimal key/value store contract the listing
// repository is built on, decoupling it from any concrete Redis client.
package db

import (
	"context"
	"time"
)

// HashSetItem is one hash write in a bulk HSet.
type HashSetItem struct {
	Key    string
	Fields map[string]string
}

// Store is the storage backend contract. Implementations must be safe
// for concurrent use.
type Store interface {
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// Close releases the underlying client.
	Close()
	// WaitForReady polls Ping until the store responds or the timeout
	// expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error

	// HSet sets hash fields at key.
	HSet(ctx context.Context, key string, fields map[string]string) error
	// HSetMulti stores multiple hashes in one round-trip.
	HSetMulti(ctx context.Context, items []HashSetItem) error
	// HGetAll returns all fields of a hash; an empty map for a missing key.
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	// HGetAllMulti fetches all fields for multiple hashes in one
	// round-trip, positionally matching keys.
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	// Del removes keys.
	Del(ctx context.Context, keys ...string) error

	// SAdd adds members to a set.
	SAdd(ctx context.Context, key string, members ...string) error
	// SRem removes members from a set.
	SRem(ctx context.Context, key string, members ...string) error
	// SMembers returns all members of a set.
	SMembers(ctx context.Context, key string) ([]string, error)
	// SIsMember reports set membership.
	SIsMember(ctx context.Context, key, member string) (bool, error)
	// SMove atomically moves a member between sets. Returns false when
	// the member was not in the source set.
	SMove(ctx context.Context, src, dst, member string) (bool, error)
}
