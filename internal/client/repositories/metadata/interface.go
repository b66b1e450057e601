// Package metadata provides the key/value backends behind the token store:
// SQLite for a durable per-user store, Redis for a store shared between
// machines, and memory for tests and throwaway sessions.
//
// Get returns (nil, nil) for a missing key. SetMany and DeleteMany are
// all-or-nothing.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	SetMany(ctx context.Context, values map[string][]byte) error
	DeleteMany(ctx context.Context, keys ...string) error
}

var (
	_ Repository = (*SQLiteRepository)(nil)
	_ Repository = (*MemoryRepository)(nil)
	_ Repository = (*RedisRepository)(nil)
)
