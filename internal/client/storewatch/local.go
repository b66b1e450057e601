package storewatch

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophbucket/internal/client/repositories/metadata"
)

// LocalWrites records when this process last wrote to the store. A Watcher
// given a LocalWrites drops bursts that only overlap such writes.
type LocalWrites struct {
	inflight atomic.Int32
	last     atomic.Int64
}

func (l *LocalWrites) begin() {
	l.inflight.Add(1)
	l.last.Store(time.Now().UnixNano())
}

func (l *LocalWrites) end() {
	l.last.Store(time.Now().UnixNano())
	l.inflight.Add(-1)
}

// recent reports whether a local write is running or finished within window
// of now.
func (l *LocalWrites) recent(now time.Time, window time.Duration) bool {
	if l == nil {
		return false
	}
	if l.inflight.Load() > 0 {
		return true
	}
	last := l.last.Load()
	return last != 0 && now.Sub(time.Unix(0, last)) <= window
}

// Track wraps repo so every mutating call is recorded in l.
func (l *LocalWrites) Track(repo metadata.Repository) metadata.Repository {
	return &trackedRepository{Repository: repo, local: l}
}

type trackedRepository struct {
	metadata.Repository
	local *LocalWrites
}

func (r *trackedRepository) Set(ctx context.Context, key string, value []byte) error {
	r.local.begin()
	defer r.local.end()
	return r.Repository.Set(ctx, key, value)
}

func (r *trackedRepository) Delete(ctx context.Context, key string) error {
	r.local.begin()
	defer r.local.end()
	return r.Repository.Delete(ctx, key)
}

func (r *trackedRepository) Clear(ctx context.Context) error {
	r.local.begin()
	defer r.local.end()
	return r.Repository.Clear(ctx)
}

func (r *trackedRepository) SetMany(ctx context.Context, values map[string][]byte) error {
	r.local.begin()
	defer r.local.end()
	return r.Repository.SetMany(ctx, values)
}

func (r *trackedRepository) DeleteMany(ctx context.Context, keys ...string) error {
	r.local.begin()
	defer r.local.end()
	return r.Repository.DeleteMany(ctx, keys...)
}
