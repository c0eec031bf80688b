package shards

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

const DefaultTTL = 24 * time.Hour

const flightKey = "dataset"

// Loader produces a fresh dataset. *Fetcher is the production loader.
type Loader interface {
	Fetch(ctx context.Context) (*curriculum.Dataset, error)
}

type CacheState string

const (
	StateEmpty     CacheState = "empty"
	StatePopulated CacheState = "populated"
	StateStale     CacheState = "stale"
)

// Cache holds the last fetched dataset for a fixed TTL. Concurrent misses
// share one fetch. Returned datasets are shared and must not be mutated.
type Cache struct {
	log      *logger.Logger
	loader   Loader
	ttl      time.Duration
	now      func() time.Time
	snapshot Snapshot

	mu          sync.RWMutex
	data        *curriculum.Dataset
	populatedAt time.Time
	gen         uint64

	group singleflight.Group
}

type CacheOption func(*Cache)

func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSnapshot mirrors populated datasets to a shared store so that other
// instances, or this one after a restart, can skip the network.
func WithSnapshot(s Snapshot) CacheOption {
	return func(c *Cache) { c.snapshot = s }
}

func NewCache(loader Loader, baseLog *logger.Logger, opts ...CacheOption) *Cache {
	c := &Cache{
		log:    baseLog.With("service", "ShardCache"),
		loader: loader,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) TTL() time.Duration { return c.ttl }

func (c *Cache) State() CacheState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch {
	case c.data == nil:
		return StateEmpty
	case c.fresh():
		return StatePopulated
	default:
		return StateStale
	}
}

// fresh must be called with mu held.
func (c *Cache) fresh() bool {
	return c.data != nil && c.now().Sub(c.populatedAt) < c.ttl
}

// Get returns the cached dataset while it is within TTL, and refetches every
// shard otherwise. A caller that gives up waiting does not cancel the shared
// fetch.
func (c *Cache) Get(ctx context.Context) (*curriculum.Dataset, error) {
	c.mu.RLock()
	if c.fresh() {
		ds := c.data
		c.mu.RUnlock()
		observability.Current().ObserveCacheLookup("hit")
		return ds, nil
	}
	c.mu.RUnlock()

	ch := c.group.DoChan(flightKey, func() (any, error) {
		return c.populate(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*curriculum.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Refresh clears the cache and repopulates it.
func (c *Cache) Refresh(ctx context.Context) (*curriculum.Dataset, error) {
	c.Clear(ctx)
	return c.Get(ctx)
}

// Clear resets the cache to empty and drops the shared snapshot. A fetch that
// is in flight when Clear runs will not install its result, and later callers
// start a new fetch instead of joining it.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.data = nil
	c.populatedAt = time.Time{}
	c.gen++
	c.group.Forget(flightKey)
	c.mu.Unlock()

	if c.snapshot != nil {
		if err := c.snapshot.Delete(ctx); err != nil {
			c.log.Warn("Dataset snapshot delete failed", "error", err)
		}
	}
	c.log.Info("Shard cache cleared")
}

func (c *Cache) populate(ctx context.Context) (*curriculum.Dataset, error) {
	c.mu.RLock()
	if c.fresh() {
		ds := c.data
		c.mu.RUnlock()
		return ds, nil
	}
	empty := c.data == nil
	gen := c.gen
	c.mu.RUnlock()

	if empty && c.snapshot != nil {
		if ds := c.loadSnapshot(ctx); ds != nil {
			c.install(ds, ds.FetchedAt, gen)
			observability.Current().ObserveCacheLookup("snapshot")
			return ds, nil
		}
	}

	observability.Current().ObserveCacheLookup("fetch")
	ds, err := c.loader.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	at := c.now()
	c.install(ds, at, gen)

	if c.snapshot != nil {
		if err := c.snapshot.Store(ctx, ds, c.ttl); err != nil {
			c.log.Warn("Dataset snapshot store failed", "error", err)
		}
	}
	return ds, nil
}

func (c *Cache) loadSnapshot(ctx context.Context) *curriculum.Dataset {
	ds, err := c.snapshot.Load(ctx)
	if err != nil {
		c.log.Warn("Dataset snapshot load failed", "error", err)
		return nil
	}
	if ds == nil || ds.FetchedAt.IsZero() || c.now().Sub(ds.FetchedAt) >= c.ttl {
		return nil
	}
	c.log.Debug("Shard cache restored from snapshot", "fetched_at", ds.FetchedAt)
	return ds
}

func (c *Cache) install(ds *curriculum.Dataset, at time.Time, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.data = ds
	c.populatedAt = at
}
