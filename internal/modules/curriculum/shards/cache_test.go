package shards

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type countingLoader struct {
	calls   atomic.Int32
	release chan struct{}
	err     error
	at      func() time.Time
}

func (l *countingLoader) Fetch(ctx context.Context) (*curriculum.Dataset, error) {
	l.calls.Add(1)
	if l.release != nil {
		<-l.release
	}
	if l.err != nil {
		return nil, l.err
	}
	ds := &curriculum.Dataset{Shards: map[string][]curriculum.ShardRecord{
		curriculum.ShardLearningAreas: {{ID: "a", Subject: "Mathematics"}},
	}}
	if l.at != nil {
		ds.FetchedAt = l.at()
	}
	return ds, nil
}

func TestCacheServesWithinTTLAndRefetchesAfter(t *testing.T) {
	srv := newShardServer(t, fixtureDocs())
	clock := newFakeClock()
	cache := NewCache(
		NewFetcher(testSource(), DefaultSpecs(srv.URL), testLogger(t)),
		testLogger(t),
		WithClock(clock.Now),
	)
	ctx := context.Background()
	require.Equal(t, StateEmpty, cache.State())

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	clock.Advance(23 * time.Hour)
	second, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, StatePopulated, cache.State())
	for _, name := range defaultShardNames {
		require.Equal(t, 1, srv.Hits(name), name)
	}

	clock.Advance(time.Hour)
	require.Equal(t, StateStale, cache.State())
	third, err := cache.Get(ctx)
	require.NoError(t, err)
	require.NotSame(t, first, third)
	for _, name := range defaultShardNames {
		require.Equal(t, 2, srv.Hits(name), name)
	}
}

func TestCacheCollapsesConcurrentPopulation(t *testing.T) {
	srv := newShardServer(t, fixtureDocs())
	cache := NewCache(NewFetcher(testSource(), DefaultSpecs(srv.URL), testLogger(t)), testLogger(t))

	var wg sync.WaitGroup
	results := make([]*curriculum.Dataset, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ds, err := cache.Get(context.Background())
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			results[i] = ds
		}()
	}
	wg.Wait()

	for _, name := range defaultShardNames {
		require.Equal(t, 1, srv.Hits(name), name)
	}
	for _, ds := range results {
		require.Same(t, results[0], ds)
	}
}

func TestCacheImpatientCallerDoesNotCancelSharedFetch(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	cache := NewCache(loader, testLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx)
		errc <- err
	}()
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	require.ErrorIs(t, <-errc, context.Canceled)

	close(loader.release)
	ds, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Total())
	require.EqualValues(t, 1, loader.calls.Load())
}

func TestCacheClearForcesRefetch(t *testing.T) {
	loader := &countingLoader{}
	cache := NewCache(loader, testLogger(t))
	ctx := context.Background()

	_, err := cache.Get(ctx)
	require.NoError(t, err)
	cache.Clear(ctx)
	require.Equal(t, StateEmpty, cache.State())
	_, err = cache.Get(ctx)
	require.NoError(t, err)
	_, err = cache.Refresh(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, loader.calls.Load())
}

func TestCacheRefreshDuringFetchStartsNewFetch(t *testing.T) {
	loader := &countingLoader{release: make(chan struct{})}
	cache := NewCache(loader, testLogger(t))
	ctx := context.Background()

	getc := make(chan error, 1)
	go func() {
		_, err := cache.Get(ctx)
		getc <- err
	}()
	require.Eventually(t, func() bool { return loader.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		ds  *curriculum.Dataset
		err error
	}
	refreshc := make(chan result, 1)
	go func() {
		ds, err := cache.Refresh(ctx)
		refreshc <- result{ds, err}
	}()
	require.Eventually(t, func() bool { return loader.calls.Load() == 2 }, time.Second, time.Millisecond)
	close(loader.release)

	require.NoError(t, <-getc)
	res := <-refreshc
	require.NoError(t, res.err)
	require.Equal(t, StatePopulated, cache.State())

	cached, err := cache.Get(ctx)
	require.NoError(t, err)
	require.Same(t, res.ds, cached)
	require.EqualValues(t, 2, loader.calls.Load())
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	loader := &countingLoader{err: errors.New("loader failed")}
	cache := NewCache(loader, testLogger(t))
	_, err := cache.Get(context.Background())
	require.Error(t, err)
	require.Equal(t, StateEmpty, cache.State())

	loader.err = nil
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, loader.calls.Load())
}

type memorySnapshot struct {
	mu      sync.Mutex
	ds      *curriculum.Dataset
	ttl     time.Duration
	deletes int
}

func (s *memorySnapshot) Load(ctx context.Context) (*curriculum.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds, nil
}

func (s *memorySnapshot) Store(ctx context.Context, ds *curriculum.Dataset, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds, s.ttl = ds, ttl
	return nil
}

func (s *memorySnapshot) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = nil
	s.deletes++
	return nil
}

func TestCacheSnapshotSharedAcrossInstances(t *testing.T) {
	clock := newFakeClock()
	snap := &memorySnapshot{}
	ctx := context.Background()

	loaderA := &countingLoader{at: clock.Now}
	a := NewCache(loaderA, testLogger(t), WithClock(clock.Now), WithSnapshot(snap), WithTTL(time.Hour))
	_, err := a.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap.ds)
	require.Equal(t, time.Hour, snap.ttl)

	clock.Advance(10 * time.Minute)
	loaderB := &countingLoader{at: clock.Now}
	b := NewCache(loaderB, testLogger(t), WithClock(clock.Now), WithSnapshot(snap), WithTTL(time.Hour))
	ds, err := b.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, ds.Total())
	require.Zero(t, loaderB.calls.Load(), "restored from snapshot")

	// The restored copy expires with the original fetch time.
	clock.Advance(50 * time.Minute)
	require.Equal(t, StateStale, b.State())

	b.Clear(ctx)
	require.Nil(t, snap.ds)
	require.Equal(t, 1, snap.deletes)
}

func TestCacheIgnoresExpiredSnapshot(t *testing.T) {
	clock := newFakeClock()
	snap := &memorySnapshot{ds: &curriculum.Dataset{FetchedAt: clock.Now().Add(-25 * time.Hour)}}
	loader := &countingLoader{at: clock.Now}
	cache := NewCache(loader, testLogger(t), WithClock(clock.Now), WithSnapshot(snap))

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 1, loader.calls.Load())
}
