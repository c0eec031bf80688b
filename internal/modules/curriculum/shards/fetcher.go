package shards

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

var tracer = otel.Tracer("curriculum/shards")

// Fetcher downloads and normalizes every configured shard.
type Fetcher struct {
	log    *logger.Logger
	source Source
	specs  []Spec
	now    func() time.Time
}

type FetcherOption func(*Fetcher)

// WithFetchClock sets the clock that stamps Dataset.FetchedAt. Pass the same
// clock as the cache's WithClock so snapshot expiry stays consistent.
func WithFetchClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

func NewFetcher(source Source, specs []Spec, baseLog *logger.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		log:    baseLog.With("service", "ShardFetcher"),
		source: source,
		specs:  append([]Spec(nil), specs...),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Specs() []Spec {
	return append([]Spec(nil), f.specs...)
}

// Fetch retrieves all shards concurrently. A shard that cannot be read or
// parsed contributes an empty list and an error in its status entry; the
// fetch as a whole still succeeds. Only cancellation of ctx fails it.
func (f *Fetcher) Fetch(ctx context.Context) (*curriculum.Dataset, error) {
	ctx, span := tracer.Start(ctx, "shards.fetch")
	defer span.End()
	span.SetAttributes(attribute.Int("shards.count", len(f.specs)))

	records := make([][]curriculum.ShardRecord, len(f.specs))
	status := make([]curriculum.ShardStatus, len(f.specs))

	var g errgroup.Group
	for i, spec := range f.specs {
		g.Go(func() error {
			records[i], status[i] = f.fetchShard(ctx, spec)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	ds := &curriculum.Dataset{
		Shards:    make(map[string][]curriculum.ShardRecord, len(f.specs)),
		Status:    status,
		FetchedAt: f.now().UTC(),
	}
	for i, spec := range f.specs {
		ds.Shards[spec.Name] = records[i]
	}
	if ds.Degraded() {
		span.SetAttributes(attribute.Bool("shards.degraded", true))
	}
	f.log.Info("Shards fetched", "shards", len(f.specs), "records", ds.Total(), "degraded", ds.Degraded())
	return ds, nil
}

func (f *Fetcher) fetchShard(ctx context.Context, spec Spec) ([]curriculum.ShardRecord, curriculum.ShardStatus) {
	ctx, span := tracer.Start(ctx, "shards.fetch_shard")
	defer span.End()
	span.SetAttributes(attribute.String("shard.name", spec.Name), attribute.String("shard.location", spec.Location))

	st := curriculum.ShardStatus{Name: spec.Name, Version: spec.Version}
	out := []curriculum.ShardRecord{}

	fail := func(err error) ([]curriculum.ShardRecord, curriculum.ShardStatus) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "shard unavailable")
		st.Err = err.Error()
		f.log.Warn("Shard fetch failed, serving empty list", "shard", spec.Name, "location", spec.Location, "error", err)
		observability.Current().ObserveShardFetch(spec.Name, 0, err)
		return []curriculum.ShardRecord{}, st
	}

	rc, err := f.source.Open(ctx, spec)
	if err != nil {
		return fail(err)
	}
	defer rc.Close()

	items, err := decodeItems(rc, spec.ItemsPath)
	if err != nil {
		return fail(err)
	}
	for _, item := range items {
		rec, ok := Normalize(spec.Name, item)
		if !ok {
			st.Dropped++
			continue
		}
		out = append(out, rec)
	}
	st.Count = len(out)
	span.SetAttributes(attribute.Int("shard.records", st.Count), attribute.Int("shard.dropped", st.Dropped))
	f.log.Debug("Shard fetched", "shard", spec.Name, "records", st.Count, "dropped", st.Dropped)
	observability.Current().ObserveShardFetch(spec.Name, st.Count, nil)
	return out, st
}
