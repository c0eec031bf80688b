package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/curriculum-backend/internal/data/repos"
	"github.com/yungbote/curriculum-backend/internal/data/repos/testutil"
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/query"
)

type fakeShardCache struct {
	ds        *curriculum.Dataset
	err       error
	gets      int
	refreshes int
	clears    int
}

func (c *fakeShardCache) Get(ctx context.Context) (*curriculum.Dataset, error) {
	c.gets++
	return c.ds, c.err
}

func (c *fakeShardCache) Refresh(ctx context.Context) (*curriculum.Dataset, error) {
	c.refreshes++
	return c.ds, c.err
}

func (c *fakeShardCache) Clear(ctx context.Context) { c.clears++ }

func sampleDataset() *curriculum.Dataset {
	return &curriculum.Dataset{
		FetchedAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		Shards: map[string][]curriculum.ShardRecord{
			curriculum.ShardLearningAreas: {
				{ID: "1", Subject: "Mathematics", Level: "Year 5"},
				{ID: "2", Subject: "History", Level: "Year 5"},
			},
			curriculum.ShardCrossCurriculumPriorities: {},
		},
		Status: []curriculum.ShardStatus{
			{Name: curriculum.ShardLearningAreas, Count: 2},
			{Name: curriculum.ShardCrossCurriculumPriorities, Err: "get: status 503"},
		},
	}
}

func TestCatalogShardsFiltersCachedDataset(t *testing.T) {
	cache := &fakeShardCache{ds: sampleDataset()}
	svc := NewCatalogService(testutil.Logger(t), cache, nil)

	v, err := svc.Shards(context.Background(), query.Filter{Subject: "math"})
	if err != nil {
		t.Fatalf("Shards: %v", err)
	}
	if got := v.Shards[curriculum.ShardLearningAreas]; len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("filtered shards: %+v", got)
	}
	if _, ok := v.Shards[curriculum.ShardCrossCurriculumPriorities]; !ok {
		t.Fatalf("degraded shard must still be listed")
	}
	if len(v.Status) != 2 || !v.FetchedAt.Equal(sampleDataset().FetchedAt) {
		t.Fatalf("status/fetched_at: %+v", v)
	}

	if _, err := svc.RefreshShards(context.Background()); err != nil {
		t.Fatalf("RefreshShards: %v", err)
	}
	svc.ClearShards(context.Background())
	if cache.gets != 1 || cache.refreshes != 1 || cache.clears != 1 {
		t.Fatalf("cache calls: %+v", cache)
	}
}

func TestCatalogShardsPropagatesCacheError(t *testing.T) {
	svc := NewCatalogService(testutil.Logger(t), &fakeShardCache{err: context.DeadlineExceeded}, nil)
	if _, err := svc.Shards(context.Background(), query.Filter{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestCatalogOutcomesReadsStore(t *testing.T) {
	db := testutil.DB(t)
	outcomes := repos.NewOutcomeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	rows := append(testutil.Outcomes(3, "Mathematics", "Year 5"), testutil.Outcomes(2, "Geography", "Year 7")...)
	if err := outcomes.InsertBatch(ctx, nil, rows); err != nil {
		t.Fatalf("InsertBatch: %v", err)
	}

	svc := NewCatalogService(testutil.Logger(t), &fakeShardCache{}, outcomes)
	got, err := svc.Outcomes(ctx, repos.OutcomeFilter{LearningArea: "geo", Level: "7"})
	if err != nil || len(got) != 2 {
		t.Fatalf("Outcomes: err=%v len=%d", err, len(got))
	}
	got, err = svc.Outcomes(ctx, repos.OutcomeFilter{Limit: 4})
	if err != nil || len(got) != 4 {
		t.Fatalf("Outcomes limit: err=%v len=%d", err, len(got))
	}
}
