package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yungbote/curriculum-backend/internal/data/repos"
	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/query"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

// ShardCache is the part of *shards.Cache the catalog relies on.
type ShardCache interface {
	Get(ctx context.Context) (*curriculum.Dataset, error)
	Refresh(ctx context.Context) (*curriculum.Dataset, error)
	Clear(ctx context.Context)
}

type CatalogService interface {
	Shards(ctx context.Context, f query.Filter) (*ShardView, error)
	RefreshShards(ctx context.Context) (*ShardView, error)
	ClearShards(ctx context.Context)
	Outcomes(ctx context.Context, f repos.OutcomeFilter) ([]*curriculum.Outcome, error)
}

// ShardView is a filtered projection of the cached dataset.
type ShardView struct {
	Shards    map[string][]curriculum.ShardRecord `json:"shards"`
	FetchedAt time.Time                           `json:"fetched_at"`
	Status    []curriculum.ShardStatus            `json:"status"`
}

type catalogService struct {
	log      *logger.Logger
	cache    ShardCache
	outcomes repos.OutcomeRepo
}

func NewCatalogService(baseLog *logger.Logger, cache ShardCache, outcomes repos.OutcomeRepo) CatalogService {
	return &catalogService{
		log:      baseLog.With("service", "CatalogService"),
		cache:    cache,
		outcomes: outcomes,
	}
}

func (s *catalogService) Shards(ctx context.Context, f query.Filter) (*ShardView, error) {
	ds, err := s.cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shards: %w", err)
	}
	if !f.IsEmpty() {
		s.log.Debug("Filtering shards", "subject", f.Subject, "level", f.Level, "keyword", f.Keyword, "limit", f.Limit)
	}
	return view(ds, f), nil
}

func (s *catalogService) RefreshShards(ctx context.Context) (*ShardView, error) {
	ds, err := s.cache.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh shards: %w", err)
	}
	s.log.Info("Shards refreshed", "records", ds.Total(), "degraded", ds.Degraded())
	return view(ds, query.Filter{}), nil
}

func (s *catalogService) ClearShards(ctx context.Context) {
	s.cache.Clear(ctx)
}

func (s *catalogService) Outcomes(ctx context.Context, f repos.OutcomeFilter) ([]*curriculum.Outcome, error) {
	rows, err := s.outcomes.List(ctx, nil, f)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return rows, nil
}

func view(ds *curriculum.Dataset, f query.Filter) *ShardView {
	status := ds.Status
	if status == nil {
		status = []curriculum.ShardStatus{}
	}
	return &ShardView{
		Shards:    query.Run(ds, f),
		FetchedAt: ds.FetchedAt,
		Status:    status,
	}
}
