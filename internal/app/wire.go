package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/curriculum-backend/internal/data/repos"
	apphttp "github.com/yungbote/curriculum-backend/internal/http"
	httpH "github.com/yungbote/curriculum-backend/internal/http/handlers"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
	"github.com/yungbote/curriculum-backend/internal/services"
)

type Repos struct {
	Outcome repos.OutcomeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Outcome: repos.NewOutcomeRepo(db, log),
	}
}

type Services struct {
	Import     services.ImportService
	Catalog    services.CatalogService
	ShardCache *shards.Cache
	Fetcher    *shards.Fetcher
}

// wireServices builds the shard pipeline and the services on top of it.
// The returned ShardSource must be closed by the caller.
func wireServices(log *logger.Logger, cfg Config, reposet Repos) (Services, *ShardSource, error) {
	log.Info("Wiring services...")

	specs, err := cfg.ShardSpecs()
	if err != nil {
		return Services{}, nil, fmt.Errorf("load shard manifest: %w", err)
	}
	source, err := resolveShardSource(log, cfg, specs)
	if err != nil {
		return Services{}, nil, err
	}
	fetcher := shards.NewFetcher(source.Source, specs, log)

	opts := []shards.CacheOption{shards.WithTTL(cfg.ShardCacheTTL)}
	if cfg.RedisAddr != "" {
		snap, err := shards.NewRedisSnapshot(cfg.RedisAddr, cfg.RedisSnapshotKey, log)
		if err != nil {
			// The snapshot tier is optional; the cache still works per process.
			log.Warn("Redis snapshot unavailable, continuing without it", "addr", cfg.RedisAddr, "error", err)
		} else {
			opts = append(opts, shards.WithSnapshot(snap))
		}
	}
	cache := shards.NewCache(fetcher, log, opts...)
	log.Info("Shard cache ready", "shards", len(fetcher.Specs()), "ttl", cache.TTL())

	return Services{
		Import: services.NewImportService(log, reposet.Outcome, services.ImportConfig{
			ChunkSize: cfg.ImportChunkSize,
			Mode:      cfg.ImportMode,
		}),
		Catalog:    services.NewCatalogService(log, cache, reposet.Outcome),
		ShardCache: cache,
		Fetcher:    fetcher,
	}, source, nil
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Curriculum *httpH.CurriculumHandler
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, ping httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(ping),
		Curriculum: httpH.NewCurriculumHandler(log, serviceset.Import, serviceset.Catalog, httpH.CurriculumHandlerConfig{
			FileField:      cfg.ImportFileField,
			MaxUploadBytes: int64(cfg.ImportMaxUploadMB) << 20,
		}),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		HealthHandler:     handlers.Health,
		CurriculumHandler: handlers.Curriculum,
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.Otel.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
	})
}
