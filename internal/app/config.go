package app

import (
	"strings"
	"time"

	"github.com/yungbote/curriculum-backend/internal/data/db"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/batch"
	"github.com/yungbote/curriculum-backend/internal/modules/curriculum/shards"
	"github.com/yungbote/curriculum-backend/internal/observability"
	"github.com/yungbote/curriculum-backend/internal/platform/envutil"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

const DefaultShardBaseURL = "http://localhost:9000/curriculum"

type Config struct {
	Port        string
	Environment string
	Version     string
	CORSOrigins []string

	DB db.Config

	ImportChunkSize   int
	ImportMaxUploadMB int
	ImportMode        string
	ImportFileField   string

	ShardBaseURL      string
	ShardsFile        string
	ShardCacheTTL     time.Duration
	ShardFetchTimeout time.Duration

	RedisAddr        string
	RedisSnapshotKey string

	S3 shards.S3Config

	Otel observability.OtelConfig
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		CORSOrigins: splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),

		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverSQLite),
			DSN:              envutil.String("DATABASE_URL", ""),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "curriculum"),
			SQLitePath:       envutil.String("SQLITE_PATH", "curriculum.db"),
		},

		ImportChunkSize:   envutil.Int("IMPORT_CHUNK_SIZE", batch.DefaultChunkSize),
		ImportMaxUploadMB: envutil.Int("IMPORT_MAX_UPLOAD_MB", 32),
		ImportMode:        envutil.String("IMPORT_ACCEPTANCE_MODE", ""),
		ImportFileField:   envutil.String("IMPORT_FILE_FIELD", "file"),

		ShardBaseURL:      envutil.String("CURRICULUM_SHARD_BASE_URL", DefaultShardBaseURL),
		ShardsFile:        envutil.String("CURRICULUM_SHARDS_FILE", ""),
		ShardCacheTTL:     envutil.Duration("SHARD_CACHE_TTL", shards.DefaultTTL),
		ShardFetchTimeout: envutil.Duration("SHARD_FETCH_TIMEOUT", 30*time.Second),

		RedisAddr:        envutil.String("REDIS_ADDR", ""),
		RedisSnapshotKey: envutil.String("REDIS_SNAPSHOT_KEY", shards.DefaultSnapshotKey),

		S3: shards.S3Config{
			Endpoint:        envutil.String("S3_ENDPOINT", ""),
			AccessKeyID:     envutil.String("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: envutil.String("S3_SECRET_ACCESS_KEY", ""),
			Region:          envutil.String("S3_REGION", ""),
		},
	}
	cfg.Otel = observability.OtelConfig{
		Enabled:     envutil.Bool("OTEL_ENABLED", false),
		ServiceName: envutil.String("OTEL_SERVICE_NAME", "curriculum"),
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Headers:     envutil.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
		Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
		SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
	}

	if cfg.ImportMaxUploadMB <= 0 {
		log.Warn("IMPORT_MAX_UPLOAD_MB must be positive, using default", "value", cfg.ImportMaxUploadMB)
		cfg.ImportMaxUploadMB = 32
	}
	log.Info("Config loaded",
		"port", cfg.Port,
		"db_driver", cfg.DB.Driver,
		"import_chunk_size", cfg.ImportChunkSize,
		"shard_base_url", cfg.ShardBaseURL,
		"shards_file", cfg.ShardsFile,
		"shard_cache_ttl", cfg.ShardCacheTTL,
		"redis_snapshot", cfg.RedisAddr != "",
	)
	return cfg
}

// ShardSpecs returns the manifest file's shards when one is configured,
// otherwise the four standard shards under ShardBaseURL.
func (c Config) ShardSpecs() ([]shards.Spec, error) {
	if c.ShardsFile != "" {
		return shards.LoadManifest(c.ShardsFile)
	}
	return shards.DefaultSpecs(c.ShardBaseURL), nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
