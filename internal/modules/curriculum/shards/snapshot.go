package shards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/curriculum-backend/internal/domain/curriculum"
	"github.com/yungbote/curriculum-backend/internal/platform/logger"
)

const DefaultSnapshotKey = "curriculum:shards:dataset"

// Snapshot is a shared copy of the dataset outside process memory.
// Load returns nil, nil when nothing is stored.
type Snapshot interface {
	Load(ctx context.Context) (*curriculum.Dataset, error)
	Store(ctx context.Context, ds *curriculum.Dataset, ttl time.Duration) error
	Delete(ctx context.Context) error
}

type redisSnapshot struct {
	log *logger.Logger
	rdb goredis.UniversalClient
	key string
}

// NewRedisSnapshot connects to addr and verifies it with a ping.
func NewRedisSnapshot(addr, key string, baseLog *logger.Logger) (Snapshot, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisSnapshotWithClient(rdb, key, baseLog), nil
}

func NewRedisSnapshotWithClient(rdb goredis.UniversalClient, key string, baseLog *logger.Logger) Snapshot {
	if strings.TrimSpace(key) == "" {
		key = DefaultSnapshotKey
	}
	return &redisSnapshot{
		log: baseLog.With("service", "RedisDatasetSnapshot"),
		rdb: rdb,
		key: key,
	}
}

func (s *redisSnapshot) Load(ctx context.Context) (*curriculum.Dataset, error) {
	raw, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var ds curriculum.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &ds, nil
}

func (s *redisSnapshot) Store(ctx context.Context, ds *curriculum.Dataset, ttl time.Duration) error {
	if ds == nil {
		return nil
	}
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	s.log.Debug("Dataset snapshot stored", "key", s.key, "bytes", len(raw), "ttl", ttl.String())
	return nil
}

func (s *redisSnapshot) Delete(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
