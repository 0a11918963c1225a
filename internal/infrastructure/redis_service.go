package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ytuqete/cryptoPulse/internal/domain/entities"
	"github.com/ytuqete/cryptoPulse/internal/domain/repositories"
)

const snapshotKeyPrefix = "snapshot:"

// RedisService retains market snapshots in Redis so every instance behind a
// load balancer renders the same last good list for a viewer.
type RedisService struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ repositories.SnapshotRepository = (*RedisService)(nil)

// NewRedisService connects using a redis:// URL and pings the server.
func NewRedisService(ctx context.Context, redisURL string, ttl time.Duration, logger *slog.Logger) (*RedisService, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	applyPoolDefaults(opt)
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("connected to redis", "addr", opt.Addr, "db", opt.DB)
	return NewRedisServiceWithClient(client, ttl, logger), nil
}

func NewRedisServiceWithClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisService {
	return &RedisService{client: client, ttl: ttl, logger: logger}
}

func (r *RedisService) Save(ctx context.Context, viewer string, snapshot *entities.MarketSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	r.logger.Debug("redis set", "key", snapshotKeyPrefix+viewer, "bytes", len(data))
	return r.client.Set(ctx, snapshotKeyPrefix+viewer, data, r.ttl).Err()
}

func (r *RedisService) Load(ctx context.Context, viewer string) (*entities.MarketSnapshot, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+viewer).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot entities.MarketSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *RedisService) Delete(ctx context.Context, viewer string) error {
	return r.client.Del(ctx, snapshotKeyPrefix+viewer).Err()
}

func (r *RedisService) Close() error {
	return r.client.Close()
}
