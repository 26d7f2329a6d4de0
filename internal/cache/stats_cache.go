package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/telecomplus/contracts-backend/internal/domain"
	"github.com/telecomplus/contracts-backend/internal/infrastructure/redis"
	"github.com/telecomplus/contracts-backend/internal/observability/metrics"
)

// StatsCache keeps per-user contract statistics in Redis for a short TTL.
// Contract writes invalidate the owner's entry; catalog edits just ride out
// the TTL. Cache failures degrade to a recompute, never to an error.
type StatsCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewStatsCache creates a stats cache backed by Redis
func NewStatsCache(redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *StatsCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsCache{redis: redisClient, ttl: ttl, logger: logger}
}

func statsKey(userID string) string {
	return "stats:" + userID
}

// Get returns the cached stats for a user, or (nil, false) on miss
func (c *StatsCache) Get(ctx context.Context, userID string) (*domain.ContractStats, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	data, err := c.redis.Get(ctx, statsKey(userID))
	if err != nil {
		if !redis.IsMiss(err) {
			c.logger.Warn("stats cache read failed", slog.String("error", err.Error()))
		}
		metrics.ObserveStatsCache("miss")
		return nil, false
	}

	var stats domain.ContractStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		c.logger.Warn("stats cache entry corrupt", slog.String("error", err.Error()))
		metrics.ObserveStatsCache("miss")
		return nil, false
	}

	metrics.ObserveStatsCache("hit")
	return &stats, true
}

// Set stores the stats for a user with the configured TTL
func (c *StatsCache) Set(ctx context.Context, userID string, stats *domain.ContractStats) {
	if c == nil || c.redis == nil {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("failed to marshal stats", slog.String("error", err.Error()))
		return
	}
	if err := c.redis.Set(ctx, statsKey(userID), string(data), c.ttl); err != nil {
		c.logger.Warn("stats cache write failed", slog.String("error", err.Error()))
	}
}

// Invalidate drops the cached stats for a user after a contract write
func (c *StatsCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.redis == nil {
		return
	}
	if err := c.redis.Delete(ctx, statsKey(userID)); err != nil {
		c.logger.Warn("stats cache invalidation failed", slog.String("error", err.Error()))
	}
}
