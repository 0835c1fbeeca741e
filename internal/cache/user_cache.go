// Package cache provides a failsafe Redis cache for user lookups. Cache
// errors are logged and swallowed: the store remains the source of truth
// and every operation degrades to a pass-through when Redis is down.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/config"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/persistence"
)

// UserCache caches user records by id.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewUserCache builds a cache over the shared Redis client.
func NewUserCache(r *persistence.Redis, cfg config.RedisConfig, logger *zap.Logger) *UserCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserCache{
		client: client,
		ttl:    cfg.CacheTTL,
		prefix: cfg.KeyPrefix,
		logger: logger,
	}
}

func (c *UserCache) key(id string) string {
	return c.prefix + "user:" + id
}

// Get returns the cached user and whether the lookup hit.
func (c *UserCache) Get(ctx context.Context, id string) (*domain.User, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("cache get failed", zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", zap.String("id", id), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &user, true
}

// Set stores the user under its id with the configured TTL.
func (c *UserCache) Set(ctx context.Context, user *domain.User) {
	if c == nil || c.client == nil || user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		c.logger.Warn("cache serialize failed", zap.String("id", user.ID), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key(user.ID), data, c.ttl).Err(); err != nil {
		c.logger.Debug("cache set failed", zap.String("id", user.ID), zap.Error(err))
	}
}

// Invalidate removes the cached user after a mutation.
func (c *UserCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		c.logger.Debug("cache delete failed", zap.String("id", id), zap.Error(err))
	}
}
