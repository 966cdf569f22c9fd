package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/videotube-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultCacheTTL bounds how stale a cached profile can be
	DefaultCacheTTL = 5 * time.Minute
)

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s%s:%s", CacheKeyPrefix, resource, identifier)
}

// CachedUserStore serves FindPublicByID from Redis. Public profile fields
// are never edited by this service, so entries only age out. Everything
// else goes straight to the wrapped store. Cache errors fall back to the
// store.
type CachedUserStore struct {
	UserStore
	client *redis.Client
	ttl    time.Duration
}

func NewCachedUserStore(store UserStore, client *redis.Client, ttl time.Duration) *CachedUserStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedUserStore{UserStore: store, client: client, ttl: ttl}
}

func (c *CachedUserStore) FindPublicByID(ctx context.Context, id string) (*models.User, error) {
	if c.client == nil {
		return c.UserStore.FindPublicByID(ctx, id)
	}

	key := CacheKey("user", id)
	if val, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var u models.User
		if json.Unmarshal(val, &u) == nil {
			return &u, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		return c.UserStore.FindPublicByID(ctx, id)
	}

	u, err := c.UserStore.FindPublicByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(u.Public()); err == nil {
		c.client.Set(ctx, key, data, c.ttl)
	}
	return u, nil
}
