package repository

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"identity-service/internal/model"
)

// UserCache is a TTL-bounded Redis cache of user records keyed by id. It sits
// in front of the by-id lookups that run on every profile fetch and refresh.
// All methods are safe on a nil receiver, so the repository works unchanged
// when Redis is unavailable. Cache failures are logged and treated as misses;
// the database remains the source of truth.
type UserCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewUserCache wraps the given client. Returns nil when the client is nil so
// callers can pass the result straight to NewUserRepo.
func NewUserCache(rdb *redis.Client, ttl time.Duration) *UserCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &UserCache{rdb: rdb, ttl: ttl}
}

func cacheKey(id string) string { return "user:" + id }

// Get returns the cached user for id, if present.
func (c *UserCache) Get(ctx context.Context, id string) (*model.User, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		// A corrupt entry is dropped so the next read repopulates it.
		c.rdb.Del(ctx, cacheKey(id))
		return nil, false
	}
	return &u, true
}

// Set stores the user under its id for the configured TTL.
func (c *UserCache) Set(ctx context.Context, u *model.User) {
	if c == nil || u == nil {
		return
	}
	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(u.ID), raw, c.ttl).Err(); err != nil {
		log.Printf("user-cache: set %s failed: %v", u.ID, err)
	}
}

// Invalidate evicts the cached record for id. Called on every credential
// change so stale versions never serve a refresh check.
func (c *UserCache) Invalidate(ctx context.Context, id string) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		log.Printf("user-cache: invalidate %s failed: %v", id, err)
	}
}
