// Package rediscache provides a Redis-backed cache for operator accounts,
// keeping the per-request token check off the database.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cimillas/bookstore-backoffice/internal/domain"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 5 * time.Minute

type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{
		client: client,
		ttl:    defaultTTL,
	}
}

func userKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// Get returns the cached user, or (nil, nil) on a miss.
func (c *UserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	raw, err := c.client.Get(ctx, userKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *UserCache) Set(ctx context.Context, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userKey(u.ID), raw, c.ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return c.client.Del(ctx, userKey(id)).Err()
}
