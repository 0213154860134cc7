package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ShortLinkCache maps short codes to recipe ids. Codes never change once
// assigned, so entries only need invalidating when a recipe is deleted.
type ShortLinkCache interface {
	Get(ctx context.Context, code string) (uuid.UUID, bool, error)
	Set(ctx context.Context, code string, recipeID uuid.UUID) error
	Delete(ctx context.Context, code string) error
}

// RedisShortLinkCache stores code -> recipe id under "shortlink:<code>".
type RedisShortLinkCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisShortLinkCache(client *redis.Client, ttl time.Duration) *RedisShortLinkCache {
	return &RedisShortLinkCache{client: client, ttl: ttl}
}

func shortLinkKey(code string) string {
	return "shortlink:" + code
}

func (c *RedisShortLinkCache) Get(ctx context.Context, code string) (uuid.UUID, bool, error) {
	val, err := c.client.Get(ctx, shortLinkKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to read short link cache: %w", err)
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt short link cache entry %q: %w", code, err)
	}
	return id, true, nil
}

func (c *RedisShortLinkCache) Set(ctx context.Context, code string, recipeID uuid.UUID) error {
	if err := c.client.Set(ctx, shortLinkKey(code), recipeID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write short link cache: %w", err)
	}
	return nil
}

func (c *RedisShortLinkCache) Delete(ctx context.Context, code string) error {
	if err := c.client.Del(ctx, shortLinkKey(code)).Err(); err != nil {
		return fmt.Errorf("failed to evict short link cache: %w", err)
	}
	return nil
}
