package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog/internal/models"
)

// DefaultTTL is how long a post stays cached after a read miss.
const DefaultTTL = 5 * time.Minute

type RedisCache struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// GetPost retrieves a post from cache. A cache miss returns (nil, nil).
func (c *RedisCache) GetPost(ctx context.Context, postID int) (*models.Post, error) {
	data, err := c.client.Get(ctx, cacheKey(postID)).Result()
	if err == redis.Nil {
		return nil, nil // cache miss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var post models.Post
	if err := json.Unmarshal([]byte(data), &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	return &post, nil
}

// SetPost stores a post in cache with a TTL.
func (c *RedisCache) SetPost(ctx context.Context, post *models.Post, ttl time.Duration) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("failed to marshal post: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(post.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// InvalidatePost removes a post from cache. Called after every update
// and delete so readers never see a stale record.
func (c *RedisCache) InvalidatePost(ctx context.Context, postID int) error {
	if err := c.client.Del(ctx, cacheKey(postID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// Ping checks if Redis is available.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cacheKey(postID int) string {
	return fmt.Sprintf("post:%d", postID)
}
