package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"blogfolio/internal/model"
)

// PostCache keeps published post details (author joined in) in redis, keyed
// by slug. Unpublished posts must never be written here.
type PostCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewPostCache(client *redisv9.Client, ttl time.Duration) *PostCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &PostCache{client: client, ttl: ttl}
}

func (c *PostCache) GetDetail(ctx context.Context, slug string) (*model.Post, bool, error) {
	raw, err := c.client.Get(ctx, c.detailKey(slug)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get post detail failed: %w", err)
	}

	var post model.Post
	if err := json.Unmarshal([]byte(raw), &post); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached post failed: %w", err)
	}
	return &post, true, nil
}

func (c *PostCache) SetDetail(ctx context.Context, post *model.Post) error {
	payload, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal post cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.detailKey(post.Slug), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set post detail failed: %w", err)
	}
	return nil
}

func (c *PostCache) DeleteDetail(ctx context.Context, slug string) error {
	if err := c.client.Del(ctx, c.detailKey(slug)).Err(); err != nil {
		return fmt.Errorf("redis delete post detail failed: %w", err)
	}
	return nil
}

func (c *PostCache) detailKey(slug string) string {
	return fmt.Sprintf("post:detail:%s", slug)
}
