package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Vaishnavi-Kahar/FloorPlanManagementSystem/internal/model"
	"github.com/go-redis/redis/v8"
)

const layoutKeyPrefix = "layout:"

// RedisLayoutRepository stores layouts as JSON blobs in Redis. Layouts
// are small (tens of elements) and read-modify-written as a whole, so a
// single key per layout is enough.
type RedisLayoutRepository struct {
	c *redis.Client
}

// NewRedisLayoutRepository constructs a RedisLayoutRepository.
func NewRedisLayoutRepository(c *redis.Client) *RedisLayoutRepository {
	return &RedisLayoutRepository{c: c}
}

func (r *RedisLayoutRepository) Load(ctx context.Context, id string) (model.Layout, error) {
	raw, err := r.c.Get(ctx, layoutKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load layout %s: %w", id, err)
	}
	var l model.Layout
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return nil, fmt.Errorf("decode layout %s: %w", id, err)
	}
	return l, nil
}

func (r *RedisLayoutRepository) Save(ctx context.Context, id string, l model.Layout) error {
	raw, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode layout %s: %w", id, err)
	}
	// Layouts are durable state, not a cache: no TTL.
	if err := r.c.Set(ctx, layoutKeyPrefix+id, string(raw), 0).Err(); err != nil {
		return fmt.Errorf("save layout %s: %w", id, err)
	}
	return nil
}
