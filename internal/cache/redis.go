package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"catalogapi/internal/config"
	"catalogapi/internal/model"
)

const productKeyPrefix = "product:"

// redisCache implements ProductCache on top of Redis with a fixed TTL.
type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to Redis and verifies connectivity with a short timeout.
func NewRedis(cfg config.RedisConfig) (ProductCache, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &redisCache{client: client, ttl: ttl}, nil
}

func (c *redisCache) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	val, err := c.client.Get(ctx, productKeyPrefix+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var p model.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		// Stale or corrupt entry; drop it and report a miss.
		_ = c.client.Del(ctx, productKeyPrefix+id).Err()
		return nil, nil
	}
	return &p, nil
}

func (c *redisCache) SetProduct(ctx context.Context, p *model.Product) error {
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, productKeyPrefix+p.ID, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *redisCache) DeleteProduct(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
