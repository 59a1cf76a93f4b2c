package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GoRedis adapts *redis.Client to RedisClient.
type GoRedis struct {
	rdb *redis.Client
}

// NewRedisClient connects to a redis:// URL and pings it.
func NewRedisClient(ctx context.Context, url string) (*GoRedis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	return &GoRedis{rdb: rdb}, nil
}

func (g *GoRedis) Get(ctx context.Context, key string) (string, error) {
	v, err := g.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (g *GoRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return g.rdb.Set(ctx, key, value, expiration).Err()
}

func (g *GoRedis) Del(ctx context.Context, keys ...string) error {
	return g.rdb.Del(ctx, keys...).Err()
}

func (g *GoRedis) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return g.rdb.HGetAll(ctx, key).Result()
}

func (g *GoRedis) HSet(ctx context.Context, key string, values ...interface{}) error {
	return g.rdb.HSet(ctx, key, values...).Err()
}

// Close releases the connection pool.
func (g *GoRedis) Close() error {
	return g.rdb.Close()
}

var _ RedisClient = (*GoRedis)(nil)
