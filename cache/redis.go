package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-draws/models"
	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned when a draw is not cached.
var ErrMiss = errors.New("draw not cached")

// DrawCache keeps recently read draw records.
type DrawCache interface {
	Get(ctx context.Context, drawID string) (*models.DrawRecord, error)
	Set(ctx context.Context, rec *models.DrawRecord) error
	Invalidate(ctx context.Context, drawID string) error
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewClient создает новый клиент Redis
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 2 * time.Second,
	})
}

// RedisDrawCache stores each draw record as one JSON string.
// Формат ключа: draw:{id}
type RedisDrawCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDrawCache(client *redis.Client, ttl time.Duration) *RedisDrawCache {
	return &RedisDrawCache{client: client, ttl: ttl}
}

func key(drawID string) string {
	return fmt.Sprintf("draw:%s", drawID)
}

func (c *RedisDrawCache) Get(ctx context.Context, drawID string) (*models.DrawRecord, error) {
	raw, err := c.client.Get(ctx, key(drawID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read draw %s from cache: %w", drawID, err)
	}
	rec := &models.DrawRecord{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("failed to decode cached draw %s: %w", drawID, err)
	}
	return rec, nil
}

func (c *RedisDrawCache) Set(ctx context.Context, rec *models.DrawRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode draw %s: %w", rec.DrawID, err)
	}
	if err := c.client.Set(ctx, key(rec.DrawID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache draw %s: %w", rec.DrawID, err)
	}
	return nil
}

func (c *RedisDrawCache) Invalidate(ctx context.Context, drawID string) error {
	if err := c.client.Del(ctx, key(drawID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate draw %s: %w", drawID, err)
	}
	return nil
}

// Nop never caches. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*models.DrawRecord, error) { return nil, ErrMiss }
func (Nop) Set(context.Context, *models.DrawRecord) error           { return nil }
func (Nop) Invalidate(context.Context, string) error                { return nil }
