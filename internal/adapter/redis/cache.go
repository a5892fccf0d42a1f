package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/crowdmap-service/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// store is the subset of the go-redis client the cache uses.
type store interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
	Close() error
}

// PlaceCache stores fetched place lists in Redis with a TTL so repeated
// lookups for the same area skip the upstream POI providers.
type PlaceCache struct {
	client store
	ttl    time.Duration
	logger *slog.Logger
}

// NewPlaceCache connects to Redis at addr.
func NewPlaceCache(addr, password string, db int, ttl time.Duration, logger *slog.Logger) *PlaceCache {
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	return &PlaceCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached places for key. A miss reports ok=false with a nil error.
func (c *PlaceCache) Get(ctx context.Context, key string) ([]domain.Place, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var places []domain.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, false, fmt.Errorf("decode cached places %s: %w", key, err)
	}
	return places, true, nil
}

// Set stores places under key for the configured TTL.
func (c *PlaceCache) Set(ctx context.Context, key string, places []domain.Place) error {
	data, err := json.Marshal(places)
	if err != nil {
		return fmt.Errorf("encode places: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	c.logger.Debug("cached places", "key", key, "count", len(places), "ttl", c.ttl)
	return nil
}

// CheckReadiness pings Redis.
func (c *PlaceCache) CheckReadiness(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis not ready: %w", err)
	}
	return nil
}

func (c *PlaceCache) Close() error {
	return c.client.Close()
}
