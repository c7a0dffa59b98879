package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"storewatch/internal/models"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second

	storeListKey = "storewatch:stores"
)

// NewRedisClient returns a configured go-redis client and validates the
// connection with PING.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// StoreCache caches the read-mostly store catalog in Redis. A nil
// *StoreCache is valid and degrades every call to a miss, so callers can
// run without Redis configured.
type StoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStoreCache(client *redis.Client, ttl time.Duration) *StoreCache {
	return &StoreCache{client: client, ttl: ttl}
}

// Get returns the cached catalog, or (nil, false) on miss or any Redis
// error. Errors never propagate; the catalog source of truth is the DB.
func (c *StoreCache) Get(ctx context.Context) ([]models.Store, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, storeListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var stores []models.Store
	if err := json.Unmarshal(raw, &stores); err != nil {
		return nil, false
	}
	return stores, true
}

// Set stores the catalog with the configured TTL, best-effort.
func (c *StoreCache) Set(ctx context.Context, stores []models.Store) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(stores)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, storeListKey, raw, c.ttl).Err()
}

// Invalidate drops the cached catalog after ingestion writes.
func (c *StoreCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, storeListKey).Err()
}
