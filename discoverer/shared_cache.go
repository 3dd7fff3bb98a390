package discoverer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aldrinbus/bus/wire/ids"
)

const sharedCachePrefix = "discoverer:ready:"

// SharedCache persists which targets a Discoverer has already resolved
// to Redis, so a fleet of otherwise-independent client processes serving
// the same target set skip re-discovering what a sibling process already
// found. Entirely optional: a Discoverer works standalone, off any
// broker hot path, and never reads or writes a SharedCache itself; a
// caller uses one alongside Events.
type SharedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// SharedCacheConfig configures a SharedCache.
type SharedCacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 = entries never expire
	Options  *redis.Options
}

// NewSharedCache connects to Redis and verifies reachability.
func NewSharedCache(cfg SharedCacheConfig) (*SharedCache, error) {
	var rc *redis.Client
	if cfg.Options != nil {
		rc = redis.NewClient(cfg.Options)
	} else {
		rc = redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &SharedCache{client: rc, ttl: cfg.TTL}, nil
}

type cachedReady struct {
	Object   ids.ObjectId      `json:"object"`
	Services []ids.ServiceUUID `json:"services"`
}

// MarkReady records that key resolved with the given Event, visible to
// any other process sharing this Redis instance.
func (sc *SharedCache) MarkReady(ctx context.Context, key Key, ev Event) error {
	payload, err := json.Marshal(cachedReady{Object: ev.Object, Services: ev.Services})
	if err != nil {
		return err
	}
	return sc.client.Set(ctx, sharedCachePrefix+string(key), payload, sc.ttl).Err()
}

// Lookup returns a previously cached resolution for key, if present.
func (sc *SharedCache) Lookup(ctx context.Context, key Key) (Event, bool, error) {
	raw, err := sc.client.Get(ctx, sharedCachePrefix+string(key)).Result()
	if err == redis.Nil {
		return Event{}, false, nil
	}
	if err != nil {
		return Event{}, false, err
	}

	var cached cachedReady
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return Event{}, false, err
	}
	return Event{Key: key, Object: cached.Object, Services: cached.Services, Created: true}, true, nil
}

// Forget clears a cached resolution, e.g. once a Destroyed event for key
// is observed locally.
func (sc *SharedCache) Forget(ctx context.Context, key Key) error {
	return sc.client.Del(ctx, sharedCachePrefix+string(key)).Err()
}

// Close releases the underlying Redis connection.
func (sc *SharedCache) Close() error {
	return sc.client.Close()
}
