package directory

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache stores JSON-encoded values with a TTL. Get reports a miss with
// found=false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(e.data, dest)
}

func (m *MemoryCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	e := memoryEntry{data: data}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	m.mu.Unlock()
	return nil
}

type RedisCache struct {
	client *redis.Client
	prefix string
}

func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (r *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.prefix + k
	}
	return r.client.Del(ctx, full...).Err()
}

// Tiered reads the near cache first and backfills it from the far one.
// Writes and deletes go to both.
type Tiered struct {
	Near Cache
	Far  Cache
	// NearTTL bounds how long a backfilled value lives in the near tier.
	NearTTL time.Duration
	Log     *slog.Logger
}

func (t *Tiered) Get(ctx context.Context, key string, dest any) (bool, error) {
	if ok, err := t.Near.Get(ctx, key, dest); err == nil && ok {
		return true, nil
	}

	var raw json.RawMessage
	ok, err := t.Far.Get(ctx, key, &raw)
	if err != nil || !ok {
		return false, err
	}
	if err := t.Near.Set(ctx, key, raw, t.NearTTL); err != nil {
		l := t.Log
		if l == nil {
			l = slog.Default()
		}
		l.Warn("directory_cache_error", "key", key, "tier", "near", "error", err)
	}
	return true, json.Unmarshal(raw, dest)
}

func (t *Tiered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	nearTTL := ttl
	if t.NearTTL > 0 && (nearTTL <= 0 || t.NearTTL < nearTTL) {
		nearTTL = t.NearTTL
	}
	return errors.Join(t.Near.Set(ctx, key, value, nearTTL), t.Far.Set(ctx, key, value, ttl))
}

func (t *Tiered) Delete(ctx context.Context, keys ...string) error {
	return errors.Join(t.Near.Delete(ctx, keys...), t.Far.Delete(ctx, keys...))
}
