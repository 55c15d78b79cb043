package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultStaleRetention is how long an expired entry stays available for revalidation.
const DefaultStaleRetention = 5 * time.Minute

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis          *redis.Client
	defaultTTL     time.Duration
	staleRetention time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithDefaultTTL sets the freshness window used when responses carry no freshness headers.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.defaultTTL = ttl
		}
	}
}

// WithStaleRetention sets how long expired entries are kept for revalidation.
func WithStaleRetention(d time.Duration) Option {
	return func(m *Manager) {
		if d >= 0 {
			m.staleRetention = d
		}
	}
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client, opts ...Option) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	m := &Manager{
		redis:          redisClient,
		defaultTTL:     DefaultTTL,
		staleRetention: DefaultStaleRetention,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DefaultTTL returns the configured fallback freshness window.
func (m *Manager) DefaultTTL() time.Duration {
	return m.defaultTTL
}

// Get retrieves a cache entry by key. Expired entries still within the
// retention window are returned; callers check IsExpired.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, key Key) (*Entry, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	if entry.IsExpired() && !ShouldMakeConditionalRequest(&entry) {
		// Nothing to revalidate with
		_ = m.Delete(ctx, key)
		CacheMisses.Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("redis").Inc()
	return &entry, nil
}

// Set stores an entry. The Redis key outlives the entry's freshness by the
// stale retention window when the entry can be revalidated.
func (m *Manager) Set(ctx context.Context, key Key, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	ttl := entry.TTL()
	if ShouldMakeConditionalRequest(entry) {
		ttl += m.staleRetention
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	CacheSize.WithLabelValues("redis").Add(float64(len(data)))
	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key Key) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// DeleteEndpoint removes every cached query of endpoint and returns how many keys were dropped.
func (m *Manager) DeleteEndpoint(ctx context.Context, endpoint string) (int, error) {
	prefix := endpointPrefix(endpoint)
	deleted := 0

	if n, err := m.redis.Del(ctx, prefix).Result(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return 0, fmt.Errorf("redis del: %w", err)
	} else {
		deleted += int(n)
	}

	iter := m.redis.Scan(ctx, 0, prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return deleted, fmt.Errorf("redis scan: %w", err)
	}

	if len(keys) > 0 {
		n, err := m.redis.Del(ctx, keys...).Result()
		if err != nil {
			CacheErrors.WithLabelValues("delete").Inc()
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += int(n)
	}

	return deleted, nil
}

// Refresh extends a revalidated entry using the freshness headers of a 304 response.
func (m *Manager) Refresh(ctx context.Context, key Key, entry *Entry, header http.Header) error {
	if entry == nil {
		return fmt.Errorf("cache entry cannot be nil")
	}

	refreshed := *entry
	refreshed.Expires = parseExpires(header, m.defaultTTL)
	refreshed.CachedAt = time.Now()
	if etag := header.Get("ETag"); etag != "" {
		refreshed.ETag = etag
	}

	return m.Set(ctx, key, &refreshed)
}
