// Package cache provides an optional Redis-backed cache for gateway listing
// responses.
//
// Entries carry their own freshness window. A fresh entry is served without a
// network call; a stale entry is kept in Redis for a retention period so the
// client can revalidate it with If-None-Match / If-Modified-Since when the
// gateway supplied an ETag or Last-Modified header.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	manager := cache.NewManager(redisClient, cache.WithDefaultTTL(10*time.Second))
//
//	key := cache.Key{
//		Endpoint:    "/payments",
//		QueryParams: url.Values{"page": []string{"0"}, "size": []string{"10"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the gateway
//	}
//
// # Invalidation
//
// Writes that change a listing (creating a payment) drop every cached page of
// that endpoint:
//
//	n, err := manager.DeleteEndpoint(ctx, "/payments")
//
// # Metrics
//
//   - paynow_cache_hits_total{layer="redis"}
//   - paynow_cache_misses_total
//   - paynow_cache_size_bytes{layer="redis"}
//   - paynow_304_responses_total
//   - paynow_conditional_requests_total
//   - paynow_cache_errors_total{operation}
package cache
