// Package cache provides an optional Redis-backed response cache for the
// substack client.
//
// Responses are keyed by host, path and sorted query parameters of the
// request URL. The Manager decides what is cacheable: only 200 responses are
// stored, with their body and Content-Type, for a TTL chosen by the client
// configuration. Collected results are never persisted here; the cache only
// short-circuits repeated GETs of the same URL.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	cfg := client.DefaultConfig()
//	cfg.Cache = cache.NewManager(redisClient)
//	cfg.CacheTTL = 10 * time.Minute
//
// # Metrics
//
//   - substack_cache_lookups_total{result} - hit, miss, stale, invalid
//   - substack_cache_stores_total{result} - stored, uncacheable_status, no_ttl
//   - substack_cache_bytes_total{direction} - read, written
//   - substack_cache_errors_total{operation} - lookup, store, drop
package cache
