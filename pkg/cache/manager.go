package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates no usable response is cached for the URL
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates a stored response could not be decoded
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// keptHeaders are the response headers stored with a cached body.
var keptHeaders = []string{"Content-Type"}

// Manager caches GET responses in Redis, keyed by request URL.
type Manager struct {
	redis *redis.Client
}

// NewManager creates a new cache manager with Redis backend.
func NewManager(redisClient *redis.Client) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{redis: redisClient}
}

// Cacheable reports whether a response with this status may be stored.
// Only 200 qualifies; error pages must be refetched on the next call.
func Cacheable(statusCode int) bool {
	return statusCode == http.StatusOK
}

// Lookup returns the cached response for u.
// A missing or stale entry yields ErrCacheMiss. An entry that cannot be
// decoded is removed and reported as ErrInvalidEntry.
func (m *Manager) Lookup(ctx context.Context, u *url.URL) (*CacheEntry, error) {
	key := KeyFromURL(u).String()

	data, err := m.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		lookupsTotal.WithLabelValues("miss").Inc()
		return nil, ErrCacheMiss
	}
	if err != nil {
		errorsTotal.WithLabelValues("lookup").Inc()
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		lookupsTotal.WithLabelValues("invalid").Inc()
		m.drop(ctx, key)
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, key, err)
	}
	if !Cacheable(entry.StatusCode) {
		lookupsTotal.WithLabelValues("invalid").Inc()
		m.drop(ctx, key)
		return nil, fmt.Errorf("%w: %s: status %d", ErrInvalidEntry, key, entry.StatusCode)
	}

	// Redis expiry and Expires can drift by a few milliseconds.
	if entry.IsExpired() {
		lookupsTotal.WithLabelValues("stale").Inc()
		m.drop(ctx, key)
		return nil, ErrCacheMiss
	}

	lookupsTotal.WithLabelValues("hit").Inc()
	bytesTotal.WithLabelValues("read").Add(float64(len(data)))
	return &entry, nil
}

// Store caches the response to a GET of u for ttl and reports whether it
// was stored. Responses that are not Cacheable and non-positive ttls are
// skipped without error. Only keptHeaders are retained.
func (m *Manager) Store(ctx context.Context, u *url.URL, statusCode int, header http.Header, body []byte, ttl time.Duration) (bool, error) {
	if !Cacheable(statusCode) {
		storesTotal.WithLabelValues("uncacheable_status").Inc()
		return false, nil
	}
	if ttl <= 0 {
		storesTotal.WithLabelValues("no_ttl").Inc()
		return false, nil
	}

	key := KeyFromURL(u).String()
	entry := NewEntry(statusCode, storedHeader(header), body, ttl)

	data, err := json.Marshal(entry)
	if err != nil {
		errorsTotal.WithLabelValues("store").Inc()
		return false, fmt.Errorf("marshal cache entry: %w", err)
	}

	if err := m.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		errorsTotal.WithLabelValues("store").Inc()
		return false, fmt.Errorf("redis set %s: %w", key, err)
	}

	storesTotal.WithLabelValues("stored").Inc()
	bytesTotal.WithLabelValues("written").Add(float64(len(data)))
	return true, nil
}

func (m *Manager) drop(ctx context.Context, key string) {
	if err := m.redis.Del(ctx, key).Err(); err != nil {
		errorsTotal.WithLabelValues("drop").Inc()
	}
}

func storedHeader(h http.Header) http.Header {
	kept := http.Header{}
	for _, name := range keptHeaders {
		if v := h.Values(name); len(v) > 0 {
			kept[http.CanonicalHeaderKey(name)] = append([]string(nil), v...)
		}
	}
	return kept
}
