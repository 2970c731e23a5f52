package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CacheKey represents a unique identifier for a cached response.
type CacheKey struct {
	// Host is the request host (e.g., "platformer.substack.com")
	Host string

	// Path is the request path (e.g., "/api/v1/archive")
	Path string

	// QueryParams are the query parameters (e.g., {"offset": "10"})
	QueryParams url.Values
}

// KeyFromURL builds a CacheKey from a request URL.
func KeyFromURL(u *url.URL) CacheKey {
	return CacheKey{
		Host:        strings.ToLower(u.Host),
		Path:        u.Path,
		QueryParams: u.Query(),
	}
}

// String generates a deterministic cache key string.
// Format: substack:host:path:query1=val1:query2=val2
//
// Example:
//
//	substack:platformer.substack.com:api/v1/archive:limit=10:offset=0:search=:sort=new
func (k CacheKey) String() string {
	parts := []string{"substack"}

	if k.Host != "" {
		parts = append(parts, k.Host)
	}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	// Sorted for determinism
	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.QueryParams[key], ",")))
		}
	}

	return strings.Join(parts, ":")
}
