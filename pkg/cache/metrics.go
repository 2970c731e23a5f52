package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_cache_lookups_total",
		Help: "Response cache lookups by result (hit, miss, stale, invalid)",
	}, []string{"result"})

	storesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_cache_stores_total",
		Help: "Responses offered to the cache by outcome (stored, uncacheable_status, no_ttl)",
	}, []string{"result"})

	bytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_cache_bytes_total",
		Help: "Encoded entry bytes read from and written to Redis",
	}, []string{"direction"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "substack_cache_errors_total",
		Help: "Redis and encoding errors by operation (lookup, store, drop)",
	}, []string{"operation"})
)
