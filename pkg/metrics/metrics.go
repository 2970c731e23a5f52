// Package metrics provides the Prometheus registry reference for the Substack client.
// All metrics are defined in their respective packages (client, pagination, cache)
// to maintain modularity and avoid circular dependencies.
//
// This package documents the available metrics and can print a summary of them.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads back the metrics registered on Registry.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every metric this module registers.
const Prefix = "substack_"

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - substack_requests_total{status} (Counter): Get calls by HTTP status, network_error or cache_hit
//   - substack_request_duration_seconds (Histogram): Get duration including retries
//
// Retry Metrics (pkg/client):
//   - substack_retries_total (Counter): Retry attempts after a transport error
//   - substack_retry_backoff_seconds (Histogram): Wait before each retry
//   - substack_retry_exhausted_total (Counter): Requests that failed every attempt
//
// Pagination Metrics (pkg/pagination):
//   - substack_pages_fetched_total{collection} (Counter): Pages fetched per collection
//   - substack_collection_stops_total{collection, reason} (Counter): Finished collections by stop reason
//
// Cache Metrics (pkg/cache):
//   - substack_cache_lookups_total{result} (Counter): Lookups by hit, miss, stale, invalid
//   - substack_cache_stores_total{result} (Counter): Offered responses by stored, uncacheable_status, no_ttl
//   - substack_cache_bytes_total{direction} (Counter): Entry bytes read and written
//   - substack_cache_errors_total{operation} (Counter): Redis errors by lookup, store, drop
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(substack_cache_lookups_total{result="hit"}[5m])) /
//   sum(rate(substack_cache_lookups_total[5m]))
//
//   # Retry Rate
//   rate(substack_retries_total[5m]) / rate(substack_requests_total[5m])
//
//   # Archive collections ending on a repeated page
//   substack_collection_stops_total{collection="archive", reason="repeated_last_id"}

// WriteSummary writes one line per module metric series to w, sorted by name.
// Counters and gauges print their value; histograms print sample count and sum.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			lines = append(lines, mf.GetName()+labels(m)+" "+value(mf.GetType(), m))
		}
	}
	sort.Strings(lines)

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	pairs := m.GetLabel()
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, lp := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%g", h.GetSampleCount(), h.GetSampleSum())
	default:
		return "?"
	}
}
