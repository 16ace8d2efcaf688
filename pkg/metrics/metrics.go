// Package metrics provides the centralized Prometheus metrics registry for
// esferry. All metrics are defined in their respective packages (elastic,
// export) to maintain modularity and avoid circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by esferry. All metrics
// are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Engine Request Metrics (pkg/elastic):
//   - esferry_engine_requests_total{operation, status} (Counter): Requests by
//     operation (search, scroll, clear_scroll) and HTTP status, with
//     "network_error" for requests that never produced a response
//   - esferry_engine_request_duration_seconds{operation} (Histogram): Request
//     duration by operation
//
// Export Metrics (pkg/export):
//   - esferry_documents_exported_total (Counter): Documents written to the
//     output stream
//   - esferry_pages_fetched_total (Counter): Non-empty pages fetched across
//     all workers
//   - esferry_sessions_failed_total (Counter): Worker sessions that
//     terminated in failure
//
// Example Prometheus Queries:
//
//   # Export throughput
//   rate(esferry_documents_exported_total[1m])
//
//   # Engine error rate
//   sum(rate(esferry_engine_requests_total{status=~"4..|5..|network_error"}[5m]))
//
//   # P95 page fetch latency
//   histogram_quantile(0.95, rate(esferry_engine_request_duration_seconds_bucket[5m]))
