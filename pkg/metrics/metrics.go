// Package metrics exposes the Prometheus registry used by paynow-client.
// Metrics themselves are declared with promauto in the packages that update
// them (client, cache, breaker, pagination); this package documents them and serves
// them over HTTP.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by paynow-client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler serves every registered metric in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - paynow_requests_total{endpoint, status} (Counter): gateway requests by route and HTTP status
//   - paynow_request_duration_seconds{endpoint} (Histogram): request duration by route
//   - paynow_errors_total{class} (Counter): errors by class (client, server, network, decode)
//   - paynow_retries_total{error_class} (Counter): retry attempts
//   - paynow_retry_exhausted_total{error_class} (Counter): calls that used every attempt
//
// Cache Metrics (pkg/cache):
//   - paynow_cache_hits_total{layer="redis"} (Counter)
//   - paynow_cache_misses_total (Counter)
//   - paynow_cache_size_bytes{layer="redis"} (Gauge)
//   - paynow_304_responses_total (Counter)
//   - paynow_conditional_requests_total (Counter)
//   - paynow_cache_errors_total{operation} (Counter)
//
// Breaker Metrics (pkg/breaker):
//   - paynow_breaker_failures (Gauge): failures counted in the current window
//   - paynow_breaker_blocks_total (Counter): requests refused while open
//   - paynow_breaker_throttles_total (Counter): requests delayed above the warning threshold
//
// Pagination Metrics (pkg/pagination):
//   - paynow_page_fetches_total{result} (Counter): success, error, stale
//   - paynow_page_fetch_duration_seconds (Histogram)
//   - paynow_page_fetches_in_flight (Gauge)
//
// Example Prometheus Queries:
//
//   # Share of page fetches discarded as stale
//   rate(paynow_page_fetches_total{result="stale"}[5m]) / rate(paynow_page_fetches_total[5m])
//
//   # P95 listing latency
//   histogram_quantile(0.95, rate(paynow_request_duration_seconds_bucket{endpoint="/payments"}[5m]))
