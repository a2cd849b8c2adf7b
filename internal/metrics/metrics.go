// Package metrics はゲートウェイのPrometheusメトリクスを提供する。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal は上流プラットフォームへのリクエスト数。
	// 通信エラーはstatus="error"で数える。
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_upstream_requests_total",
			Help: "Total number of requests sent to the upstream platform",
		},
		[]string{"path", "status"},
	)

	// UpstreamRequestDuration は上流プラットフォームへのリクエスト所要時間。
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upstream_request_duration_seconds",
			Help:    "Upstream request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// HTTPRequestsTotal はゲートウェイが受け付けたリクエスト数。
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests handled by the gateway",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration はゲートウェイのリクエスト処理時間。
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// ObserveUpstream は上流呼び出し1回分を記録する。webex.Observerとして使う。
func ObserveUpstream(path string, statusCode int, elapsed time.Duration, err error) {
	status := strconv.Itoa(statusCode)
	if err != nil {
		status = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(path, status).Inc()
	UpstreamRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
