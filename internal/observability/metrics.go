// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Stream metrics
	FramesReceived     prometheus.Counter
	ReconnectsTotal    prometheus.Counter
	ConnectionState    prometheus.Gauge
	SubscribeRequests  prometheus.Counter
	SubscriptionErrors prometheus.Counter

	// Pipeline metrics
	NotificationsProcessed prometheus.Counter
	DuplicatesSkipped      prometheus.Counter
	RelevantNotifications  prometheus.Counter
	CandidatesEmitted      prometheus.Counter

	// State gauges
	DedupCacheSize  prometheus.Gauge
	WatchedAccounts prometheus.Gauge

	// Store metrics
	StoreErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_radar"
	}

	return &Metrics{
		FramesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "frames_received_total",
			Help:      "Total number of inbound WebSocket frames",
		}),
		ReconnectsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "reconnects_total",
			Help:      "Total number of connection losses followed by reconnect scheduling",
		}),
		ConnectionState: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "connection_state",
			Help:      "Connection state (0=disconnected, 1=connecting, 2=connected)",
		}),
		SubscribeRequests: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribe_requests_total",
			Help:      "Total number of logsSubscribe requests sent",
		}),
		SubscriptionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscription_errors_total",
			Help:      "Total number of subscription error responses",
		}),

		NotificationsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "notifications_processed_total",
			Help:      "Total number of log notifications processed",
		}),
		DuplicatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duplicates_skipped_total",
			Help:      "Total number of duplicate notifications discarded by signature",
		}),
		RelevantNotifications: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "relevant_notifications_total",
			Help:      "Total number of notifications classified as exchange-relevant",
		}),
		CandidatesEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "candidates_emitted_total",
			Help:      "Total number of candidate wallets forwarded to the store",
		}),

		DedupCacheSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "dedup_cache_size",
			Help:      "Current number of signatures retained in the dedup cache",
		}),
		WatchedAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "discovery",
			Name:      "watched_accounts",
			Help:      "Current size of the watched-account set",
		}),

		StoreErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Total number of persistence store errors by operation",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordFrame increments the frames received counter.
func RecordFrame() {
	DefaultMetrics.FramesReceived.Inc()
}

// RecordReconnect increments the reconnects counter.
func RecordReconnect() {
	DefaultMetrics.ReconnectsTotal.Inc()
}

// RecordSubscribeRequest increments the subscribe requests counter.
func RecordSubscribeRequest() {
	DefaultMetrics.SubscribeRequests.Inc()
}

// RecordSubscriptionError increments the subscription errors counter.
func RecordSubscriptionError() {
	DefaultMetrics.SubscriptionErrors.Inc()
}

// RecordNotification increments the notifications processed counter.
func RecordNotification() {
	DefaultMetrics.NotificationsProcessed.Inc()
}

// RecordDuplicate increments the duplicates skipped counter.
func RecordDuplicate() {
	DefaultMetrics.DuplicatesSkipped.Inc()
}

// RecordRelevant increments the relevant notifications counter.
func RecordRelevant() {
	DefaultMetrics.RelevantNotifications.Inc()
}

// RecordCandidate increments the candidates emitted counter.
func RecordCandidate() {
	DefaultMetrics.CandidatesEmitted.Inc()
}

// RecordStoreError records a persistence store error.
func RecordStoreError(operation string) {
	DefaultMetrics.StoreErrors.WithLabelValues(operation).Inc()
}

// UpdateConnectionState updates the connection state gauge.
func UpdateConnectionState(state int32) {
	DefaultMetrics.ConnectionState.Set(float64(state))
}

// UpdateDedupCacheSize updates the dedup cache size gauge.
func UpdateDedupCacheSize(size int) {
	DefaultMetrics.DedupCacheSize.Set(float64(size))
}

// UpdateWatchedAccounts updates the watched accounts gauge.
func UpdateWatchedAccounts(count int) {
	DefaultMetrics.WatchedAccounts.Set(float64(count))
}
