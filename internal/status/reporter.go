// Package status exposes read-only health snapshots of the radar.
package status

import (
	"encoding/json"
	"net/http"

	"solana-wallet-radar/internal/domain"
)

// Snapshot is a point-in-time view of all components. Building it has
// no side effects.
type Snapshot struct {
	ConnectionState   string  `json:"connection_state"`
	WatchedAccounts   int     `json:"watched_accounts"`
	Subscriptions     []int64 `json:"subscriptions"`
	ReconnectAttempts int     `json:"reconnect_attempts"`
	DedupCacheSize    int     `json:"dedup_cache_size"`
}

// ConnectionSource exposes connection state and reconnect counters.
type ConnectionSource interface {
	State() domain.ConnectionState
	Attempts() int
}

// SubscriptionSource exposes subscription counters.
type SubscriptionSource interface {
	WatchedCount() int
	SubscriptionIDs() []int64
}

// CacheSource exposes the dedup cache size.
type CacheSource interface {
	Size() int
}

// Reporter assembles snapshots from component read interfaces.
type Reporter struct {
	conn  ConnectionSource
	subs  SubscriptionSource
	cache CacheSource
}

// NewReporter creates a Reporter.
func NewReporter(conn ConnectionSource, subs SubscriptionSource, cache CacheSource) *Reporter {
	return &Reporter{conn: conn, subs: subs, cache: cache}
}

// Snapshot returns the current state of all components.
func (r *Reporter) Snapshot() Snapshot {
	ids := r.subs.SubscriptionIDs()
	if ids == nil {
		ids = []int64{}
	}
	return Snapshot{
		ConnectionState:   r.conn.State().String(),
		WatchedAccounts:   r.subs.WatchedCount(),
		Subscriptions:     ids,
		ReconnectAttempts: r.conn.Attempts(),
		DedupCacheSize:    r.cache.Size(),
	}
}

// Handler serves GET /health with a JSON snapshot; any other path is 404.
func (r *Reporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/health" {
			http.NotFound(w, req)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(r.Snapshot()); err != nil {
			http.Error(w, "encode snapshot", http.StatusInternalServerError)
		}
	})
}
