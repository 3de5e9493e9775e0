// Package radar wires the stream connection, subscription manager and
// notification pipeline into a running service.
package radar

import (
	"context"
	"log"
	"time"

	"solana-wallet-radar/internal/classify"
	"solana-wallet-radar/internal/dedup"
	"solana-wallet-radar/internal/discovery"
	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/observability"
	"solana-wallet-radar/internal/status"
	"solana-wallet-radar/internal/storage"
	"solana-wallet-radar/internal/stream"
	"solana-wallet-radar/internal/sub"
)

// Options contains configuration for creating a Runner.
type Options struct {
	StreamConfig stream.Config
	Programs     []string // DEX program ids to monitor
	Keywords     []string // nil uses classify.DefaultKeywords

	Store    storage.WalletStore
	Activity storage.ActivityStore // optional archive, may be nil

	RefreshInterval time.Duration // watched-account reload, default 5m
	StatusInterval  time.Duration // periodic status log, default 1m
	DedupCapacity   int

	Logger  *log.Logger
	OnFatal func(error)
}

// Runner owns the full pipeline:
// stream -> dispatcher -> {manager | dedup -> classifier -> extractor -> sink}.
// A single inbound frame stream drives all processing; the two timers
// (watched-account refresh, status log) run on the Run goroutine and
// interleave safely with reconnects because all subscription state is
// cleared on every disconnect.
type Runner struct {
	conn       *stream.Conn
	manager    *sub.Manager
	dispatcher *sub.Dispatcher
	cache      *dedup.Cache
	classifier *classify.Classifier
	sink       *discovery.Sink
	reporter   *status.Reporter

	store           storage.WalletStore
	refreshInterval time.Duration
	statusInterval  time.Duration
	logger          *log.Logger

	// writeCtx outlives Run's ctx so in-flight store writes get their
	// bounded grace period during shutdown.
	writeCtx context.Context
}

// NewRunner creates a Runner. Call Run to start it.
func NewRunner(opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	refreshInterval := opts.RefreshInterval
	if refreshInterval == 0 {
		refreshInterval = 5 * time.Minute
	}
	statusInterval := opts.StatusInterval
	if statusInterval == 0 {
		statusInterval = 1 * time.Minute
	}

	r := &Runner{
		store:           opts.Store,
		refreshInterval: refreshInterval,
		statusInterval:  statusInterval,
		logger:          logger,
		writeCtx:        context.Background(),
	}

	r.conn = stream.New(stream.Options{
		Config:  opts.StreamConfig,
		Handler: r,
		Logger:  logger,
		OnFatal: opts.OnFatal,
	})
	r.manager = sub.NewManager(r.conn, opts.Programs, logger)
	r.cache = dedup.New(opts.DedupCapacity)
	r.classifier = classify.NewClassifier(opts.Programs, opts.Keywords)
	r.sink = discovery.NewSink(discovery.SinkOptions{
		Store:     opts.Store,
		Activity:  opts.Activity,
		IsWatched: r.manager.IsWatched,
		Logger:    logger,
	})
	r.dispatcher = sub.NewDispatcher(r.manager, r.handleEvent, logger)
	r.reporter = status.NewReporter(r.conn, r.manager, r.cache)

	return r
}

// Reporter returns the health snapshot source for the HTTP surface.
func (r *Runner) Reporter() *status.Reporter {
	return r.reporter
}

// Run loads the watched-account set, opens the stream and blocks until
// the context is cancelled, then shuts the connection down.
func (r *Runner) Run(ctx context.Context) error {
	r.writeCtx = context.WithoutCancel(ctx)

	r.refreshWatched(ctx)
	r.conn.Connect()

	refreshTicker := time.NewTicker(r.refreshInterval)
	defer refreshTicker.Stop()
	statusTicker := time.NewTicker(r.statusInterval)
	defer statusTicker.Stop()

	r.logger.Printf("radar started, refresh interval: %v, status interval: %v",
		r.refreshInterval, r.statusInterval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Println("radar stopping...")
			r.conn.Disconnect()
			return ctx.Err()

		case <-refreshTicker.C:
			r.refreshWatched(ctx)

		case <-statusTicker.C:
			r.logStatus()
		}
	}
}

// HandleOpen re-issues every subscription for the new connection epoch.
// All state from previous epochs is discarded first.
func (r *Runner) HandleOpen(epoch uint64) {
	r.manager.Reset(epoch)
	r.manager.SubscribeAll()
	observability.UpdateConnectionState(int32(domain.StateConnected))
}

// HandleClose discards all subscription state; the remote invalidated
// every subscription id with the connection.
func (r *Runner) HandleClose(epoch uint64) {
	r.manager.Clear()
	observability.UpdateConnectionState(int32(domain.StateDisconnected))
}

// HandleFrame routes one raw inbound frame.
func (r *Runner) HandleFrame(raw []byte) {
	r.dispatcher.OnFrame(raw)
}

// handleEvent is the notification pipeline. Every stage catches and
// logs its own failures; nothing propagates past the dispatcher.
func (r *Runner) handleEvent(event *domain.LogEvent) {
	observability.RecordNotification()

	if event.Signature == "" {
		return
	}

	if r.cache.Seen(event.Signature) {
		observability.RecordDuplicate()
		return
	}
	observability.UpdateDedupCacheSize(r.cache.Size())

	relevant, rule := r.classifier.IsRelevant(event.Logs)
	if !relevant {
		return
	}
	observability.RecordRelevant()

	addrs := classify.ExtractAddresses(event.Logs)
	if len(addrs) == 0 {
		return
	}

	r.sink.Emit(r.writeCtx, event, addrs, rule)
}

// refreshWatched reloads the watched-account set from the store and
// re-subscribes when connected. Store failures are logged, never fatal.
func (r *Runner) refreshWatched(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	addrs, err := r.store.LoadWatchedAccounts(loadCtx)
	if err != nil {
		observability.RecordStoreError("load_watched")
		r.logger.Printf("watched-account reload failed: %v", err)
		return
	}

	r.manager.RefreshWatchedAccounts(addrs)
	observability.UpdateWatchedAccounts(len(addrs))
	r.logger.Printf("watched-account set refreshed: %d accounts", len(addrs))
}

// logStatus emits the periodic status line and refreshes state gauges.
func (r *Runner) logStatus() {
	snap := r.reporter.Snapshot()
	observability.UpdateConnectionState(int32(r.conn.State()))
	observability.UpdateDedupCacheSize(snap.DedupCacheSize)

	r.logger.Printf("status: conn=%s watched=%d subs=%d reconnect_attempts=%d dedup=%d",
		snap.ConnectionState, snap.WatchedAccounts, len(snap.Subscriptions),
		snap.ReconnectAttempts, snap.DedupCacheSize)
}
