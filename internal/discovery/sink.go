package discovery

import (
	"context"
	"log"
	"time"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/observability"
	"solana-wallet-radar/internal/storage"
)

// defaultWriteTimeout bounds every store call so a slow persistence
// write cannot stall the frame-processing path.
const defaultWriteTimeout = 5 * time.Second

// Sink forwards newly extracted addresses to the persistence store as
// candidate records. Best-effort: store failures are logged and
// otherwise ignored, never propagated into the stream path.
type Sink struct {
	store        storage.WalletStore
	activity     storage.ActivityStore // optional archive, may be nil
	isWatched    func(string) bool
	logger       *log.Logger
	writeTimeout time.Duration
	now          func() time.Time
}

// SinkOptions contains configuration for creating a Sink.
type SinkOptions struct {
	Store        storage.WalletStore
	Activity     storage.ActivityStore
	IsWatched    func(string) bool
	Logger       *log.Logger
	WriteTimeout time.Duration
	Now          func() time.Time
}

// NewSink creates a Sink.
func NewSink(opts SinkOptions) *Sink {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = defaultWriteTimeout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	isWatched := opts.IsWatched
	if isWatched == nil {
		isWatched = func(string) bool { return false }
	}

	return &Sink{
		store:        opts.Store,
		activity:     opts.Activity,
		isWatched:    isWatched,
		logger:       logger,
		writeTimeout: writeTimeout,
		now:          now,
	}
}

// Emit upserts a candidate record for every extracted address that is
// not already watched, then archives the activity. Returns the number
// of candidates emitted.
func (s *Sink) Emit(ctx context.Context, event *domain.LogEvent, addrs []string, matchedRule string) int {
	discoveredAt := s.now().UnixMilli()
	emitted := 0

	for _, addr := range addrs {
		if s.isWatched(addr) {
			continue
		}

		candidate := &domain.CandidateWallet{
			Address:      addr,
			Source:       domain.SourceDEXActivity,
			TxSignature:  event.Signature,
			Slot:         event.Slot,
			Confidence:   scoreAddress(addr),
			DiscoveredAt: discoveredAt,
		}

		writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
		err := s.store.UpsertCandidate(writeCtx, candidate)
		cancel()
		if err != nil {
			observability.RecordStoreError("upsert_candidate")
			s.logger.Printf("candidate upsert failed for %s: %v", addr, err)
			continue
		}

		observability.RecordCandidate()
		emitted++
	}

	s.archive(ctx, event, matchedRule, emitted)
	return emitted
}

// archive records the activity for offline analysis. Best-effort.
func (s *Sink) archive(ctx context.Context, event *domain.LogEvent, matchedRule string, wallets int) {
	if s.activity == nil {
		return
	}

	rec := &domain.ActivityRecord{
		TxSignature:  event.Signature,
		Slot:         event.Slot,
		MatchedRule:  matchedRule,
		WalletsFound: wallets,
		ObservedAt:   s.now().UnixMilli(),
	}

	writeCtx, cancel := context.WithTimeout(ctx, s.writeTimeout)
	defer cancel()
	if err := s.activity.InsertActivity(writeCtx, rec); err != nil {
		observability.RecordStoreError("insert_activity")
		s.logger.Printf("activity archive failed for %s: %v", event.Signature, err)
	}
}
