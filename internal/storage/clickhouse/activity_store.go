package clickhouse

import (
	"context"
	"fmt"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/storage"
)

// ActivityStore implements storage.ActivityStore using ClickHouse.
// dex_activity is a MergeTree table; duplicate signatures are tolerated
// and collapsed at query time.
type ActivityStore struct {
	conn *Conn
}

// NewActivityStore creates a new ActivityStore.
func NewActivityStore(conn *Conn) *ActivityStore {
	return &ActivityStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// InsertActivity appends one record.
func (s *ActivityStore) InsertActivity(ctx context.Context, rec *domain.ActivityRecord) error {
	if rec == nil || rec.TxSignature == "" {
		return storage.ErrInvalidInput
	}
	return s.InsertActivities(ctx, []*domain.ActivityRecord{rec})
}

// InsertActivities appends multiple records in one batch.
func (s *ActivityStore) InsertActivities(ctx context.Context, recs []*domain.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO dex_activity (
			tx_signature, slot, matched_rule, wallets_found, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, rec := range recs {
		err = batch.Append(
			rec.TxSignature, uint64(rec.Slot), rec.MatchedRule,
			uint32(rec.WalletsFound), uint64(rec.ObservedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
