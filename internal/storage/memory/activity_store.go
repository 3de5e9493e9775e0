package memory

import (
	"context"
	"sync"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu      sync.RWMutex
	records []*domain.ActivityRecord
}

// NewActivityStore creates a new in-memory activity store.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

// Compile-time interface check.
var _ storage.ActivityStore = (*ActivityStore)(nil)

// InsertActivity appends one record.
func (s *ActivityStore) InsertActivity(_ context.Context, rec *domain.ActivityRecord) error {
	if rec == nil || rec.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recCopy := *rec
	s.records = append(s.records, &recCopy)
	return nil
}

// Records returns a copy of all archived records. Test helper.
func (s *ActivityStore) Records() []*domain.ActivityRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ActivityRecord, len(s.records))
	for i, r := range s.records {
		recCopy := *r
		out[i] = &recCopy
	}
	return out
}
