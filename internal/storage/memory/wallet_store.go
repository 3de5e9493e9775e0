package memory

import (
	"context"
	"sort"
	"sync"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu         sync.RWMutex
	watched    map[string]struct{}
	candidates map[string]*domain.CandidateWallet // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		watched:    make(map[string]struct{}),
		candidates: make(map[string]*domain.CandidateWallet),
	}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// AddWatched marks addresses as tracked. Test and --use-memory helper.
func (s *WalletStore) AddWatched(addrs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range addrs {
		s.watched[a] = struct{}{}
	}
}

// LoadWatchedAccounts returns all tracked wallet addresses.
func (s *WalletStore) LoadWatchedAccounts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	addrs := make([]string, 0, len(s.watched))
	for a := range s.watched {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return addrs, nil
}

// UpsertCandidate inserts or refreshes a candidate keyed by address.
func (s *WalletStore) UpsertCandidate(_ context.Context, c *domain.CandidateWallet) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.candidates[c.Address]; ok {
		// Keep first-discovery provenance, refresh the last-seen slot.
		existing.Slot = c.Slot
		if c.Confidence > existing.Confidence {
			existing.Confidence = c.Confidence
		}
		return nil
	}

	candidateCopy := *c
	s.candidates[c.Address] = &candidateCopy
	return nil
}

// GetCandidate returns a stored candidate by address. Test helper.
func (s *WalletStore) GetCandidate(address string) (*domain.CandidateWallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.candidates[address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	candidateCopy := *c
	return &candidateCopy, nil
}

// CandidateCount returns the number of distinct candidates stored.
func (s *WalletStore) CandidateCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.candidates)
}
