package postgres

import (
	"context"
	"fmt"

	"solana-wallet-radar/internal/domain"
	"solana-wallet-radar/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

// LoadWatchedAccounts returns all tracked wallet addresses.
func (s *WalletStore) LoadWatchedAccounts(ctx context.Context) ([]string, error) {
	query := `
		SELECT address
		FROM watched_wallets
		ORDER BY address ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load watched accounts: %w", err)
	}
	defer rows.Close()

	var addrs []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan watched wallet row: %w", err)
		}
		addrs = append(addrs, addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched wallet rows: %w", err)
	}

	return addrs, nil
}

// AddWatched inserts a tracked wallet. Already-tracked addresses are a no-op.
func (s *WalletStore) AddWatched(ctx context.Context, address string) error {
	if address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO watched_wallets (address)
		VALUES ($1)
		ON CONFLICT (address) DO NOTHING
	`

	if _, err := s.pool.Exec(ctx, query, address); err != nil {
		return fmt.Errorf("add watched wallet: %w", err)
	}
	return nil
}

// UpsertCandidate inserts a candidate or refreshes an existing row.
// Idempotent on address: re-discovery bumps last-seen fields and keeps
// the higher confidence; first-discovery provenance is preserved.
func (s *WalletStore) UpsertCandidate(ctx context.Context, c *domain.CandidateWallet) error {
	if c == nil || c.Address == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO candidate_wallets (
			address, source, tx_signature, slot, confidence, discovered_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (address) DO UPDATE SET
			last_seen_at = EXCLUDED.last_seen_at,
			slot = EXCLUDED.slot,
			confidence = GREATEST(candidate_wallets.confidence, EXCLUDED.confidence)
	`

	_, err := s.pool.Exec(ctx, query,
		c.Address,
		c.Source,
		c.TxSignature,
		c.Slot,
		c.Confidence,
		c.DiscoveredAt,
	)
	if err != nil {
		return fmt.Errorf("upsert candidate wallet: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by address. Returns ErrNotFound if not exists.
func (s *WalletStore) GetCandidate(ctx context.Context, address string) (*domain.CandidateWallet, error) {
	query := `
		SELECT address, source, tx_signature, slot, confidence, discovered_at
		FROM candidate_wallets
		WHERE address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)

	var c domain.CandidateWallet
	err := row.Scan(
		&c.Address,
		&c.Source,
		&c.TxSignature,
		&c.Slot,
		&c.Confidence,
		&c.DiscoveredAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate by address: %w", err)
	}
	return &c, nil
}
