package storage

import (
	"context"

	"solana-wallet-radar/internal/domain"
)

// WalletStore provides access to watched_wallets and candidate_wallets storage.
type WalletStore interface {
	// LoadWatchedAccounts returns all wallet addresses currently tracked.
	LoadWatchedAccounts(ctx context.Context) ([]string, error)

	// UpsertCandidate inserts a candidate or refreshes an existing row.
	// Idempotent on address: re-discovering the same wallet updates
	// last-seen metadata instead of failing.
	UpsertCandidate(ctx context.Context, c *domain.CandidateWallet) error
}

// ActivityStore archives relevant DEX activity records.
type ActivityStore interface {
	// InsertActivity appends one record. Duplicate signatures are tolerated.
	InsertActivity(ctx context.Context, rec *domain.ActivityRecord) error
}
