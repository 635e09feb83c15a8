package repositories

import (
	"errors"

	"wagmi/internal/models"
)

var ErrWalletNotFound = errors.New("wallet not found")

// WalletRepository persists coin/point balances and the credit ledger.
type WalletRepository interface {
	GetByUserID(userID uint) (*models.Wallet, error)
	// GetOrCreate lazily creates an empty wallet on first access. Losing a
	// concurrent first-access race is absorbed: the winner's row is returned.
	GetOrCreate(userID uint) (*models.Wallet, error)
	// Credit atomically increments the balances at the store (no
	// read-modify-write) and writes one ledger row naming the reason. It does
	// not touch the cache; callers invalidate once their transaction commits.
	Credit(userID uint, coins, points int, reason string, referralID *uint) error
	// InvalidateCached drops the cached balances for the given users. Must be
	// called after the writing transaction commits, never inside it, or a
	// concurrent read can re-cache the pre-commit balance.
	InvalidateCached(userIDs ...uint)
}
