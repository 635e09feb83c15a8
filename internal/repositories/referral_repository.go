package repositories

import (
	"errors"

	"wagmi/internal/models"
)

var (
	ErrReferralNotFound    = errors.New("referral not found")
	ErrReferralAlreadyUsed = errors.New("referral already used")
	ErrOutstandingExists   = errors.New("referrer already has an outstanding code")
	ErrDuplicateCode       = errors.New("referral code collision")
)

// ReferralRepository persists issued referral codes and their redemption
// state. MarkUsed is a compare-and-swap: only one caller can flip is_used.
type ReferralRepository interface {
	GetOutstandingByReferrer(referrerID uint) (*models.Referral, error)
	GetByCode(code string) (*models.Referral, error)
	// Create inserts a fresh referral. ErrOutstandingExists signals the
	// partial unique index (another outstanding code won the race);
	// ErrDuplicateCode signals a code collision.
	Create(ref *models.Referral) error
	// MarkUsed flips is_used false -> true and binds the referee, failing
	// with ErrReferralAlreadyUsed when another caller got there first.
	MarkUsed(id, refereeID uint) error
	CountRedeemedByReferrer(referrerID uint) (int64, error)
	// ExecuteInTransaction runs fn against transaction-scoped referral and
	// wallet repositories sharing one store transaction, so the is_used flip
	// and the wallet credits commit or roll back together.
	ExecuteInTransaction(fn func(refs ReferralRepository, wallets WalletRepository) error) error
}
