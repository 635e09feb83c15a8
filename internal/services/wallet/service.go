// Package wallet manages per-user coin/point balances. Balances are only
// mutated through atomic store-level increments; the application never does
// read-modify-write on a balance.
package wallet

import (
	"context"
	"fmt"

	domainerrors "wagmi/internal/errors"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
)

type Service interface {
	// GetWallet returns the user's wallet, creating an empty one on first
	// access.
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	// Credit applies an atomic increment and writes a ledger entry.
	Credit(ctx context.Context, userID uint, coins, points int, reason string, referralID *uint) error
}

// MetricsCollector records wallet activity. A no-op implementation is used
// when metrics are disabled.
type MetricsCollector interface {
	RecordCredit(reason string, coins int)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCredit(reason string, coins int) {}

type service struct {
	repo    repositories.WalletRepository
	metrics MetricsCollector
}

func NewService(repo repositories.WalletRepository, metrics MetricsCollector) Service {
	if repo == nil {
		panic("wallet repository is required")
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:    repo,
		metrics: metrics,
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByUserID(userID)
	if err == nil {
		return wallet, nil
	}
	if err != repositories.ErrWalletNotFound {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return s.repo.GetOrCreate(userID)
}

func (s *service) Credit(ctx context.Context, userID uint, coins, points int, reason string, referralID *uint) error {
	if coins < 0 || points < 0 || (coins == 0 && points == 0) {
		return domainerrors.ErrInvalidAmount
	}
	if err := s.repo.Credit(userID, coins, points, reason, referralID); err != nil {
		return err
	}
	s.repo.InvalidateCached(userID)
	s.metrics.RecordCredit(reason, coins)
	return nil
}
