// Package referral issues invitation codes and pays out the reward when a
// code is redeemed. Redemption and the two wallet credits run in a single
// store transaction so a code can never be burned without paying out.
package referral

import (
	"context"
	"fmt"
	"log"
	"net/url"

	domainerrors "wagmi/internal/errors"
	"wagmi/internal/models"
	"wagmi/internal/repositories"
)

const createRetries = 3

type Service interface {
	// GetOrCreate returns the referrer's outstanding code, creating one if
	// none exists. The bool reports whether a new code was created.
	GetOrCreate(ctx context.Context, referrerID uint) (*models.Referral, bool, error)
	// Redeem marks the code used, binds the redeemer and credits both
	// wallets atomically. Exactly one concurrent caller can succeed.
	Redeem(ctx context.Context, code string, userID uint) (*models.Referral, error)
	CountRedeemed(ctx context.Context, referrerID uint) (int64, error)
	// ShareURL builds the WhatsApp deep link for a code.
	ShareURL(code string) string
}

// MetricsCollector records referral activity. A no-op implementation is used
// when metrics are disabled.
type MetricsCollector interface {
	RecordCodeIssued()
	RecordRedemption(status string)
}

type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCodeIssued()              {}
func (NoopMetricsCollector) RecordRedemption(status string) {}

type service struct {
	repo      repositories.ReferralRepository
	reward    int
	shareBase string
	metrics   MetricsCollector
}

func NewService(repo repositories.ReferralRepository, reward int, shareBase string, metrics MetricsCollector) Service {
	if repo == nil {
		panic("referral repository is required")
	}
	if reward <= 0 {
		reward = 10
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		repo:      repo,
		reward:    reward,
		shareBase: shareBase,
		metrics:   metrics,
	}
}

func (s *service) GetOrCreate(ctx context.Context, referrerID uint) (*models.Referral, bool, error) {
	ref, err := s.repo.GetOutstandingByReferrer(referrerID)
	if err == nil {
		return ref, false, nil
	}
	if err != repositories.ErrReferralNotFound {
		return nil, false, err
	}

	for attempt := 0; attempt < createRetries; attempt++ {
		ref := &models.Referral{
			ReferrerID: referrerID,
			Code:       GenerateCode(),
		}
		err := s.repo.Create(ref)
		switch err {
		case nil:
			s.metrics.RecordCodeIssued()
			return ref, true, nil
		case repositories.ErrOutstandingExists:
			// Lost the race against a concurrent generate; return the
			// winner's row.
			existing, err := s.repo.GetOutstandingByReferrer(referrerID)
			return existing, false, err
		case repositories.ErrDuplicateCode:
			log.Printf("referral code collision for user %d, retrying", referrerID)
			continue
		default:
			return nil, false, err
		}
	}
	return nil, false, fmt.Errorf("could not generate a unique referral code after %d attempts", createRetries)
}

func (s *service) Redeem(ctx context.Context, code string, userID uint) (*models.Referral, error) {
	var redeemed *models.Referral
	var wallets repositories.WalletRepository

	err := s.repo.ExecuteInTransaction(func(refs repositories.ReferralRepository, txWallets repositories.WalletRepository) error {
		wallets = txWallets
		ref, err := refs.GetByCode(code)
		if err != nil {
			if err == repositories.ErrReferralNotFound {
				return domainerrors.ErrCodeNotFound
			}
			return err
		}
		if ref.ReferrerID == userID {
			return domainerrors.ErrSelfReferral
		}
		if err := refs.MarkUsed(ref.ID, userID); err != nil {
			if err == repositories.ErrReferralAlreadyUsed {
				return domainerrors.ErrCodeAlreadyUsed
			}
			return err
		}

		if err := wallets.Credit(ref.ReferrerID, s.reward, 0, models.ReasonReferralReward, &ref.ID); err != nil {
			return err
		}
		if err := wallets.Credit(userID, s.reward, 0, models.ReasonReferralBonus, &ref.ID); err != nil {
			return err
		}

		ref.IsUsed = true
		ref.RefereeID = &userID
		redeemed = ref
		return nil
	})
	if err != nil {
		switch err {
		case domainerrors.ErrCodeNotFound, domainerrors.ErrCodeAlreadyUsed, domainerrors.ErrSelfReferral:
			s.metrics.RecordRedemption("rejected")
		default:
			s.metrics.RecordRedemption("error")
		}
		return nil, err
	}

	// Invalidate only after the commit; doing it inside the transaction lets
	// a concurrent read re-cache the pre-commit balance for the full TTL.
	wallets.InvalidateCached(redeemed.ReferrerID, userID)

	s.metrics.RecordRedemption("success")
	log.Printf("referral %s redeemed by user %d, %d coins credited to each side", code, userID, s.reward)
	return redeemed, nil
}

func (s *service) CountRedeemed(ctx context.Context, referrerID uint) (int64, error) {
	return s.repo.CountRedeemedByReferrer(referrerID)
}

func (s *service) ShareURL(code string) string {
	text := fmt.Sprintf("Use my referral code %s to get %d coins on signup! %s?ref=%s",
		code, s.reward, s.shareBase, code)
	return "https://wa.me/?text=" + url.QueryEscape(text)
}
