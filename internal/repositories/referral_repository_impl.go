package repositories

import (
	"fmt"
	"strings"

	"wagmi/internal/models"
	"wagmi/internal/repositories/cache"

	"gorm.io/gorm"
)

type referralRepository struct {
	db    *gorm.DB
	cache *cache.Service
}

func NewReferralRepository(db *gorm.DB, cache *cache.Service) ReferralRepository {
	return &referralRepository{
		db:    db,
		cache: cache,
	}
}

func (r *referralRepository) GetOutstandingByReferrer(referrerID uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.Where("referrer_id = ? AND is_used = ?", referrerID, false).First(&ref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReferralNotFound
		}
		return nil, fmt.Errorf("failed to get outstanding referral: %w", err)
	}
	return &ref, nil
}

func (r *referralRepository) GetByCode(code string) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.Where("code = ?", code).First(&ref).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrReferralNotFound
		}
		return nil, fmt.Errorf("failed to get referral by code: %w", err)
	}
	return &ref, nil
}

func (r *referralRepository) Create(ref *models.Referral) error {
	if err := r.db.Create(ref).Error; err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if strings.Contains(constraint, "one_outstanding") {
				return ErrOutstandingExists
			}
			return ErrDuplicateCode
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *referralRepository) MarkUsed(id, refereeID uint) error {
	result := r.db.Model(&models.Referral{}).
		Where("id = ? AND is_used = ?", id, false).
		Updates(map[string]interface{}{
			"is_used":    true,
			"referee_id": refereeID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark referral used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrReferralAlreadyUsed
	}
	return nil
}

func (r *referralRepository) CountRedeemedByReferrer(referrerID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Referral{}).
		Where("referrer_id = ? AND is_used = ?", referrerID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}

func (r *referralRepository) ExecuteInTransaction(fn func(ReferralRepository, WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(
			&referralRepository{db: tx, cache: r.cache},
			&walletRepository{db: tx, cache: r.cache},
		)
	})
}
