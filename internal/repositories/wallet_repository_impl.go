package repositories

import (
	"context"
	"fmt"
	"log"

	"wagmi/internal/models"
	"wagmi/internal/repositories/cache"

	"gorm.io/gorm"
)

type walletRepository struct {
	db    *gorm.DB
	cache *cache.Service
}

func NewWalletRepository(db *gorm.DB, cache *cache.Service) WalletRepository {
	return &walletRepository{
		db:    db,
		cache: cache,
	}
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	if r.cache != nil {
		if wallet, err := r.cache.GetWallet(context.Background(), userID); err == nil {
			return wallet, nil
		} else if err != cache.ErrCacheMiss {
			log.Printf("wallet cache error for user %d: %v", userID, err)
		}
	}

	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.CacheWallet(context.Background(), &wallet); err != nil {
			log.Printf("failed to cache wallet for user %d: %v", userID, err)
		}
	}
	return &wallet, nil
}

func (r *walletRepository) GetOrCreate(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.Where(models.Wallet{UserID: userID}).FirstOrCreate(&wallet).Error
	if err != nil {
		// Two first-ever accesses can race past FirstOrCreate's read; the
		// loser hits the user_id unique index and re-reads the winner's row.
		if _, ok := uniqueViolation(err); ok {
			if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
				return nil, fmt.Errorf("failed to read wallet after insert race: %w", err)
			}
			return &wallet, nil
		}
		return nil, fmt.Errorf("failed to get or create wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Credit(userID uint, coins, points int, reason string, referralID *uint) error {
	if _, err := r.GetOrCreate(userID); err != nil {
		return err
	}

	result := r.db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"coins":  gorm.Expr("coins + ?", coins),
			"points": gorm.Expr("points + ?", points),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to credit wallet: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWalletNotFound
	}

	entry := &models.CoinTransaction{
		UserID:     userID,
		Coins:      coins,
		Points:     points,
		Reason:     reason,
		ReferralID: referralID,
	}
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}
	return nil
}

func (r *walletRepository) InvalidateCached(userIDs ...uint) {
	if r.cache == nil {
		return
	}
	for _, userID := range userIDs {
		if err := r.cache.InvalidateWallet(context.Background(), userID); err != nil {
			log.Printf("failed to invalidate wallet cache for user %d: %v", userID, err)
		}
	}
}
