package repositories

import (
	"fmt"
	"time"

	"wagmi/internal/models"

	"gorm.io/gorm"
)

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Save(rt *models.RefreshToken) error {
	if err := r.db.Create(rt).Error; err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepository) Rotate(oldRotationID string, next *models.RefreshToken) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.RefreshToken{}).
			Where("rotation_id = ? AND rotated = ?", oldRotationID, false).
			Update("rotated", true)
		if result.Error != nil {
			return fmt.Errorf("failed to consume rotation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.RefreshToken{}).
				Where("rotation_id = ?", oldRotationID).
				Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check lineage: %w", err)
			}
			if count == 0 {
				return ErrLineageNotFound
			}
			return ErrAlreadyRotated
		}
		if err := tx.Create(next).Error; err != nil {
			return fmt.Errorf("failed to insert successor token: %w", err)
		}
		return nil
	})
}

func (r *tokenRepository) DeleteExpired(before time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", before).Delete(&models.RefreshToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}
