package repositories

import (
	"errors"

	"wagmi/internal/models"
)

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrDuplicateUser         = errors.New("user already exists")
	ErrProfileNotFound       = errors.New("profile not found")
	ErrDuplicateReferralCode = errors.New("referral code already taken")
	ErrDatabaseOperation     = errors.New("database operation failed")
)

// UserRepository persists user identity and the one-to-one profile.
type UserRepository interface {
	// CreateWithProfile inserts the user and its profile in one transaction.
	// Returns ErrDuplicateUser on a username/email collision and
	// ErrDuplicateReferralCode when the generated code is already taken
	// (caller regenerates and retries).
	CreateWithProfile(user *models.User, profile *models.Profile) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetProfileByUserID(userID uint) (*models.Profile, error)
	UpdateProfileTokens(userID uint, accessToken, refreshToken string) error
}
