package repositories

import (
	"errors"
	"time"

	"wagmi/internal/models"
)

var (
	ErrLineageNotFound = errors.New("refresh token lineage not found")
	ErrAlreadyRotated  = errors.New("refresh token already rotated")
)

// TokenRepository tracks refresh-token rotation lineage. Each refresh token
// maps to one row by rotation id; rotating consumes the row exactly once.
type TokenRepository interface {
	Save(rt *models.RefreshToken) error
	// Rotate consumes the old lineage link and inserts its successor in one
	// transaction. At most one concurrent caller succeeds; the loser gets
	// ErrAlreadyRotated.
	Rotate(oldRotationID string, next *models.RefreshToken) error
	DeleteExpired(before time.Time) (int64, error)
}
