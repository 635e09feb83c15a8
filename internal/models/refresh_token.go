package models

import (
	"time"
)

// RefreshToken records one link of a refresh-token rotation lineage. The
// token itself is never stored; only its rotation id. Rotating consumes the
// row (Rotated=true) and inserts the successor, so a replayed refresh token
// finds its row already consumed.
type RefreshToken struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index;not null"`
	RotationID string `gorm:"uniqueIndex;not null;size:64"`
	Rotated    bool   `gorm:"not null;default:false"`
	ExpiresAt  time.Time
	CreatedAt  time.Time
}
