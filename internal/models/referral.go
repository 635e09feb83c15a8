package models

import (
	"time"
)

// Referral is one issued invitation code. A referrer has at most one unused
// referral at a time, enforced by a partial unique index on
// (referrer_id) WHERE NOT is_used. IsUsed transitions false -> true exactly
// once, binding RefereeID permanently.
type Referral struct {
	ID         uint   `gorm:"primarykey"`
	ReferrerID uint   `gorm:"index;not null"`
	RefereeID  *uint  `gorm:"index"`
	Code       string `gorm:"uniqueIndex;not null;size:16"`
	IsUsed     bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
