package models

import (
	"gorm.io/gorm"
)

// Profile is the one-to-one companion of a User. The referral code is
// assigned at creation and never reassigned. The latest issued token pair is
// stored here so support tooling can inspect the most recent session.
type Profile struct {
	gorm.Model
	UserID       uint   `gorm:"uniqueIndex;not null"`
	ReferralCode string `gorm:"uniqueIndex;not null;size:16"`
	AccessToken  string `gorm:"type:text"`
	RefreshToken string `gorm:"type:text"`
}
