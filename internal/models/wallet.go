package models

import (
	"time"
)

type Wallet struct {
	ID        uint `gorm:"primarykey"`
	UserID    uint `gorm:"uniqueIndex;not null"`
	Coins     int  `gorm:"not null;default:0;check:coins >= 0"`
	Points    int  `gorm:"not null;default:0;check:points >= 0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CoinTransaction is the audit ledger for wallet balance changes. Every
// credit writes one row naming the reason, so "why did this balance change"
// is always answerable.
type CoinTransaction struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"index;not null"`
	Coins      int    `gorm:"not null"`
	Points     int    `gorm:"not null"`
	Reason     string `gorm:"not null;size:32"`
	ReferralID *uint  `gorm:"index"`
	CreatedAt  time.Time
}

// Ledger reasons.
const (
	ReasonReferralReward = "referral_reward" // credited to the referrer
	ReasonReferralBonus  = "referral_bonus"  // credited to the redeemer
	ReasonAdminAdjust    = "admin_adjust"
)
