package models

import (
	"time"
)

type Customer struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
	Phone string `gorm:"type:varchar(20);uniqueIndex;not null" json:"phone"`
	Email string `gorm:"type:varchar(100)" json:"email"`

	// Stamps is the loyalty counter, incremented per qualifying purchase
	Stamps int `gorm:"not null;default:0" json:"stamps"`
	Points int `gorm:"not null;default:0" json:"points"`

	// WalletBalance is a cached projection of the wallet entries. It is
	// only mutated in the same transaction that appends the entry.
	WalletBalance float64 `gorm:"type:decimal(10,2);not null;default:0" json:"wallet_balance"`

	ReferralCode string `gorm:"type:varchar(20);uniqueIndex" json:"referral_code"`
	// Claimed is false for unclaimed guest profiles
	Claimed bool `gorm:"not null;default:true" json:"claimed"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
