package models

import (
	"strings"
	"time"
)

// PromoCode is redeemable only while Active and UsedCount < UsageLimit.
type PromoCode struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Code        string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"code"`
	DiscountPct float64   `gorm:"type:decimal(5,2);not null" json:"discount_pct"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	UsedCount   int       `gorm:"not null;default:0" json:"used_count"`
	UsageLimit  int       `gorm:"not null;default:0" json:"usage_limit"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

// NormalizePromoCode is the canonical case-normalization for lookups.
func NormalizePromoCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeemable reports whether the code can still be used.
func (p *PromoCode) Redeemable() bool {
	return p.Active && p.UsedCount < p.UsageLimit
}
