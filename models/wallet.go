package models

import (
	"time"
)

// Wallet entry types
const (
	WalletEntryCredit = "credit"
	WalletEntryDebit  = "debit"
)

// WalletEntry is one row of the append-only wallet ledger. For every
// customer the cached Customer.WalletBalance must equal the signed sum of
// these entries at every observation point.
type WalletEntry struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	CustomerID uint     `gorm:"not null;index" json:"customer_id"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"-"`
	// Type is credit or debit; Amount is always > 0
	Type        string    `gorm:"type:varchar(10);not null" json:"type"`
	Amount      float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	Description string    `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// Signed returns the entry amount with its ledger sign.
func (we *WalletEntry) Signed() float64 {
	if we.Type == WalletEntryDebit {
		return -we.Amount
	}
	return we.Amount
}

// PendingTopup exists only between "payment initiated" and "callback
// finalized". Its ExternalID shares the uuid space with Order.ExternalID,
// so the reconciliation dispatcher resolves a callback id to at most one
// of the two.
type PendingTopup struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ExternalID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"external_id"`
	CustomerID uint      `gorm:"not null;index" json:"customer_id"`
	Amount     float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}
