package models

import (
	"time"
)

// Invitation statuses
const (
	InvitationAwaitingPurchase = "awaiting_purchase"
	InvitationCompleted        = "completed"
)

// Invitation tracks a referral between inviter and invitee. The inviter is
// awarded Points only after the invitee's first qualifying purchase, which
// advances the invitation to completed in the same transaction.
type Invitation struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	InviterID uint     `gorm:"not null;index" json:"inviter_id"`
	Inviter   Customer `gorm:"foreignKey:InviterID" json:"-"`
	InviteeID *uint    `gorm:"index" json:"invitee_id,omitempty"`
	// InviteePhone links the invitation before the invitee registers
	InviteePhone string    `gorm:"type:varchar(20);not null" json:"invitee_phone"`
	Points       int       `gorm:"not null" json:"points"`
	Status       string    `gorm:"type:varchar(20);not null;default:'awaiting_purchase'" json:"status"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}
