package models

import "time"

// Notification is a persisted staff notification. Delivery is
// fire-and-forget; failures are logged but never fail the owning
// operation.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(30);not null" json:"type"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	OrderID   *uint     `gorm:"index" json:"order_id,omitempty"`
	Read      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
