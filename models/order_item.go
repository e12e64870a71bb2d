package models

import (
	"time"
)

// OrderItem is an immutable snapshot of the menu item at order-creation
// time. Later catalog price changes must not alter historical totals.
type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OrderID uint `gorm:"not null;index" json:"order_id"`
	// Omitting Order field from JSON to avoid recursive nesting
	Order Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	MenuID    uint    `gorm:"not null" json:"menu_id"`
	Name      string  `gorm:"type:varchar(100);not null" json:"name"`
	UnitPrice float64 `gorm:"type:decimal(10,2);not null" json:"unit_price"`

	BunType  string  `gorm:"type:varchar(50)" json:"bun_type"`
	BunPrice float64 `gorm:"type:decimal(10,2);not null;default:0" json:"bun_price"`

	Sauce     string `gorm:"type:varchar(50)" json:"sauce"`
	SauceCup  string `gorm:"type:varchar(50)" json:"sauce_cup"`
	Drink     string `gorm:"type:varchar(50)" json:"drink"`
	Spiciness string `gorm:"type:varchar(20)" json:"spiciness"`
	Remarks   string `gorm:"type:text" json:"remarks"`

	// DiscountPct is the per-item discount, applied before the order-level
	// promo percentage.
	DiscountPct float64 `gorm:"type:decimal(5,2);not null;default:0" json:"discount_pct"`
	Quantity    int     `gorm:"not null" json:"quantity"`

	AddOns []OrderItemAddOn `gorm:"foreignKey:OrderItemID" json:"add_ons"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// OrderItemAddOn is the snapshotted add-on line (name + price frozen).
type OrderItemAddOn struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	OrderItemID uint    `gorm:"not null;index" json:"order_item_id"`
	Name        string  `gorm:"type:varchar(100);not null" json:"name"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}
