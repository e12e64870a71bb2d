package models

import (
	"fmt"
	"time"
)

// Order statuses
const (
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusPendingApproval = "pending_approval"
	OrderStatusPreparing       = "preparing"
	OrderStatusCompleted       = "completed"
	OrderStatusRejected        = "rejected"
)

// Payment modes
const (
	PayModeCash            = "cash"
	PayModeCardTerminal    = "card_terminal"
	PayModeCardOnline      = "card_online"
	PayModeWalletOnly      = "wallet_only"
	PayModeWalletCardCombo = "wallet_card_combo"
	PayModeBankTransfer    = "bank_transfer"
)

// Order channels (prefix of the human order number)
const (
	ChannelApp  = "APP"
	ChannelShop = "SHOP"
	ChannelDine = "DINE"
)

// Order types
const (
	OrderTypePickUp   = "pick_up"
	OrderTypeDelivery = "delivery"
	OrderTypeDineIn   = "dine_in"
)

type Order struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// ExternalID is the correlation key shared with the bank. Orders and
	// wallet top-ups draw from the same uuid space.
	ExternalID  string `gorm:"type:varchar(36);uniqueIndex;not null" json:"external_id"`
	OrderNumber string `gorm:"type:varchar(40);not null" json:"order_number"`
	// CustomerID is nil for guest orders
	CustomerID *uint     `gorm:"index" json:"customer_id,omitempty"`
	Customer   *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Channel    string    `gorm:"type:varchar(10);not null;default:'APP'" json:"channel"`
	OrderType  string    `gorm:"type:varchar(20);not null;default:'pick_up'" json:"order_type"`
	Status     string    `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`

	PromoCode        string  `gorm:"type:varchar(40)" json:"promo_code"`
	PromoDiscountPct float64 `gorm:"type:decimal(5,2);not null;default:0" json:"promo_discount_pct"`
	DeliveryFee      float64 `gorm:"type:decimal(10,2);not null;default:0" json:"delivery_fee"`
	// Subtotal is the write-time snapshot sum. History views recompute it
	// from the order items instead of trusting this column.
	Subtotal float64 `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	// TotalPrice is the amount still owed externally (after wallet credit)
	TotalPrice          float64 `gorm:"type:decimal(10,2);not null;default:0" json:"total_price"`
	WalletCreditApplied float64 `gorm:"type:decimal(10,2);not null;default:0" json:"wallet_credit_applied"`
	PaymentMode         string  `gorm:"type:varchar(20)" json:"payment_mode"`

	// Delivery metadata, only for order_type = delivery
	DeliveryAddress  string  `gorm:"type:text" json:"delivery_address,omitempty"`
	DeliveryLat      float64 `json:"delivery_lat,omitempty"`
	DeliveryLng      float64 `json:"delivery_lng,omitempty"`
	DeliveryBuilding string  `gorm:"type:varchar(100)" json:"delivery_building,omitempty"`
	DeliveryLevel    string  `gorm:"type:varchar(20)" json:"delivery_level,omitempty"`
	DeliveryUnit     string  `gorm:"type:varchar(20)" json:"delivery_unit,omitempty"`
	DeliveryNotes    string  `gorm:"type:text" json:"delivery_notes,omitempty"`

	RejectReason    string `gorm:"type:text" json:"reject_reason,omitempty"`
	CashbackAwarded bool   `gorm:"not null;default:false" json:"cashback_awarded"`

	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
}

// IsTerminal reports whether the order left the payment/ledger lifecycle.
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusCompleted || o.Status == OrderStatusRejected
}

// BasketDescription builds the short description sent to the bank.
func (o *Order) BasketDescription() string {
	return fmt.Sprintf("BurgerHub order %s (%d items)", o.OrderNumber, len(o.OrderItems))
}
