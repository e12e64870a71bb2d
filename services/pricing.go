package services

import (
	"burgerhub-backend/models"
)

// PricedAddOn is one add-on line as it enters the pricing computation.
type PricedAddOn struct {
	Name  string
	Price float64
}

// PricedItem is the pricing view of one cart line. Prices are resolved
// from the current catalog at order-build time and then frozen into the
// order item snapshot.
type PricedItem struct {
	UnitPrice   float64
	BunPrice    float64
	AddOns      []PricedAddOn
	DiscountPct float64
	Quantity    int
}

// Totals is the full breakdown of an order's payable amount.
type Totals struct {
	Subtotal            float64 `json:"subtotal"`
	PromoDiscountAmount float64 `json:"promo_discount_amount"`
	TotalBeforeWallet   float64 `json:"total_before_wallet"`
	WalletCreditApplied float64 `json:"wallet_credit_applied"`
	FinalTotal          float64 `json:"final_total"`
}

// ComputeTotals is the canonical pricing computation. Discount order is
// fixed: per-item discount first, then the promo percentage on the
// subtotal only, then the delivery fee, then wallet credit, floored at 0.
func ComputeTotals(items []PricedItem, deliveryFee, promoDiscountPct, walletBalance float64, useWallet bool) Totals {
	var subtotal float64
	for _, item := range items {
		lineUnit := item.UnitPrice + item.BunPrice
		for _, addon := range item.AddOns {
			lineUnit += addon.Price
		}
		subtotal += lineUnit * (1 - item.DiscountPct/100) * float64(item.Quantity)
	}

	promoDiscount := subtotal * (promoDiscountPct / 100)
	totalBeforeWallet := subtotal - promoDiscount + deliveryFee

	var walletCredit float64
	if useWallet {
		walletCredit = walletBalance
		if walletCredit > totalBeforeWallet {
			walletCredit = totalBeforeWallet
		}
	}

	finalTotal := totalBeforeWallet - walletCredit
	if finalTotal < 0 {
		finalTotal = 0
	}

	return Totals{
		Subtotal:            subtotal,
		PromoDiscountAmount: promoDiscount,
		TotalBeforeWallet:   totalBeforeWallet,
		WalletCreditApplied: walletCredit,
		FinalTotal:          finalTotal,
	}
}

// ItemsFromSnapshot converts persisted order items back into pricing
// inputs.
func ItemsFromSnapshot(items []models.OrderItem) []PricedItem {
	priced := make([]PricedItem, 0, len(items))
	for _, item := range items {
		pi := PricedItem{
			UnitPrice:   item.UnitPrice,
			BunPrice:    item.BunPrice,
			DiscountPct: item.DiscountPct,
			Quantity:    item.Quantity,
		}
		for _, addon := range item.AddOns {
			pi.AddOns = append(pi.AddOns, PricedAddOn{Name: addon.Name, Price: addon.Price})
		}
		priced = append(priced, pi)
	}
	return priced
}

// RecomputeOrder derives the order totals from the item snapshot instead
// of trusting the stored aggregate columns. History and reporting views
// must use this, not Order.Subtotal.
func RecomputeOrder(order *models.Order) Totals {
	totals := ComputeTotals(
		ItemsFromSnapshot(order.OrderItems),
		order.DeliveryFee,
		order.PromoDiscountPct,
		order.WalletCreditApplied,
		order.WalletCreditApplied > 0,
	)
	return totals
}
