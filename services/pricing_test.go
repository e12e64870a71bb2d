package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func TestComputeTotalsWithAddOnPromoAndWallet(t *testing.T) {
	// burger 10.00 + cheese 1.00, qty 2 -> subtotal 22.00
	items := []PricedItem{
		{
			UnitPrice: 10.0,
			AddOns:    []PricedAddOn{{Name: "Cheese", Price: 1.0}},
			Quantity:  2,
		},
	}

	totals := ComputeTotals(items, 3.0, 10.0, 5.0, true)

	assert.InDelta(t, 22.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 2.2, totals.PromoDiscountAmount, 0.001)
	// 22.00 - 2.20 + 3.00 delivery
	assert.InDelta(t, 22.8, totals.TotalBeforeWallet, 0.001)
	assert.InDelta(t, 5.0, totals.WalletCreditApplied, 0.001)
	assert.InDelta(t, 17.8, totals.FinalTotal, 0.001)
}

func TestComputeTotalsItemDiscountBeforePromo(t *testing.T) {
	// 20.00 with 50% item discount -> 10.00 subtotal, then 10% promo
	items := []PricedItem{
		{UnitPrice: 20.0, DiscountPct: 50.0, Quantity: 1},
	}

	totals := ComputeTotals(items, 0, 10.0, 0, false)

	assert.InDelta(t, 10.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 1.0, totals.PromoDiscountAmount, 0.001)
	assert.InDelta(t, 9.0, totals.FinalTotal, 0.001)
}

func TestComputeTotalsPromoExcludesDeliveryFee(t *testing.T) {
	items := []PricedItem{
		{UnitPrice: 100.0, Quantity: 1},
	}

	totals := ComputeTotals(items, 10.0, 10.0, 0, false)

	// 10% of the 100.00 subtotal, never of the 10.00 fee
	assert.InDelta(t, 10.0, totals.PromoDiscountAmount, 0.001)
	assert.InDelta(t, 100.0, totals.TotalBeforeWallet, 0.001)
}

func TestComputeTotalsWalletCappedAtTotal(t *testing.T) {
	items := []PricedItem{
		{UnitPrice: 8.0, Quantity: 1},
	}

	totals := ComputeTotals(items, 0, 0, 50.0, true)

	assert.InDelta(t, 8.0, totals.WalletCreditApplied, 0.001)
	assert.InDelta(t, 0.0, totals.FinalTotal, 0.001)
}

func TestComputeTotalsBunPriceDelta(t *testing.T) {
	items := []PricedItem{
		{UnitPrice: 10.0, BunPrice: 1.5, Quantity: 2},
	}

	totals := ComputeTotals(items, 0, 0, 0, false)

	assert.InDelta(t, 23.0, totals.Subtotal, 0.001)
}

func TestRecomputeOrderMatchesSnapshot(t *testing.T) {
	order := models.Order{
		PromoDiscountPct:    10.0,
		DeliveryFee:         3.0,
		WalletCreditApplied: 5.0,
		OrderItems: []models.OrderItem{
			{
				UnitPrice: 10.0,
				Quantity:  2,
				AddOns:    []models.OrderItemAddOn{{Name: "Cheese", Price: 1.0}},
			},
		},
	}

	totals := RecomputeOrder(&order)

	assert.InDelta(t, 22.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 17.8, totals.FinalTotal, 0.001)
}
