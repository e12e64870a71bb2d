package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

// CheckoutService drives the checkout sequence: order-number allocation,
// item snapshot, pending order persistence, optional wallet debit and
// external payment initiation.
type CheckoutService struct {
	DB        *gorm.DB
	Ledger    *LedgerService
	Bank      *BankService
	Reconcile *ReconcileService
}

func NewCheckoutService(db *gorm.DB, ledger *LedgerService, bank *BankService, reconcile *ReconcileService) *CheckoutService {
	return &CheckoutService{DB: db, Ledger: ledger, Bank: bank, Reconcile: reconcile}
}

type CheckoutItem struct {
	MenuID      uint    `json:"menu_id" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	BunID       *uint   `json:"bun_id,omitempty"`
	AddOnIDs    []uint  `json:"add_on_ids,omitempty"`
	Sauce       string  `json:"sauce"`
	SauceCup    string  `json:"sauce_cup"`
	Drink       string  `json:"drink"`
	Spiciness   string  `json:"spiciness"`
	Remarks     string  `json:"remarks"`
	DiscountPct float64 `json:"discount_pct"`
}

type DeliveryInfo struct {
	Address  string  `json:"address"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Building string  `json:"building"`
	Level    string  `json:"level"`
	Unit     string  `json:"unit"`
	Notes    string  `json:"notes"`
	Fee      float64 `json:"fee"`
}

type CheckoutRequest struct {
	// CustomerID is nil for guest checkouts
	CustomerID *uint
	Channel    string         `json:"channel"`
	OrderType  string         `json:"order_type"`
	Items      []CheckoutItem `json:"items" binding:"required"`
	PromoCode  string         `json:"promo_code"`
	UseWallet  bool           `json:"use_wallet"`
	Delivery   *DeliveryInfo  `json:"delivery,omitempty"`
}

type CheckoutResult struct {
	Order           models.Order `json:"order"`
	Totals          Totals       `json:"totals"`
	PaymentComplete bool         `json:"payment_complete"`
	RedirectURL     string       `json:"redirect_url,omitempty"`
}

// MinDeliverySubtotal reads the configured minimum order amount for
// delivery checkouts.
func MinDeliverySubtotal() float64 {
	if v := os.Getenv("MIN_DELIVERY_SUBTOTAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 20
}

// PlaceOrder runs the full checkout state machine. Any failure before the
// order row is committed aborts with no persisted state. A failure after
// a successful wallet debit leaves the order in pending_payment with the
// wallet funds committed; the caller retries via RetryPayment, which never
// re-debits.
func (cs *CheckoutService) PlaceOrder(req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, utils.Validation("cart is empty")
	}

	channel := req.Channel
	if channel == "" {
		channel = models.ChannelApp
	}
	if channel != models.ChannelApp && channel != models.ChannelShop && channel != models.ChannelDine {
		return nil, utils.Validation("unknown channel %q", channel)
	}

	orderType := req.OrderType
	if orderType == "" {
		orderType = models.OrderTypePickUp
	}
	if orderType != models.OrderTypePickUp && orderType != models.OrderTypeDelivery && orderType != models.OrderTypeDineIn {
		return nil, utils.Validation("unknown order type %q", orderType)
	}

	// useWallet is a no-op for guests: only card payment applies
	useWallet := req.UseWallet && req.CustomerID != nil

	var deliveryFee float64
	if orderType == models.OrderTypeDelivery {
		if req.Delivery == nil || req.Delivery.Address == "" {
			return nil, utils.Validation("delivery orders require an address")
		}
		deliveryFee = req.Delivery.Fee
	}

	// Resolve prices from the current catalog and freeze them into the
	// snapshot
	snapshot, priced, err := cs.buildSnapshot(req.Items)
	if err != nil {
		return nil, err
	}

	var promoPct float64
	var promo *models.PromoCode
	if req.PromoCode != "" {
		promo, err = cs.LookupPromo(req.PromoCode)
		if err != nil {
			return nil, err
		}
		promoPct = promo.DiscountPct
	}

	totals := ComputeTotals(priced, deliveryFee, promoPct, 0, false)

	if orderType == models.OrderTypeDelivery && totals.Subtotal < MinDeliverySubtotal() {
		return nil, utils.Validation("delivery orders require a subtotal of at least %.2f", MinDeliverySubtotal())
	}

	now := time.Now()
	order := models.Order{
		ExternalID:       uuid.New().String(),
		CustomerID:       req.CustomerID,
		Channel:          channel,
		OrderType:        orderType,
		Status:           models.OrderStatusPendingPayment,
		PromoCode:        promoCode(promo),
		PromoDiscountPct: promoPct,
		DeliveryFee:      deliveryFee,
		Subtotal:         totals.Subtotal,
		TotalPrice:       totals.TotalBeforeWallet,
	}
	if req.Delivery != nil && orderType == models.OrderTypeDelivery {
		order.DeliveryAddress = req.Delivery.Address
		order.DeliveryLat = req.Delivery.Lat
		order.DeliveryLng = req.Delivery.Lng
		order.DeliveryBuilding = req.Delivery.Building
		order.DeliveryLevel = req.Delivery.Level
		order.DeliveryUnit = req.Delivery.Unit
		order.DeliveryNotes = req.Delivery.Notes
	}

	err = cs.DB.Transaction(func(tx *gorm.DB) error {
		if promo != nil {
			// redeem inside the order transaction so the usage count and
			// the order commit or roll back together
			res := tx.Model(&models.PromoCode{}).
				Where("id = ? AND active = ? AND used_count < usage_limit", promo.ID, true).
				Update("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.ErrPromoInvalid
			}
		}

		number, err := allocateOrderNumber(tx, channel, now)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range snapshot {
			snapshot[i].OrderID = order.ID
			if err := tx.Create(&snapshot[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.OrderItems = snapshot

	remaining := order.TotalPrice
	if useWallet {
		remaining, err = cs.Ledger.DebitWalletForOrder(order.ID, order.TotalPrice)
		if err != nil {
			return nil, err
		}
		order.WalletCreditApplied = order.TotalPrice - remaining
		order.TotalPrice = remaining
		totals.WalletCreditApplied = order.WalletCreditApplied
	}
	totals.FinalTotal = remaining

	if remaining <= PaymentEpsilon {
		// fully covered by wallet: no external payment needed
		if err := cs.setPaymentMode(&order, models.PayModeWalletOnly); err != nil {
			return nil, err
		}
		confirmed, transitioned, err := cs.Ledger.ConfirmOrderPayment(order.ExternalID)
		if err != nil {
			return nil, err
		}
		if transitioned {
			cs.Reconcile.afterOrderConfirmed(confirmed)
		}
		order.Status = confirmed.Status
		return &CheckoutResult{Order: order, Totals: totals, PaymentComplete: true}, nil
	}

	mode := models.PayModeCardOnline
	if order.WalletCreditApplied > 0 {
		mode = models.PayModeWalletCardCombo
	}
	if err := cs.setPaymentMode(&order, mode); err != nil {
		return nil, err
	}

	redirectURL, err := cs.Bank.CreateRemoteOrder(order.ExternalID, remaining, order.BasketDescription())
	if err != nil {
		// the order stays pending_payment; committed wallet funds are kept
		// on the order and a retry initiates payment for the remaining
		// amount only
		utils.ErrorLogger.Printf("Payment initiation failed for order %s: %v", order.OrderNumber, err)
		return nil, err
	}

	return &CheckoutResult{Order: order, Totals: totals, PaymentComplete: false, RedirectURL: redirectURL}, nil
}

// RetryPayment re-initiates the external payment for an order stuck in
// pending_payment (e.g. the gateway was unreachable after a successful
// wallet debit). The stored wallet credit is final: only the remaining
// amount goes to the bank, never a second debit.
func (cs *CheckoutService) RetryPayment(orderID uint) (*CheckoutResult, error) {
	var order models.Order
	if err := cs.DB.Preload("OrderItems").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrNotFound
		}
		return nil, err
	}

	if order.Status != models.OrderStatusPendingPayment {
		return nil, utils.ErrOrderNotPayable
	}

	if order.TotalPrice <= PaymentEpsilon {
		confirmed, transitioned, err := cs.Ledger.ConfirmOrderPayment(order.ExternalID)
		if err != nil {
			return nil, err
		}
		if transitioned {
			cs.Reconcile.afterOrderConfirmed(confirmed)
		}
		order.Status = confirmed.Status
		return &CheckoutResult{Order: order, PaymentComplete: true}, nil
	}

	redirectURL, err := cs.Bank.CreateRemoteOrder(order.ExternalID, order.TotalPrice, order.BasketDescription())
	if err != nil {
		return nil, err
	}
	return &CheckoutResult{Order: order, PaymentComplete: false, RedirectURL: redirectURL}, nil
}

// LookupPromo resolves a redeemable promo code or ErrPromoInvalid.
func (cs *CheckoutService) LookupPromo(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := cs.DB.Where("code = ?", models.NormalizePromoCode(code)).First(&promo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrPromoInvalid
		}
		return nil, err
	}
	if !promo.Redeemable() {
		return nil, utils.ErrPromoInvalid
	}
	return &promo, nil
}

func (cs *CheckoutService) setPaymentMode(order *models.Order, mode string) error {
	if err := cs.DB.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("payment_mode", mode).Error; err != nil {
		return err
	}
	order.PaymentMode = mode
	return nil
}

// buildSnapshot resolves every cart line against the current catalog and
// returns both the persistable snapshot and the pricing input.
func (cs *CheckoutService) buildSnapshot(items []CheckoutItem) ([]models.OrderItem, []PricedItem, error) {
	snapshot := make([]models.OrderItem, 0, len(items))
	priced := make([]PricedItem, 0, len(items))

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, nil, utils.Validation("item quantity must be at least 1")
		}
		if item.DiscountPct < 0 || item.DiscountPct > 100 {
			return nil, nil, utils.Validation("item discount must be between 0 and 100")
		}

		var menu models.Menu
		if err := cs.DB.First(&menu, item.MenuID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, utils.Validation("menu item %d not found", item.MenuID)
			}
			return nil, nil, err
		}
		if !menu.Available {
			return nil, nil, utils.Validation("menu item %q is not available", menu.Name)
		}

		orderItem := models.OrderItem{
			MenuID:      menu.ID,
			Name:        menu.Name,
			UnitPrice:   menu.Price,
			Sauce:       item.Sauce,
			SauceCup:    item.SauceCup,
			Drink:       item.Drink,
			Spiciness:   item.Spiciness,
			Remarks:     item.Remarks,
			DiscountPct: item.DiscountPct,
			Quantity:    item.Quantity,
		}

		if item.BunID != nil {
			var bun models.Bun
			if err := cs.DB.First(&bun, *item.BunID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, utils.Validation("bun %d not found", *item.BunID)
				}
				return nil, nil, err
			}
			orderItem.BunType = bun.Name
			orderItem.BunPrice = bun.PriceDelta
		}

		for _, addOnID := range item.AddOnIDs {
			var addOn models.AddOn
			if err := cs.DB.First(&addOn, addOnID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, nil, utils.Validation("add-on %d not found", addOnID)
				}
				return nil, nil, err
			}
			orderItem.AddOns = append(orderItem.AddOns, models.OrderItemAddOn{
				Name:  addOn.Name,
				Price: addOn.Price,
			})
		}

		pi := PricedItem{
			UnitPrice:   orderItem.UnitPrice,
			BunPrice:    orderItem.BunPrice,
			DiscountPct: orderItem.DiscountPct,
			Quantity:    orderItem.Quantity,
		}
		for _, a := range orderItem.AddOns {
			pi.AddOns = append(pi.AddOns, PricedAddOn{Name: a.Name, Price: a.Price})
		}

		snapshot = append(snapshot, orderItem)
		priced = append(priced, pi)
	}
	return snapshot, priced, nil
}

// allocateOrderNumber draws the next sequence for the channel+date bucket
// inside the caller's transaction. The counter row update serializes
// concurrent checkouts in the same bucket at the database level.
func allocateOrderNumber(tx *gorm.DB, channel string, now time.Time) (string, error) {
	bucket := fmt.Sprintf("%s-%s", channel, now.Format("020106"))

	res := tx.Model(&models.OrderCounter{}).
		Where("bucket = ?", bucket).
		Update("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&models.OrderCounter{Bucket: bucket, LastSeq: 1}).Error; err != nil {
			// unique collision with a concurrent first checkout in this
			// bucket; fall back to the increment
			res = tx.Model(&models.OrderCounter{}).
				Where("bucket = ?", bucket).
				Update("last_seq", gorm.Expr("last_seq + 1"))
			if res.Error != nil {
				return "", res.Error
			}
			if res.RowsAffected == 0 {
				return "", fmt.Errorf("failed to allocate order number for bucket %s", bucket)
			}
		}
	}

	var counter models.OrderCounter
	if err := tx.Where("bucket = ?", bucket).First(&counter).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s-%d", channel, now.Format("020106"), now.Format("150405"), counter.LastSeq), nil
}

func promoCode(promo *models.PromoCode) string {
	if promo == nil {
		return ""
	}
	return promo.Code
}
