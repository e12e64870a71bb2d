package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

// PaymentEpsilon is the threshold below which a remaining amount counts
// as fully paid.
const PaymentEpsilon = 0.01

// LedgerService owns every wallet/points mutation. Each exported
// operation runs as a single all-or-nothing transaction: the cached
// customer balance is only ever touched in the same transaction that
// appends the ledger entry.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// creditWalletTx appends a credit entry and increments the cached balance
// inside an already-open transaction.
func (ls *LedgerService) creditWalletTx(tx *gorm.DB, customerID uint, amount float64, description string) error {
	if amount <= 0 {
		return utils.ErrInvalidAmount
	}

	res := tx.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrCustomerNotFound
	}

	entry := models.WalletEntry{
		CustomerID:  customerID,
		Type:        models.WalletEntryCredit,
		Amount:      amount,
		Description: description,
	}
	return tx.Create(&entry).Error
}

// debitWalletTx appends a debit entry and decrements the cached balance.
// The balance guard in the WHERE clause keeps a concurrent debit from
// driving the balance negative.
func (ls *LedgerService) debitWalletTx(tx *gorm.DB, customerID uint, amount float64, description string) error {
	if amount <= 0 {
		return utils.ErrInvalidAmount
	}

	res := tx.Model(&models.Customer{}).
		Where("id = ? AND wallet_balance >= ?", customerID, amount).
		Update("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("wallet debit of %.2f rejected for customer %d: insufficient balance or unknown customer", amount, customerID)
	}

	entry := models.WalletEntry{
		CustomerID:  customerID,
		Type:        models.WalletEntryDebit,
		Amount:      amount,
		Description: description,
	}
	return tx.Create(&entry).Error
}

// CreditWallet credits a customer wallet.
func (ls *LedgerService) CreditWallet(customerID uint, amount float64, description string) error {
	return ls.DB.Transaction(func(tx *gorm.DB) error {
		return ls.creditWalletTx(tx, customerID, amount, description)
	})
}

// DebitWalletForOrder applies min(balance, order total, maxAmount) from
// the customer's wallet to the order and returns the remaining amount
// still owed. Safe to call only once per order: once the status advanced
// or a wallet credit was already applied it fails with ErrOrderNotPayable
// instead of double-debiting.
func (ls *LedgerService) DebitWalletForOrder(orderID uint, maxAmount float64) (float64, error) {
	var remaining float64
	err := ls.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}

		if order.Status != models.OrderStatusPendingPayment || order.WalletCreditApplied > 0 {
			return utils.ErrOrderNotPayable
		}
		if order.CustomerID == nil {
			// Guest checkouts have no wallet; only card payment applies
			return utils.Validation("guest orders cannot use wallet credit")
		}

		var customer models.Customer
		if err := tx.First(&customer, *order.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrCustomerNotFound
			}
			return err
		}

		amount := customer.WalletBalance
		if order.TotalPrice < amount {
			amount = order.TotalPrice
		}
		if maxAmount < amount {
			amount = maxAmount
		}

		if amount > 0 {
			if err := ls.debitWalletTx(tx, customer.ID, amount,
				fmt.Sprintf("Payment for order %s", order.OrderNumber)); err != nil {
				return err
			}

			res := tx.Model(&models.Order{}).
				Where("id = ? AND status = ? AND wallet_credit_applied = 0",
					order.ID, models.OrderStatusPendingPayment).
				Updates(map[string]interface{}{
					"wallet_credit_applied": amount,
					"total_price":           gorm.Expr("total_price - ?", amount),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return utils.ErrOrderNotPayable
			}
			order.TotalPrice -= amount
		}

		remaining = order.TotalPrice
		return nil
	})
	return remaining, err
}

// FinalizeWalletTopup consumes a pending top-up exactly once. Returns
// false when no pending top-up carries this external id, which lets the
// reconciliation dispatcher try the order path instead.
func (ls *LedgerService) FinalizeWalletTopup(externalID string) (bool, error) {
	var finalized bool
	err := ls.DB.Transaction(func(tx *gorm.DB) error {
		var topup models.PendingTopup
		if err := tx.Where("external_id = ?", externalID).First(&topup).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		// Delete first: only the callback that actually removes the row
		// performs the credit, so a duplicate delivery cannot double-credit.
		res := tx.Where("id = ?", topup.ID).Delete(&models.PendingTopup{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := ls.creditWalletTx(tx, topup.CustomerID, topup.Amount, "Wallet top-up"); err != nil {
			return err
		}
		finalized = true
		return nil
	})
	return finalized, err
}

// ConfirmOrderPayment transitions pending_payment -> pending_approval for
// the order carrying this external id. Idempotent: an order that already
// advanced is a no-op, not an error, so duplicate bank callbacks are
// harmless. The loyalty stamp is awarded in the same transaction as the
// transition, which makes it at-most-once per order.
func (ls *LedgerService) ConfirmOrderPayment(externalID string) (*models.Order, bool, error) {
	var (
		order       models.Order
		transitions bool
	)
	err := ls.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("external_id = ?", externalID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}

		if order.Status != models.OrderStatusPendingPayment {
			// already confirmed (or rejected by staff in the meantime)
			return nil
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPendingPayment).
			Update("status", models.OrderStatusPendingApproval)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race against a concurrent callback; treat as no-op
			return nil
		}
		order.Status = models.OrderStatusPendingApproval
		transitions = true

		if order.CustomerID != nil {
			if err := ls.awardStampsTx(tx, *order.CustomerID, 1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &order, transitions, nil
}

func (ls *LedgerService) awardStampsTx(tx *gorm.DB, customerID uint, stamps int) error {
	if stamps <= 0 {
		return utils.ErrInvalidAmount
	}
	res := tx.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("stamps", gorm.Expr("stamps + ?", stamps))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrCustomerNotFound
	}
	return nil
}

// AwardPoints increments the loyalty point counter. Call sites must
// guarantee at-most-once invocation per qualifying event (e.g. the
// referral handler flips the invitation status in the same transaction).
func (ls *LedgerService) AwardPoints(customerID uint, points int) error {
	if points <= 0 {
		return utils.ErrInvalidAmount
	}
	return ls.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Customer{}).
			Where("id = ?", customerID).
			Update("points", gorm.Expr("points + ?", points))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.ErrCustomerNotFound
		}
		return nil
	})
}

// RejectOrder transitions the order to rejected and refunds the customer
// wallet in the same transaction, so the order can never be marked
// rejected without the refund (or vice versa). The refund depends on the
// recorded payment mode:
//
//	wallet_only       -> wallet_credit_applied
//	card_online       -> total_price (bank already settled to merchant)
//	wallet_card_combo -> wallet_credit_applied + total_price
//	cash / terminal   -> nothing (money never captured digitally)
//
// An order still in pending_payment only gets its wallet portion back,
// since the card leg was never captured.
func (ls *LedgerService) RejectOrder(orderID uint, reason string) error {
	return ls.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}

		if order.IsTerminal() {
			return utils.Validation("order %s is already %s", order.OrderNumber, order.Status)
		}

		refund := ls.refundAmount(&order)

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Updates(map[string]interface{}{
				"status":        models.OrderStatusRejected,
				"reject_reason": reason,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation("order %s changed status concurrently, retry", order.OrderNumber)
		}

		if refund > 0 && order.CustomerID != nil {
			if err := ls.creditWalletTx(tx, *order.CustomerID, refund,
				fmt.Sprintf("Refund for rejected order %s", order.OrderNumber)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (ls *LedgerService) refundAmount(order *models.Order) float64 {
	if order.Status == models.OrderStatusPendingPayment {
		// card leg never captured, only return committed wallet funds
		return order.WalletCreditApplied
	}
	switch order.PaymentMode {
	case models.PayModeWalletOnly:
		return order.WalletCreditApplied
	case models.PayModeCardOnline:
		return order.TotalPrice
	case models.PayModeWalletCardCombo:
		return order.WalletCreditApplied + order.TotalPrice
	default:
		// cash, card terminal and bank transfer are settled outside the
		// wallet ledger
		return 0
	}
}

// WalletLedger returns the entries plus the recomputed signed sum, so
// callers can display (and assert) the balance projection.
func (ls *LedgerService) WalletLedger(customerID uint) ([]models.WalletEntry, float64, error) {
	var entries []models.WalletEntry
	if err := ls.DB.Where("customer_id = ?", customerID).
		Order("created_at asc, id asc").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	var sum float64
	for i := range entries {
		sum += entries[i].Signed()
	}
	return entries, sum, nil
}
