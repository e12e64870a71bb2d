package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

// CashbackPct is the wallet credit awarded for qualifying dine-in orders.
const CashbackPct = 5.0

// RewardsService handles the post-payment side effects: dine-in cashback
// and referral completion. Both route through the wallet/points ledger
// inside a single transaction with their eligibility gate.
type RewardsService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewRewardsService(db *gorm.DB, ledger *LedgerService) *RewardsService {
	return &RewardsService{DB: db, Ledger: ledger}
}

// AwardCashback credits 5% of what the customer actually paid, card and
// wallet legs combined, to the customer wallet. Only dine-in orders
// qualify, and only once: the cashback_awarded flag is checked and set in
// the same transaction as the credit, so two concurrent calls cannot both
// pass the "not yet awarded" gate.
func (rw *RewardsService) AwardCashback(orderID uint) error {
	return rw.DB.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrNotFound
			}
			return err
		}

		if order.OrderType != models.OrderTypeDineIn {
			return utils.Validation("cashback only applies to dine-in orders")
		}
		if order.Status == models.OrderStatusPendingPayment || order.Status == models.OrderStatusRejected {
			return utils.Validation("order %s has no confirmed payment", order.OrderNumber)
		}
		if order.CustomerID == nil {
			return utils.Validation("guest orders do not collect cashback")
		}
		if order.CashbackAwarded {
			return utils.Validation("cashback already awarded for order %s", order.OrderNumber)
		}

		// TotalPrice holds only the card leg after the wallet debit, the
		// cashback base is the full amount paid
		amount := (order.TotalPrice + order.WalletCreditApplied) * CashbackPct / 100
		if amount <= 0 {
			return utils.Validation("order %s has nothing to base cashback on", order.OrderNumber)
		}

		// the flag flip is the re-entry gate; RowsAffected catches the race
		res := tx.Model(&models.Order{}).
			Where("id = ? AND cashback_awarded = ?", order.ID, false).
			Update("cashback_awarded", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return utils.Validation("cashback already awarded for order %s", order.OrderNumber)
		}

		return rw.Ledger.creditWalletTx(tx, *order.CustomerID, amount,
			fmt.Sprintf("Cashback for order %s", order.OrderNumber))
	})
}

// ProcessReferralPurchase completes a referral on the invitee's first
// qualifying purchase: the inviter receives the stored point amount and
// the invitation advances to completed, both in one transaction. Most
// purchases are not referral-linked, so a missing invitation is a no-op.
func (rw *RewardsService) ProcessReferralPurchase(buyerID uint) error {
	return rw.DB.Transaction(func(tx *gorm.DB) error {
		var invitation models.Invitation
		err := tx.Where("invitee_id = ? AND status = ?", buyerID, models.InvitationAwaitingPurchase).
			First(&invitation).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		// status flip and point award share the transaction: at-most-once
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationAwaitingPurchase).
			Update("status", models.InvitationCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		points := tx.Model(&models.Customer{}).
			Where("id = ?", invitation.InviterID).
			Update("points", gorm.Expr("points + ?", invitation.Points))
		if points.Error != nil {
			return points.Error
		}
		if points.RowsAffected == 0 {
			return utils.ErrCustomerNotFound
		}
		return nil
	})
}
