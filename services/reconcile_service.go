package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"burgerhub-backend/live"
	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

// Reconciliation outcomes
const (
	OutcomeIgnored        = "ignored"
	OutcomeTopupFinalized = "topup_finalized"
	OutcomeOrderConfirmed = "order_confirmed"
	OutcomeUnknownID      = "unknown_id"
)

// ReconcileService finalizes verified bank callbacks. For any external id
// exactly one of {top-up finalized, order confirmed, neither} happens,
// never both, and never more than once: the id is resolved by trying the
// pending top-up first and falling back to the order path.
type ReconcileService struct {
	DB      *gorm.DB
	Ledger  *LedgerService
	Rewards *RewardsService
}

func NewReconcileService(db *gorm.DB, ledger *LedgerService, rewards *RewardsService) *ReconcileService {
	return &ReconcileService{DB: db, Ledger: ledger, Rewards: rewards}
}

// HandleCallback processes a signature-verified callback. Non-completed
// bank statuses are informational and produce no ledger action. Safe to
// call repeatedly with the same id: both paths are idempotent.
func (rs *ReconcileService) HandleCallback(externalID, bankStatus string) (string, error) {
	if bankStatus != "completed" {
		utils.InfoLogger.Printf("Callback for %s with status %q, no ledger action", externalID, bankStatus)
		return OutcomeIgnored, nil
	}

	finalized, err := rs.Ledger.FinalizeWalletTopup(externalID)
	if err != nil {
		return "", err
	}
	if finalized {
		utils.InfoLogger.Printf("Wallet top-up %s finalized", externalID)
		return OutcomeTopupFinalized, nil
	}

	order, transitioned, err := rs.Ledger.ConfirmOrderPayment(externalID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			// acknowledged to the bank to stop retries, but the operator
			// needs to see it
			utils.ErrorLogger.Printf("Callback for unknown external id %s, acknowledged without action", externalID)
			return OutcomeUnknownID, nil
		}
		return "", err
	}

	if transitioned {
		rs.afterOrderConfirmed(order)
	}
	return OutcomeOrderConfirmed, nil
}

// afterOrderConfirmed runs the side effects that hang off a confirmed
// payment. None of them may fail the callback: the money already moved.
func (rs *ReconcileService) afterOrderConfirmed(order *models.Order) {
	if order.CustomerID != nil {
		if err := rs.Rewards.ProcessReferralPurchase(*order.CustomerID); err != nil {
			utils.ErrorLogger.Printf("Referral processing failed for customer %d: %v", *order.CustomerID, err)
		}
	}

	paid := order.TotalPrice + order.WalletCreditApplied
	message := fmt.Sprintf("Order %s paid (%s), waiting for approval", order.OrderNumber, utils.FormatCurrency(paid))
	notification := models.Notification{
		Type:    "order_pending_approval",
		Message: message,
		OrderID: &order.ID,
	}
	if err := rs.DB.Create(&notification).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to persist staff notification for order %d: %v", order.ID, err)
	}

	live.BroadcastOrderUpdate(*order)
	live.BroadcastStaffNotification(message)
}
