package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type WalletController struct {
	DB     *gorm.DB
	Ledger *services.LedgerService
	Bank   *services.BankService
}

func NewWalletController(db *gorm.DB, ledger *services.LedgerService, bank *services.BankService) *WalletController {
	return &WalletController{DB: db, Ledger: ledger, Bank: bank}
}

// GetMyWallet -> balance plus full ledger history. The recomputed signed
// sum is returned next to the cached balance so clients (and tests) can
// see the projection holds.
func (wc *WalletController) GetMyWallet(c *gin.Context) {
	userID, _ := c.Get("userID")
	customerID := userID.(uint)

	var customer models.Customer
	if err := wc.DB.First(&customer, customerID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrCustomerNotFound)
		return
	}

	entries, sum, err := wc.Ledger.WalletLedger(customerID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My wallet", gin.H{
		"balance":    customer.WalletBalance,
		"ledger_sum": sum,
		"entries":    entries,
	})
}

// TopupWallet starts a card-funded wallet top-up: a pending top-up row is
// recorded under a fresh external id (same uuid space as orders) and the
// customer is redirected to the bank. The credit itself only happens when
// the callback finalizes the top-up.
func (wc *WalletController) TopupWallet(c *gin.Context) {
	userID, _ := c.Get("userID")
	customerID := userID.(uint)

	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	topup := models.PendingTopup{
		ExternalID: uuid.New().String(),
		CustomerID: customerID,
		Amount:     req.Amount,
	}
	if err := wc.DB.Create(&topup).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	redirectURL, err := wc.Bank.CreateRemoteOrder(topup.ExternalID, topup.Amount, "BurgerHub wallet top-up")
	if err != nil {
		// keep the pending row: the customer can retry against the bank,
		// and an unfinalized top-up never credits anything
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Top-up initiated", gin.H{
		"external_id":  topup.ExternalID,
		"amount":       topup.Amount,
		"redirect_url": redirectURL,
	})
}
