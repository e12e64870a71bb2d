package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/live"
	"burgerhub-backend/middlewares"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type PaymentController struct {
	DB        *gorm.DB
	Reconcile *services.ReconcileService
}

func NewPaymentController(db *gorm.DB, reconcile *services.ReconcileService) *PaymentController {
	return &PaymentController{DB: db, Reconcile: reconcile}
}

// BankCallbackBody is the JSON the bank posts on payment outcome.
type BankCallbackBody struct {
	ExternalOrderID string `json:"external_order_id"`
	Order           struct {
		Status string `json:"status"`
	} `json:"order"`
}

// HandleBankCallback finalizes a signature-verified callback. The
// response contract with the bank: 200 for every recognized terminal
// outcome (including unknown ids, to stop retries), 403 only for
// signature failures (handled by the middleware before this runs), 500
// only for genuine internal faults where a retry might help.
func (pc *PaymentController) HandleBankCallback(c *gin.Context) {
	rawBody, exists := c.Get(middlewares.RawBodyKey)
	if !exists {
		// the signature middleware did not run; never process unverified
		// callbacks
		utils.SecurityEvent("Bank callback reached handler without signature verification from %s", c.ClientIP())
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	var body BankCallbackBody
	if err := json.Unmarshal(rawBody.([]byte), &body); err != nil {
		utils.ErrorLogger.Printf("Malformed bank callback body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "malformed body"})
		return
	}
	if body.ExternalOrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "missing external_order_id"})
		return
	}

	outcome, err := pc.Reconcile.HandleCallback(body.ExternalOrderID, body.Order.Status)
	if err != nil {
		utils.ErrorLogger.Printf("Callback reconciliation failed for %s: %v", body.ExternalOrderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal error"})
		return
	}

	live.BroadcastPaymentUpdate(body.ExternalOrderID, outcome)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "outcome": outcome})
}

// PaymentStatus is the landing endpoint for the bank's success/fail
// redirects. It reports purely from URL parameters and performs no
// reconciliation of its own: the callback handler is solely
// authoritative.
func (pc *PaymentController) PaymentStatus(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case "success", "failed", "pending":
	default:
		status = "pending"
	}
	utils.RespondJSON(c, http.StatusOK, "Payment status", gin.H{
		"status":      status,
		"external_id": c.Query("order"),
	})
}
