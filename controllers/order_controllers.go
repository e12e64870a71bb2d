package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/live"
	"burgerhub-backend/models"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type OrderController struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
	Ledger   *services.LedgerService
	Rewards  *services.RewardsService
}

func NewOrderController(db *gorm.DB, checkout *services.CheckoutService, ledger *services.LedgerService, rewards *services.RewardsService) *OrderController {
	return &OrderController{DB: db, Checkout: checkout, Ledger: ledger, Rewards: rewards}
}

// PlaceOrder -> checkout. Customers get their id from the auth token;
// guest checkouts carry no customer id and can only pay by card.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// never trust a customer id from the body; the token is authoritative
	req.CustomerID = nil
	if userID, exists := c.Get("userID"); exists {
		if role, _ := c.Get("role"); role == "customer" {
			id := userID.(uint)
			req.CustomerID = &id
		}
	}

	result, err := oc.Checkout.PlaceOrder(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.PaymentComplete {
		utils.RespondJSON(c, http.StatusCreated, "Payment complete", gin.H{
			"payment_complete": true,
			"order":            result.Order,
			"totals":           result.Totals,
		})
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment initiated", gin.H{
		"payment_complete": false,
		"redirect_url":     result.RedirectURL,
		"order":            result.Order,
		"totals":           result.Totals,
	})
}

// RetryPayment re-initiates the card payment for a pending_payment order
// without touching the wallet again. Logged-in customers must own the
// order; guests must present the opaque external id they were handed at
// checkout, the numeric id alone authorizes nothing.
func (oc *OrderController) RetryPayment(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var req struct {
		ExternalID string `json:"external_id"`
	}
	// body is optional for authenticated callers
	_ = c.ShouldBindJSON(&req)

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrNotFound)
		return
	}

	if !oc.canRetry(c, &order, req.ExternalID) {
		utils.RespondError(c, http.StatusForbidden, utils.ErrNoPermission)
		return
	}

	result, err := oc.Checkout.RetryPayment(order.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Payment re-initiated", result)
}

// GetMyOrders -> customer order history. Totals are recomputed from the
// item snapshots instead of trusting the stored aggregate columns.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, _ := c.Get("userID")
	customerID := userID.(uint)

	var orders []models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.AddOns").
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	type HistoryEntry struct {
		Order  models.Order    `json:"order"`
		Totals services.Totals `json:"totals"`
	}
	history := make([]HistoryEntry, 0, len(orders))
	for i := range orders {
		history = append(history, HistoryEntry{
			Order:  orders[i],
			Totals: services.RecomputeOrder(&orders[i]),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Order history", history)
}

// GetOrderByID -> detail for the owning customer or staff
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.Preload("OrderItems").Preload("OrderItems.AddOns").
		First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrNotFound)
		return
	}

	role, _ := c.Get("role")
	if role == "customer" {
		userID, _ := c.Get("userID")
		if order.CustomerID == nil || *order.CustomerID != userID.(uint) {
			utils.RespondError(c, http.StatusForbidden, utils.ErrNoPermission)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Order detail", gin.H{
		"order":  order,
		"totals": services.RecomputeOrder(&order),
	})
}

// GetAllOrders -> staff list, optionally filtered by status
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	query := oc.DB.Preload("OrderItems").Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// ApproveOrder -> staff moves a paid order into preparation
func (oc *OrderController) ApproveOrder(c *gin.Context) {
	oc.transition(c, models.OrderStatusPendingApproval, models.OrderStatusPreparing, "Order approved")
}

// CompleteOrder -> staff marks a prepared order completed
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	oc.transition(c, models.OrderStatusPreparing, models.OrderStatusCompleted, "Order completed")
}

func (oc *OrderController) transition(c *gin.Context, from, to, message string) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrNotFound)
		return
	}

	res := oc.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Update("status", to)
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("order %s is not in %s status", order.OrderNumber, from))
		return
	}
	order.Status = to

	live.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusOK, message, order)
}

// RejectOrder -> staff rejects with a reason; the wallet refund and the
// status change happen in one ledger transaction.
func (oc *OrderController) RejectOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := oc.Ledger.RejectOrder(uint(orderID), req.Reason); err != nil {
		respondServiceError(c, err)
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err == nil {
		live.BroadcastOrderUpdate(order)
		live.BroadcastStaffNotification(fmt.Sprintf("Order %s rejected: %s", order.OrderNumber, req.Reason))
	}

	utils.RespondJSON(c, http.StatusOK, "Order rejected and refunded", gin.H{"order_id": orderID})
}

// AwardCashback -> staff action for qualifying dine-in orders
func (oc *OrderController) AwardCashback(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid order id"))
		return
	}

	if err := oc.Rewards.AwardCashback(uint(orderID)); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Cashback awarded", gin.H{"order_id": orderID})
}

// canRetry decides who may re-initiate payment for an order: staff
// always, customers only for their own orders, anonymous callers only
// with the matching external id.
func (oc *OrderController) canRetry(c *gin.Context, order *models.Order, externalID string) bool {
	role, authenticated := c.Get("role")
	if !authenticated {
		return externalID != "" && externalID == order.ExternalID
	}
	if role != "customer" {
		return true
	}
	userID, _ := c.Get("userID")
	return order.CustomerID != nil && *order.CustomerID == userID.(uint)
}
