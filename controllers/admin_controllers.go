package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type AdminController struct {
	DB      *gorm.DB
	Monitor *services.OrderMonitor
	Ledger  *services.LedgerService
}

func NewAdminController(db *gorm.DB, monitor *services.OrderMonitor, ledger *services.LedgerService) *AdminController {
	return &AdminController{DB: db, Monitor: monitor, Ledger: ledger}
}

// GetDashboardStats -> point-in-time snapshot of order counts, today's
// revenue and outstanding wallet liability
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Monitor.CollectStats()
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard statistics", stats)
}

// AwardCustomerPoints -> manual points grant for quests and promotions
func (ac *AdminController) AwardCustomerPoints(c *gin.Context) {
	idStr := c.Param("customer_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respondServiceError(c, utils.Validation("invalid customer id"))
		return
	}

	var req struct {
		Points int    `json:"points" binding:"required,gt=0"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ac.Ledger.AwardPoints(uint(id), req.Points); err != nil {
		respondServiceError(c, err)
		return
	}

	userID, _ := c.Get("userID")
	utils.InfoLogger.Printf("Staff %v awarded %d points to customer %d (%s)",
		userID, req.Points, id, req.Reason)
	utils.RespondJSON(c, http.StatusOK, "Points awarded", gin.H{
		"customer_id": id,
		"points":      req.Points,
	})
}

// GetAllCustomers -> paged customer listing for the back office
func (ac *AdminController) GetAllCustomers(c *gin.Context) {
	var customers []models.Customer
	query := ac.DB.Order("created_at DESC")

	if phone := c.Query("phone"); phone != "" {
		query = query.Where("phone = ?", phone)
	}

	if err := query.Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of customers", customers)
}
