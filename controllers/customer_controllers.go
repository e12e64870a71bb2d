package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// defaultReferralPoints reads the configured inviter reward.
func defaultReferralPoints() int {
	if v := os.Getenv("REFERRAL_POINTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 10
}

// Register -> customer self-registration. Phone and name are required
// before ordering.
func (cc *CustomerController) Register(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone" binding:"required"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	customer := models.Customer{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		ReferralCode: uuid.New().String()[:8],
		Claimed:      true,
	}

	// an unclaimed guest profile with this phone gets claimed instead of
	// creating a duplicate
	var existing models.Customer
	err := cc.DB.Where("phone = ?", req.Phone).First(&existing).Error
	switch {
	case err == nil && !existing.Claimed:
		existing.Name = req.Name
		existing.Email = req.Email
		existing.Claimed = true
		if existing.ReferralCode == "" {
			existing.ReferralCode = customer.ReferralCode
		}
		if err := cc.DB.Save(&existing).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		customer = existing
	case err == nil:
		utils.RespondError(c, http.StatusConflict, errors.New("phone number already registered"))
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := cc.DB.Create(&customer).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// link any invitation waiting on this phone number
	cc.DB.Model(&models.Invitation{}).
		Where("invitee_phone = ? AND invitee_id IS NULL AND status = ?",
			customer.Phone, models.InvitationAwaitingPurchase).
		Update("invitee_id", customer.ID)

	token, err := utils.GenerateToken(customer.ID, "customer")
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Customer registered", gin.H{
		"customer": customer,
		"token":    token,
	})
}

// GetProfile -> stamps, points and balance for the logged-in customer
func (cc *CustomerController) GetProfile(c *gin.Context) {
	userID, _ := c.Get("userID")

	var customer models.Customer
	if err := cc.DB.First(&customer, userID.(uint)).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrCustomerNotFound)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Customer profile", customer)
}

// CreateInvite -> customer invites a friend by phone. The inviter is
// rewarded only after the invitee's first qualifying purchase; this
// endpoint just records the awaiting invitation.
func (cc *CustomerController) CreateInvite(c *gin.Context) {
	userID, _ := c.Get("userID")
	inviterID := userID.(uint)

	var req struct {
		Phone string `json:"phone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var inviter models.Customer
	if err := cc.DB.First(&inviter, inviterID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrCustomerNotFound)
		return
	}
	if inviter.Phone == req.Phone {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot invite yourself"))
		return
	}

	var dup int64
	cc.DB.Model(&models.Invitation{}).
		Where("inviter_id = ? AND invitee_phone = ?", inviterID, req.Phone).
		Count(&dup)
	if dup > 0 {
		utils.RespondError(c, http.StatusConflict, errors.New("invitation already sent to this number"))
		return
	}

	invitation := models.Invitation{
		InviterID:    inviterID,
		InviteePhone: req.Phone,
		Points:       defaultReferralPoints(),
		Status:       models.InvitationAwaitingPurchase,
	}

	// already-registered invitees are linked immediately
	var invitee models.Customer
	if err := cc.DB.Where("phone = ?", req.Phone).First(&invitee).Error; err == nil {
		invitation.InviteeID = &invitee.ID
	}

	if err := cc.DB.Create(&invitation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer %d invited %s for %d points", inviterID, req.Phone, invitation.Points)
	utils.RespondJSON(c, http.StatusCreated, fmt.Sprintf("Invitation sent to %s", req.Phone), invitation)
}
