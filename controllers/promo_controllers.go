package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type PromoController struct {
	DB       *gorm.DB
	Checkout *services.CheckoutService
}

func NewPromoController(db *gorm.DB, checkout *services.CheckoutService) *PromoController {
	return &PromoController{DB: db, Checkout: checkout}
}

// ValidatePromo -> checks a code and returns its discount percent
func (pc *PromoController) ValidatePromo(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo, err := pc.Checkout.LookupPromo(req.Code)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Promo code valid", gin.H{
		"code":         promo.Code,
		"discount_pct": promo.DiscountPct,
	})
}

// CreatePromo -> staff creates a promotion
func (pc *PromoController) CreatePromo(c *gin.Context) {
	var req struct {
		Code        string  `json:"code" binding:"required"`
		DiscountPct float64 `json:"discount_pct" binding:"required,gt=0,lte=100"`
		UsageLimit  int     `json:"usage_limit" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo := models.PromoCode{
		Code:        models.NormalizePromoCode(req.Code),
		DiscountPct: req.DiscountPct,
		UsageLimit:  req.UsageLimit,
		Active:      true,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Promo created", promo)
}

// UpdatePromo -> staff toggles/adjusts a promotion
func (pc *PromoController) UpdatePromo(c *gin.Context) {
	promoID, err := strconv.Atoi(c.Param("promo_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid promo id"))
		return
	}

	var promo models.PromoCode
	if err := pc.DB.First(&promo, promoID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, utils.ErrNotFound)
		return
	}

	var req struct {
		Active      *bool    `json:"active"`
		DiscountPct *float64 `json:"discount_pct"`
		UsageLimit  *int     `json:"usage_limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Active != nil {
		promo.Active = *req.Active
	}
	if req.DiscountPct != nil {
		promo.DiscountPct = *req.DiscountPct
	}
	if req.UsageLimit != nil {
		promo.UsageLimit = *req.UsageLimit
	}

	if err := pc.DB.Save(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Promo updated", promo)
}

// GetAllPromos -> staff list
func (pc *PromoController) GetAllPromos(c *gin.Context) {
	var promos []models.PromoCode
	if err := pc.DB.Order("created_at desc").Find(&promos).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of promos", promos)
}
