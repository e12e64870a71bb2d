package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func TestValidatePromo(t *testing.T) {
	env := setupEnv(t)
	assert.NoError(t, env.DB.Create(&models.PromoCode{
		Code: "LAUNCH10", DiscountPct: 10.0, Active: true, UsageLimit: 100,
	}).Error)

	w := env.request(t, "POST", "/promos/validate", "", map[string]interface{}{
		"code": " launch10 ",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "LAUNCH10", data["code"])
	assert.InDelta(t, 10.0, data["discount_pct"].(float64), 0.001)
}

func TestValidatePromoRejectsExhaustedAndInactive(t *testing.T) {
	env := setupEnv(t)
	assert.NoError(t, env.DB.Create(&models.PromoCode{
		Code: "USEDUP", DiscountPct: 10.0, Active: true, UsageLimit: 5, UsedCount: 5,
	}).Error)
	assert.NoError(t, env.DB.Create(&models.PromoCode{
		Code: "DISABLED", DiscountPct: 10.0, Active: false, UsageLimit: 100,
	}).Error)

	for _, code := range []string{"USEDUP", "DISABLED", "NOSUCHCODE"} {
		w := env.request(t, "POST", "/promos/validate", "", map[string]interface{}{"code": code})
		assert.Equal(t, http.StatusBadRequest, w.Code, "code %s", code)
	}
}

func TestStaffPromoManagement(t *testing.T) {
	env := setupEnv(t)
	staffToken := env.seedStaff(t)

	w := env.request(t, "POST", "/admin/promos", staffToken, map[string]interface{}{
		"code":         "week end ",
		"discount_pct": 15.0,
		"usage_limit":  50,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var promo models.PromoCode
	assert.NoError(t, env.DB.Where("code = ?", "WEEK END").First(&promo).Error)
	assert.True(t, promo.Active)

	// deactivate
	w = env.request(t, "PATCH", "/admin/promos/1", staffToken, map[string]interface{}{
		"active": false,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, env.DB.First(&promo, promo.ID).Error)
	assert.False(t, promo.Active)

	// discount bounds enforced at creation
	w = env.request(t, "POST", "/admin/promos", staffToken, map[string]interface{}{
		"code":         "TOOMUCH",
		"discount_pct": 150.0,
		"usage_limit":  50,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
