package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func TestCustomerRegisterIssuesToken(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, "POST", "/customers/register", "", map[string]interface{}{
		"name":  "Alex",
		"phone": "+6500000001",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	customer := data["customer"].(map[string]interface{})
	assert.NotEmpty(t, customer["referral_code"])

	// duplicate phone conflicts
	w = env.request(t, "POST", "/customers/register", "", map[string]interface{}{
		"name":  "Alex Again",
		"phone": "+6500000001",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCustomerRegisterClaimsGuestProfile(t *testing.T) {
	env := setupEnv(t)

	guest := models.Customer{
		Name:    "Guest",
		Phone:   "+6500000002",
		Claimed: false,
	}
	assert.NoError(t, env.DB.Create(&guest).Error)

	w := env.request(t, "POST", "/customers/register", "", map[string]interface{}{
		"name":  "Named Now",
		"phone": "+6500000002",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var reloaded models.Customer
	assert.NoError(t, env.DB.First(&reloaded, guest.ID).Error)
	assert.True(t, reloaded.Claimed)
	assert.Equal(t, "Named Now", reloaded.Name)

	// no duplicate row was created
	var count int64
	assert.NoError(t, env.DB.Model(&models.Customer{}).Where("phone = ?", guest.Phone).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCustomerProfile(t *testing.T) {
	env := setupEnv(t)
	customer, token := env.seedCustomer(t, "+6500000001", 33.0)
	assert.NoError(t, env.DB.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Updates(map[string]interface{}{"stamps": 4, "points": 20}).Error)

	w := env.request(t, "GET", "/me/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(4), data["stamps"])
	assert.Equal(t, float64(20), data["points"])
	assert.InDelta(t, 33.0, data["wallet_balance"].(float64), 0.001)
}

func TestCreateInviteAndCompleteOnRegistration(t *testing.T) {
	env := setupEnv(t)
	inviter, inviterToken := env.seedCustomer(t, "+6500000001", 0)

	w := env.request(t, "POST", "/me/invites", inviterToken, map[string]interface{}{
		"phone": "+6500000099",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invitation models.Invitation
	assert.NoError(t, env.DB.Where("inviter_id = ?", inviter.ID).First(&invitation).Error)
	assert.Equal(t, models.InvitationAwaitingPurchase, invitation.Status)
	assert.Nil(t, invitation.InviteeID)

	// repeating the same invite conflicts
	w = env.request(t, "POST", "/me/invites", inviterToken, map[string]interface{}{
		"phone": "+6500000099",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// self invitation is rejected
	w = env.request(t, "POST", "/me/invites", inviterToken, map[string]interface{}{
		"phone": inviter.Phone,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// when the invitee registers, the invitation links to them
	w = env.request(t, "POST", "/customers/register", "", map[string]interface{}{
		"name":  "Invitee",
		"phone": "+6500000099",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.NoError(t, env.DB.First(&invitation, invitation.ID).Error)
	assert.NotNil(t, invitation.InviteeID)
	// still awaiting the first purchase; points come later
	assert.Equal(t, models.InvitationAwaitingPurchase, invitation.Status)
	var reloadedInviter models.Customer
	assert.NoError(t, env.DB.First(&reloadedInviter, inviter.ID).Error)
	assert.Equal(t, 0, reloadedInviter.Points)
}
