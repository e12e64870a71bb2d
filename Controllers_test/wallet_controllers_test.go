package Controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func TestGetMyWallet(t *testing.T) {
	env := setupEnv(t)
	_, token := env.seedCustomer(t, "+6500000001", 45.0)

	w := env.request(t, "GET", "/me/wallet", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.InDelta(t, 45.0, data["balance"].(float64), 0.001)
	// the signed entry sum must agree with the cached balance
	assert.InDelta(t, 45.0, data["ledger_sum"].(float64), 0.001)
	assert.Len(t, data["entries"].([]interface{}), 1)
}

func TestGetMyWalletRequiresCustomerToken(t *testing.T) {
	env := setupEnv(t)
	staffToken := env.seedStaff(t)

	w := env.request(t, "GET", "/me/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, "GET", "/me/wallet", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTopupWalletCreatesPendingAndRedirects(t *testing.T) {
	env := setupEnv(t)
	customer, token := env.seedCustomer(t, "+6500000001", 0)

	w := env.request(t, "POST", "/me/wallet/topup", token, map[string]interface{}{
		"amount": 50.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "https://bank.example.com/pay/bank-1", data["redirect_url"])
	externalID := data["external_id"].(string)
	assert.NotEmpty(t, externalID)

	var topup models.PendingTopup
	assert.NoError(t, env.DB.Where("external_id = ?", externalID).First(&topup).Error)
	assert.Equal(t, customer.ID, topup.CustomerID)
	assert.InDelta(t, 50.0, topup.Amount, 0.001)

	// the balance only moves when the callback lands
	var reloaded models.Customer
	assert.NoError(t, env.DB.First(&reloaded, customer.ID).Error)
	assert.InDelta(t, 0.0, reloaded.WalletBalance, 0.001)
}

func TestTopupWalletRejectsNonPositiveAmount(t *testing.T) {
	env := setupEnv(t)
	_, token := env.seedCustomer(t, "+6500000001", 0)

	for _, amount := range []float64{0, -10} {
		w := env.request(t, "POST", "/me/wallet/topup", token, map[string]interface{}{
			"amount": amount,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	var count int64
	assert.NoError(t, env.DB.Model(&models.PendingTopup{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestTopupThenCallbackCreditsOnce(t *testing.T) {
	env := setupEnv(t)
	customer, token := env.seedCustomer(t, "+6500000001", 0)

	w := env.request(t, "POST", "/me/wallet/topup", token, map[string]interface{}{
		"amount": 25.0,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	externalID := decodeBody(t, w)["data"].(map[string]interface{})["external_id"].(string)

	body := callbackBody(externalID, "completed")
	signature := env.signBody(t, body)
	assert.Equal(t, http.StatusOK, postCallback(t, env, body, signature).Code)
	assert.Equal(t, http.StatusOK, postCallback(t, env, body, signature).Code)

	var reloaded models.Customer
	assert.NoError(t, env.DB.First(&reloaded, customer.ID).Error)
	assert.InDelta(t, 25.0, reloaded.WalletBalance, 0.001)
}
