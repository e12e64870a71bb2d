package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func postCallback(t *testing.T, env *testEnv, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/payments/callback", bytes.NewBuffer(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("Callback-Signature", signature)
	}
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	return w
}

func callbackBody(externalID, status string) []byte {
	return []byte(fmt.Sprintf(`{"external_order_id":%q,"order":{"status":%q}}`, externalID, status))
}

func TestBankCallbackConfirmsOrder(t *testing.T) {
	env := setupEnv(t)
	customer, _ := env.seedCustomer(t, "+6500000001", 0)

	order := models.Order{
		ExternalID:  uuid.New().String(),
		OrderNumber: "APP-010926-120000-1",
		CustomerID:  &customer.ID,
		Status:      models.OrderStatusPendingPayment,
		PaymentMode: models.PayModeCardOnline,
		TotalPrice:  18.0,
	}
	assert.NoError(t, env.DB.Create(&order).Error)

	body := callbackBody(order.ExternalID, "completed")
	w := postCallback(t, env, body, env.signBody(t, body))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "order_confirmed", resp["outcome"])

	var reloaded models.Order
	assert.NoError(t, env.DB.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingApproval, reloaded.Status)
}

func TestBankCallbackDuplicateDelivery(t *testing.T) {
	env := setupEnv(t)
	customer, _ := env.seedCustomer(t, "+6500000001", 0)

	order := models.Order{
		ExternalID:  uuid.New().String(),
		OrderNumber: "APP-010926-120000-1",
		CustomerID:  &customer.ID,
		Status:      models.OrderStatusPendingPayment,
		PaymentMode: models.PayModeCardOnline,
		TotalPrice:  18.0,
	}
	assert.NoError(t, env.DB.Create(&order).Error)

	body := callbackBody(order.ExternalID, "completed")
	signature := env.signBody(t, body)

	first := postCallback(t, env, body, signature)
	second := postCallback(t, env, body, signature)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)

	// exactly one stamp despite two deliveries
	var reloaded models.Customer
	assert.NoError(t, env.DB.First(&reloaded, customer.ID).Error)
	assert.Equal(t, 1, reloaded.Stamps)
}

func TestBankCallbackRejectsBadSignature(t *testing.T) {
	env := setupEnv(t)
	customer, _ := env.seedCustomer(t, "+6500000001", 0)

	order := models.Order{
		ExternalID:  uuid.New().String(),
		OrderNumber: "APP-010926-120000-1",
		CustomerID:  &customer.ID,
		Status:      models.OrderStatusPendingPayment,
		TotalPrice:  18.0,
	}
	assert.NoError(t, env.DB.Create(&order).Error)

	body := callbackBody(order.ExternalID, "completed")

	// missing signature
	w := postCallback(t, env, body, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// signature over a different body
	otherSig := env.signBody(t, callbackBody(order.ExternalID, "failed"))
	w = postCallback(t, env, body, otherSig)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// garbage signature
	w = postCallback(t, env, body, "!!!not-base64!!!")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var reloaded models.Order
	assert.NoError(t, env.DB.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingPayment, reloaded.Status)
}

func TestBankCallbackFinalizesTopup(t *testing.T) {
	env := setupEnv(t)
	customer, _ := env.seedCustomer(t, "+6500000001", 0)

	externalID := uuid.New().String()
	assert.NoError(t, env.DB.Create(&models.PendingTopup{
		ExternalID: externalID,
		CustomerID: customer.ID,
		Amount:     30.0,
	}).Error)

	body := callbackBody(externalID, "completed")
	w := postCallback(t, env, body, env.signBody(t, body))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "topup_finalized", resp["outcome"])

	var reloaded models.Customer
	assert.NoError(t, env.DB.First(&reloaded, customer.ID).Error)
	assert.InDelta(t, 30.0, reloaded.WalletBalance, 0.001)
}

func TestBankCallbackUnknownIDAcknowledged(t *testing.T) {
	env := setupEnv(t)

	body := callbackBody(uuid.New().String(), "completed")
	w := postCallback(t, env, body, env.signBody(t, body))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "unknown_id", resp["outcome"])
}

func TestBankCallbackMalformedBody(t *testing.T) {
	env := setupEnv(t)

	body := []byte(`{"not json`)
	w := postCallback(t, env, body, env.signBody(t, body))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body = []byte(`{"order":{"status":"completed"}}`)
	w = postCallback(t, env, body, env.signBody(t, body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentStatusLandingReportsFromQueryOnly(t *testing.T) {
	env := setupEnv(t)
	customer, _ := env.seedCustomer(t, "+6500000001", 0)

	order := models.Order{
		ExternalID:  uuid.New().String(),
		OrderNumber: "APP-010926-120000-1",
		CustomerID:  &customer.ID,
		Status:      models.OrderStatusPendingPayment,
		TotalPrice:  18.0,
	}
	assert.NoError(t, env.DB.Create(&order).Error)

	w := env.request(t, "GET", "/payments/status?status=success&order="+order.ExternalID, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "success", data["status"])

	// the landing page never reconciles; only the callback moves state
	var reloaded models.Order
	assert.NoError(t, env.DB.First(&reloaded, order.ID).Error)
	assert.Equal(t, models.OrderStatusPendingPayment, reloaded.Status)
}

func TestPaymentStatusUnknownValueFallsBackToPending(t *testing.T) {
	env := setupEnv(t)

	w := env.request(t, "GET", "/payments/status?status=hacked", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
}
