package Controllers_test

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/router"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

type testEnv struct {
	DB      *gorm.DB
	Router  *gin.Engine
	BankKey *rsa.PrivateKey
	bankTS  *httptest.Server
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Menu{},
		&models.AddOn{},
		&models.Bun{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemAddOn{},
		&models.OrderCounter{},
		&models.WalletEntry{},
		&models.PendingTopup{},
		&models.PromoCode{},
		&models.Invitation{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	bankTS := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "test-token"})
		case "/v1/orders":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"order_id":     "bank-1",
				"checkout_url": "https://bank.example.com/pay/bank-1",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(bankTS.Close)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate bank key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	bank := services.NewBankService(&services.BankConfig{
		BaseURL:      bankTS.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		PublicKeyPEM: string(publicPEM),
		CallbackURL:  "https://shop.example.com/payments/callback",
		SuccessURL:   "https://shop.example.com/payments/status?status=success",
		FailURL:      "https://shop.example.com/payments/status?status=failed",
	})

	monitor := services.NewOrderMonitor(db)
	r := router.SetupRouter(db, bank, monitor)

	return &testEnv{DB: db, Router: r, BankKey: key, bankTS: bankTS}
}

func (e *testEnv) signBody(t *testing.T, body []byte) string {
	t.Helper()
	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, e.BankKey, crypto.SHA256, digest[:])
	if err != nil {
		t.Fatalf("failed to sign callback body: %v", err)
	}
	return base64.StdEncoding.EncodeToString(sig)
}

func (e *testEnv) seedCustomer(t *testing.T, phone string, balance float64) (models.Customer, string) {
	t.Helper()
	customer := models.Customer{
		Name:          "Test Customer",
		Phone:         phone,
		WalletBalance: balance,
		ReferralCode:  "REF" + phone,
		Claimed:       true,
	}
	if err := e.DB.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	if balance > 0 {
		if err := e.DB.Create(&models.WalletEntry{
			CustomerID:  customer.ID,
			Type:        models.WalletEntryCredit,
			Amount:      balance,
			Description: "Seed balance",
		}).Error; err != nil {
			t.Fatalf("failed to seed wallet entry: %v", err)
		}
	}
	token, err := utils.GenerateToken(customer.ID, "customer")
	if err != nil {
		t.Fatalf("failed to issue customer token: %v", err)
	}
	return customer, token
}

func (e *testEnv) seedStaff(t *testing.T) string {
	t.Helper()
	staff := models.User{Name: "Staff", Email: "staff@burgerhub.test", Password: "x", Role: "staff"}
	if err := e.DB.Create(&staff).Error; err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}
	token, err := utils.GenerateToken(staff.ID, "staff")
	if err != nil {
		t.Fatalf("failed to issue staff token: %v", err)
	}
	return token
}

func (e *testEnv) seedMenu(t *testing.T, name string, price float64) models.Menu {
	t.Helper()
	menu := models.Menu{Name: name, Price: price, Available: true}
	if err := e.DB.Create(&menu).Error; err != nil {
		t.Fatalf("failed to seed menu: %v", err)
	}
	return menu
}

func (e *testEnv) request(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return resp
}
