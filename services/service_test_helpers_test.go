package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	err = db.AutoMigrate(
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
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, phone string, balance float64) models.Customer {
	t.Helper()
	customer := models.Customer{
		Name:          "Test Customer",
		Phone:         phone,
		WalletBalance: balance,
		ReferralCode:  "REF" + phone,
		Claimed:       true,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("failed to seed customer: %v", err)
	}
	if balance > 0 {
		entry := models.WalletEntry{
			CustomerID:  customer.ID,
			Type:        models.WalletEntryCredit,
			Amount:      balance,
			Description: "Seed balance",
		}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("failed to seed wallet entry: %v", err)
		}
	}
	return customer
}

// assertLedgerInvariant checks that the cached balance equals the signed
// sum of the wallet entries.
func assertLedgerInvariant(t *testing.T, db *gorm.DB, customerID uint) {
	t.Helper()

	var customer models.Customer
	if err := db.First(&customer, customerID).Error; err != nil {
		t.Fatalf("failed to load customer: %v", err)
	}

	ledger := NewLedgerService(db)
	_, sum, err := ledger.WalletLedger(customerID)
	if err != nil {
		t.Fatalf("failed to load ledger: %v", err)
	}

	if diff := customer.WalletBalance - sum; diff > 0.001 || diff < -0.001 {
		t.Fatalf("ledger invariant broken: balance %.2f, entry sum %.2f", customer.WalletBalance, sum)
	}
}
