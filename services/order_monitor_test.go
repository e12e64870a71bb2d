package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"burgerhub-backend/models"
)

func TestCollectStats(t *testing.T) {
	db := setupTestDB(t)
	monitor := NewOrderMonitor(db)
	customer := seedCustomer(t, db, "+6500000001", 35.0)

	orders := []models.Order{
		{ExternalID: uuid.New().String(), OrderNumber: "APP-010926-120000-1", CustomerID: &customer.ID,
			Status: models.OrderStatusPendingApproval, TotalPrice: 18.0, WalletCreditApplied: 2.0},
		{ExternalID: uuid.New().String(), OrderNumber: "APP-010926-120000-2", CustomerID: &customer.ID,
			Status: models.OrderStatusCompleted, TotalPrice: 10.0},
		{ExternalID: uuid.New().String(), OrderNumber: "APP-010926-120000-3", CustomerID: &customer.ID,
			Status: models.OrderStatusPendingPayment, TotalPrice: 99.0},
		{ExternalID: uuid.New().String(), OrderNumber: "APP-010926-120000-4", CustomerID: &customer.ID,
			Status: models.OrderStatusRejected, TotalPrice: 50.0},
	}
	for i := range orders {
		assert.NoError(t, db.Create(&orders[i]).Error)
	}

	stats, err := monitor.CollectStats()
	assert.NoError(t, err)

	assert.Equal(t, int64(1), stats.PendingPayment)
	assert.Equal(t, int64(1), stats.PendingApproval)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Rejected)
	// revenue counts confirmed statuses only: 18+2 and 10
	assert.InDelta(t, 30.0, stats.TodayRevenue, 0.001)
	assert.InDelta(t, 35.0, stats.WalletLiability, 0.001)
}
