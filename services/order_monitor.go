package services

import (
	"log"
	"time"

	"gorm.io/gorm"

	"burgerhub-backend/live"
	"burgerhub-backend/models"
)

// OrderMonitor periodically pushes dashboard stats to the staff websocket
// clients. It is strictly read-only: it never touches the ledger, and it
// never retries payments (failed gateway calls are surfaced to the
// initiating request, not queued).
type OrderMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

// DashboardStats is the staff dashboard snapshot.
type DashboardStats struct {
	PendingPayment  int64   `json:"pending_payment"`
	PendingApproval int64   `json:"pending_approval"`
	Preparing       int64   `json:"preparing"`
	Completed       int64   `json:"completed"`
	Rejected        int64   `json:"rejected"`
	TodayRevenue    float64 `json:"today_revenue"`
	WalletLiability float64 `json:"wallet_liability"`
}

func NewOrderMonitor(db *gorm.DB) *OrderMonitor {
	return &OrderMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 5 * time.Second,
	}
}

func (om *OrderMonitor) Start() {
	go func() {
		ticker := time.NewTicker(om.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				om.pushStats()
			case <-om.StopChan:
				return
			}
		}
	}()
}

func (om *OrderMonitor) Stop() {
	close(om.StopChan)
}

// CollectStats builds the dashboard snapshot.
func (om *OrderMonitor) CollectStats() (*DashboardStats, error) {
	var stats DashboardStats

	counts := []struct {
		status string
		target *int64
	}{
		{models.OrderStatusPendingPayment, &stats.PendingPayment},
		{models.OrderStatusPendingApproval, &stats.PendingApproval},
		{models.OrderStatusPreparing, &stats.Preparing},
		{models.OrderStatusCompleted, &stats.Completed},
		{models.OrderStatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		if err := om.DB.Model(&models.Order{}).
			Where("status = ?", c.status).
			Count(c.target).Error; err != nil {
			return nil, err
		}
	}

	today := time.Now().Format("2006-01-02")
	row := om.DB.Model(&models.Order{}).
		Where("status IN ? AND DATE(created_at) = ?",
			[]string{models.OrderStatusPendingApproval, models.OrderStatusPreparing, models.OrderStatusCompleted}, today).
		Select("COALESCE(SUM(total_price + wallet_credit_applied), 0)").
		Row()
	if err := row.Scan(&stats.TodayRevenue); err != nil {
		return nil, err
	}

	// total wallet balance across customers = outstanding liability
	liability := om.DB.Model(&models.Customer{}).
		Select("COALESCE(SUM(wallet_balance), 0)").
		Row()
	if err := liability.Scan(&stats.WalletLiability); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (om *OrderMonitor) pushStats() {
	stats, err := om.CollectStats()
	if err != nil {
		log.Printf("Error collecting dashboard stats: %v", err)
		return
	}
	live.BroadcastDashboardUpdate(stats)
}
