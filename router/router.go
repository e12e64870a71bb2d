package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/controllers"
	"burgerhub-backend/middlewares"
	"burgerhub-backend/services"
)

// SetupRouter wires the HTTP surface. Bank and monitor are injected so
// tests can swap in httptest-backed instances.
func SetupRouter(db *gorm.DB, bank *services.BankService, monitor *services.OrderMonitor) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	limiter := middlewares.NewRateLimiter(120, 60)
	r.Use(limiter.RateLimit())

	ledger := services.NewLedgerService(db)
	rewards := services.NewRewardsService(db, ledger)
	reconcile := services.NewReconcileService(db, ledger, rewards)
	checkout := services.NewCheckoutService(db, ledger, bank, reconcile)

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerController(db)
	catalogCtrl := controllers.NewCatalogController(db)
	orderCtrl := controllers.NewOrderController(db, checkout, ledger, rewards)
	paymentCtrl := controllers.NewPaymentController(db, reconcile)
	walletCtrl := controllers.NewWalletController(db, ledger, bank)
	promoCtrl := controllers.NewPromoController(db, checkout)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db, monitor, ledger)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter for auth endpoints
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
		public.POST("/customers/register", customerCtrl.Register)
	}

	// Catalog browsing
	r.GET("/menus", catalogCtrl.GetAllMenus)
	r.GET("/menus/:menu_id", catalogCtrl.GetMenuByID)
	r.GET("/add-ons", catalogCtrl.GetAddOns)
	r.GET("/buns", catalogCtrl.GetBuns)

	r.POST("/promos/validate", promoCtrl.ValidatePromo)

	// Checkout works for guests and logged-in customers alike
	checkoutGroup := r.Group("/")
	checkoutGroup.Use(middlewares.OptionalAuthMiddleware())
	{
		checkoutGroup.POST("/orders", orderCtrl.PlaceOrder)
		checkoutGroup.POST("/orders/:order_id/retry-payment", orderCtrl.RetryPayment)
	}

	// Bank callback, signature checked before the handler sees the body
	callback := r.Group("/payments")
	callback.Use(middlewares.CallbackSignatureMiddleware(bank))
	{
		callback.POST("/callback", paymentCtrl.HandleBankCallback)
	}

	// Browser landing pages after checkout redirect
	r.GET("/payments/status", paymentCtrl.PaymentStatus)

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	customer := r.Group("/me")
	customer.Use(middlewares.CustomerAuthMiddleware())
	{
		customer.GET("/profile", customerCtrl.GetProfile)
		customer.GET("/orders", orderCtrl.GetMyOrders)
		customer.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		customer.GET("/wallet", walletCtrl.GetMyWallet)
		customer.POST("/wallet/topup", walletCtrl.TopupWallet)
		customer.POST("/invites", customerCtrl.CreateInvite)
	}

	// ----------------------------------------------------------------
	//                      STAFF / ADMIN ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware(), middlewares.RequireRole("staff"))
	{
		auth.GET("/profile", userCtrl.GetProfile)

		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		auth.POST("/orders/:order_id/approve", orderCtrl.ApproveOrder)
		auth.POST("/orders/:order_id/complete", orderCtrl.CompleteOrder)
		auth.POST("/orders/:order_id/reject", orderCtrl.RejectOrder)
		auth.POST("/orders/:order_id/cashback", orderCtrl.AwardCashback)

		auth.POST("/menus", catalogCtrl.CreateMenu)
		auth.PATCH("/menus/:menu_id", catalogCtrl.UpdateMenu)
		auth.DELETE("/menus/:menu_id", catalogCtrl.DeleteMenu)

		auth.GET("/promos", promoCtrl.GetAllPromos)
		auth.POST("/promos", promoCtrl.CreatePromo)
		auth.PATCH("/promos/:promo_id", promoCtrl.UpdatePromo)

		auth.GET("/customers", adminCtrl.GetAllCustomers)
		auth.POST("/customers/:customer_id/points", adminCtrl.AwardCustomerPoints)

		auth.GET("/notifications", notificationCtrl.GetNotifications)
		auth.PATCH("/notifications/:notification_id/read", notificationCtrl.MarkNotificationRead)
		auth.PATCH("/notifications/read-all", notificationCtrl.MarkAllNotificationsRead)

		auth.GET("/dashboard/stats", adminCtrl.GetDashboardStats)
	}

	// WebSocket endpoint, token comes in via query param
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/dashboard", controllers.LiveDashboardHandler)
	}

	return r
}
