package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"burgerhub-backend/config"
	"burgerhub-backend/database"
	"burgerhub-backend/models"
	"burgerhub-backend/router"
	"burgerhub-backend/services"
	"burgerhub-backend/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	bank := services.GetBankService()
	if err := bank.ValidateConfig(); err != nil {
		utils.ErrorLogger.Printf("Bank gateway config incomplete: %v", err)
	}

	monitor := services.NewOrderMonitor(db)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(db, bank, monitor)
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// sqlite does not support the SIGNAL-based guards
	if config.IsMySQL() {
		if err := database.ExecuteTriggers(db); err != nil {
			utils.ErrorLogger.Printf("Error setting up triggers: %v", err)
		}
	}
}
