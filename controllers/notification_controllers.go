package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"burgerhub-backend/models"
	"burgerhub-backend/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetNotifications -> newest first, ?unread=true filters to unread only
func (nc *NotificationController) GetNotifications(c *gin.Context) {
	var notifications []models.Notification
	query := nc.DB.Order("created_at DESC").Limit(100)

	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	if err := query.Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifications)
}

// MarkNotificationRead
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	idStr := c.Param("notification_id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		respondServiceError(c, utils.Validation("invalid notification id"))
		return
	}

	result := nc.DB.Model(&models.Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		respondServiceError(c, utils.ErrNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"notification_id": id})
}

// MarkAllNotificationsRead
func (nc *NotificationController) MarkAllNotificationsRead(c *gin.Context) {
	if err := nc.DB.Model(&models.Notification{}).
		Where("read = ?", false).
		Update("read", true).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications marked as read", nil)
}
