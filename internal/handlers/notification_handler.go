package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mill-ops-api/internal/database"
	"mill-ops-api/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NotificationHandler serves the durable notification records written by the
// fanout path, so users can catch up after reconnecting.
type NotificationHandler struct{}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// GetNotifications handles GET /api/notifications
// Returns the caller's notifications, newest first. Optional query params:
// unread=true to filter, limit (default 50, max 200).
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := database.GetDB().Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

// MarkNotificationRead handles PATCH /api/notifications/:id/read
// Only the owner can mark a notification read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var notification models.Notification
	err := database.GetDB().Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notification"})
		}
		return
	}

	notification.Read = true
	if err := database.GetDB().Model(&notification).Update("read", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	c.JSON(http.StatusOK, notification)
}
