package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap-service/internal/repositories"
)

// NotificationHandler manages the notification endpoints.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// List returns the caller's notifications, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")

	notifications, err := h.notificationRepo.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead flips one notification's read flag.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := c.GetInt("userID")
	if err := h.notificationRepo.MarkRead(c.Request.Context(), notificationID, userID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkAllRead flips every unread notification for the caller in one batch.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("userID")
	if err := h.notificationRepo.MarkAllRead(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark notifications read"})
		return
	}
	c.Status(http.StatusNoContent)
}
