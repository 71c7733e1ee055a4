package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"aarambha-backend/middleware"
	"aarambha-backend/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationController serves the user's in-app notifications.
type NotificationController struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func NewNotificationController(notifications repository.NotificationRepository, logger *zap.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, logger: logger}
}

// List handles GET /api/notifications.
func (nc *NotificationController) List(ctx *gin.Context) {
	userID := middleware.GetUserID(ctx)
	page, pageSize := parsePaginationParams(ctx)

	notifications, total, err := nc.notifications.ListByUser(ctx.Request.Context(), userID, page, pageSize)
	if err != nil {
		nc.logger.Error("Failed to list notifications", zap.Uint("user_id", userID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	})
}

// MarkRead handles POST /api/notifications/:id/read.
func (nc *NotificationController) MarkRead(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification id"})
		return
	}

	userID := middleware.GetUserID(ctx)
	if err := nc.notifications.MarkRead(ctx.Request.Context(), uint(id), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		nc.logger.Error("Failed to mark notification read",
			zap.Uint64("notification_id", id), zap.Uint("user_id", userID), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}
