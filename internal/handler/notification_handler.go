package handler

import (
	"net/http"
	"time"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// NotificationResponse is one notification with its sender's redacted
// profile.
type NotificationResponse struct {
	ID        uint                    `json:"id"`
	UserID    uint                    `json:"user_id"`
	SenderID  uint                    `json:"sender_id"`
	Type      models.NotificationType `json:"type"`
	CreatedAt time.Time               `json:"created_at"`
	Sender    UserProfile             `json:"sender"`
}

// GetUserNotifications godoc
// @Summary      List the viewer's notifications
// @Description  Returns every notification for the authenticated user, newest first.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"notifications": [...]}"
// @Router       /notifications/get [get]
func GetUserNotifications(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var notifications []models.Notification
	if err := database.DB.
		Where("user_id = ?", viewerID).
		Preload("Sender").
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch notifications"})
		return
	}

	responses := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		responses = append(responses, NotificationResponse{
			ID:        n.ID,
			UserID:    n.UserID,
			SenderID:  n.SenderID,
			Type:      n.Type,
			CreatedAt: n.CreatedAt,
			Sender:    buildUserProfile(n.Sender),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications fetched successfully", "notifications": responses})
}
