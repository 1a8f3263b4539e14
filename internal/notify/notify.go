package notify

import (
	"carlink/backend/internal/database"
	"carlink/backend/internal/hub"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/metrics"
	"carlink/backend/internal/models"

	"github.com/sirupsen/logrus"
)

// NotificationPayload is the JSON body published with a NotificationEvent.
type NotificationPayload struct {
	ID        uint                    `json:"id"`
	UserID    uint                    `json:"user_id"`
	SenderID  uint                    `json:"sender_id"`
	Type      models.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	CreatedAt string                  `json:"created_at"`
}

// MessagePayload is the JSON body published with a NewMessage event.
type MessagePayload struct {
	RecipientID      uint                    `json:"recipient_id"`
	SenderID         uint                    `json:"sender_id"`
	ConversationType models.ConversationType `json:"conversation_type"`
	Message          MessageBody             `json:"message"`
}

// MessageBody is the subset of a message carried on the wire.
type MessageBody struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// Send persists a Notification row and publishes a NotificationEvent on the
// recipient's private channel. The row is committed before the publish, so a
// dropped event can still be recovered from GET /notifications/get.
func Send(recipientID, senderID uint, ntype models.NotificationType, message string) {
	notification := models.Notification{
		UserID:   recipientID,
		SenderID: senderID,
		Type:     ntype,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		logging.Log.WithFields(logrus.Fields{
			"recipient": recipientID,
			"sender":    senderID,
			"type":      ntype,
			"error":     err.Error(),
		}).Error("Failed to persist notification")
		return
	}

	hub.GlobalHub.Publish(recipientID, hub.Event{
		Type: hub.EventNotification,
		Payload: NotificationPayload{
			ID:        notification.ID,
			UserID:    notification.UserID,
			SenderID:  notification.SenderID,
			Type:      notification.Type,
			Message:   message,
			CreatedAt: notification.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	})
	metrics.NotificationsDispatched.WithLabelValues(string(ntype)).Inc()
}

// PushMessage publishes a NewMessage event for a freshly stored chat message
// on the recipient's private channel.
func PushMessage(recipientID, senderID uint, message models.Message, convType models.ConversationType) {
	hub.GlobalHub.Publish(recipientID, hub.Event{
		Type: hub.EventNewMessage,
		Payload: MessagePayload{
			RecipientID:      recipientID,
			SenderID:         senderID,
			ConversationType: convType,
			Message: MessageBody{
				ID:        message.ID,
				UserID:    message.UserID,
				Content:   message.Content,
				Type:      message.Type,
				CreatedAt: message.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			},
		},
	})
}
