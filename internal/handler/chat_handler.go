package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/metrics"
	"carlink/backend/internal/models"
	"carlink/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// region --- DTOs ---

// SendMessageInput defines the body for sending a chat message.
type SendMessageInput struct {
	Message string `json:"message" binding:"required" example:"hi"`
	Type    string `json:"type" binding:"required" example:"text"`
}

// MessageResponse is one chat message annotated with its sender's
// redacted profile.
type MessageResponse struct {
	ID        uint        `json:"id"`
	Content   string      `json:"content"`
	Type      string      `json:"type"`
	UserID    uint        `json:"user_id"`
	CreatedAt time.Time   `json:"created_at"`
	Sender    UserProfile `json:"sender"`
}

// ConversationSummary is one private conversation with its last message,
// used by the conversation list.
type ConversationSummary struct {
	ID             uint         `json:"id"`
	Sender         UserProfile  `json:"sender"`
	Type           string       `json:"type"`
	UnreadMessages int          `json:"unread_messages"`
	LastMessage    *LastMessage `json:"last_message"`
}

// LastMessage is the most recent message of a conversation.
type LastMessage struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func buildMessageResponses(messages []models.Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, MessageResponse{
			ID:        m.ID,
			Content:   m.Content,
			Type:      m.Type,
			UserID:    m.UserID,
			CreatedAt: m.CreatedAt,
			Sender:    buildUserProfile(m.User),
		})
	}
	return responses
}

// conversationMessages loads a conversation's messages in chronological
// order with their authors preloaded.
func conversationMessages(conversationID uint) ([]models.Message, error) {
	var messages []models.Message
	err := database.DB.
		Joins("JOIN conversation_messages ON conversation_messages.message_id = messages.id").
		Where("conversation_messages.conversation_id = ? AND conversation_messages.deleted_at IS NULL", conversationID).
		Preload("User").
		Order("messages.created_at ASC").
		Find(&messages).Error
	return messages, err
}

// endregion

// SendMessage godoc
// @Summary      Send a private message
// @Description  Sends a message to another user. Both directional conversation rows, the message and its links are created in one transaction; the recipient's unread counter is incremented.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        recipient path int true "Recipient user ID"
// @Param        input body SendMessageInput true "Message"
// @Success      200  {object}  map[string]interface{} "{"message": {...}}"
// @Failure      404  {object}  ErrorResponse "Recipient not found"
// @Failure      422  {object}  ErrorResponse
// @Router       /messages/send/{recipient} [post]
func SendMessage(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	senderID := viewerID.(uint)
	recipientID64, err := strconv.ParseUint(c.Param("recipient"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid recipient ID"})
		return
	}
	recipientID := uint(recipientID64)

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var sender models.User
	if err := database.DB.First(&sender, senderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	var recipient models.User
	if err := database.DB.First(&recipient, recipientID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Recipient not found"})
		return
	}

	var message models.Message
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// One row per direction so each side keeps its own unread counter.
		var outgoing, incoming models.Conversation
		if err := tx.Where(models.Conversation{SenderID: senderID, RecipientID: recipientID, Type: models.ConversationPrivate}).
			FirstOrCreate(&outgoing).Error; err != nil {
			return err
		}
		if err := tx.Where(models.Conversation{SenderID: recipientID, RecipientID: senderID, Type: models.ConversationPrivate}).
			FirstOrCreate(&incoming).Error; err != nil {
			return err
		}

		message = models.Message{
			UserID:  senderID,
			Content: input.Message,
			Type:    input.Type,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}

		if err := tx.Create(&models.ConversationMessage{ConversationID: outgoing.ID, MessageID: message.ID}).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.ConversationMessage{ConversationID: incoming.ID, MessageID: message.ID}).Error; err != nil {
			return err
		}

		// Only the recipient's directional row counts the message as unread.
		return tx.Model(&incoming).UpdateColumn("unread_messages", gorm.Expr("unread_messages + 1")).Error
	})
	if err != nil {
		logging.Log.WithFields(logrus.Fields{
			"sender":    senderID,
			"recipient": recipientID,
			"error":     err.Error(),
		}).Error("Failed to store private message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	// Dispatch after commit, recipient first, then the sender's other devices.
	notify.PushMessage(recipientID, senderID, message, models.ConversationPrivate)
	notify.PushMessage(senderID, recipientID, message, models.ConversationPrivate)
	notify.Send(recipientID, senderID, models.NotificationNewMessage,
		sender.FirstName+" "+sender.LastName+" sent you a message.")
	metrics.MessagesSent.WithLabelValues(string(models.ConversationPrivate)).Inc()

	c.JSON(http.StatusOK, gin.H{"message": LastMessage{
		ID:        message.ID,
		Content:   message.Content,
		Type:      message.Type,
		UserID:    message.UserID,
		CreatedAt: message.CreatedAt,
	}})
}

// GetConversation godoc
// @Summary      Get a conversation's messages
// @Description  For private conversations the recipient is a user ID; for group conversations it is a group ID and the viewer must be the driver or hold an accepted reservation.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        recipient path int true "Counterpart user ID or group ID"
// @Param        type path string true "Conversation type (private or group)"
// @Success      200  {object}  map[string]interface{} "{"messages": [...]}"
// @Failure      403  {object}  ErrorResponse "Not a group member"
// @Router       /messages/get/{recipient}/{type} [get]
func GetConversation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	recipientID64, err := strconv.ParseUint(c.Param("recipient"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid recipient ID"})
		return
	}
	recipientID := uint(recipientID64)
	convType := models.ConversationType(c.Param("type"))

	var conversation models.Conversation
	switch convType {
	case models.ConversationPrivate:
		err = database.DB.
			Where("sender_id = ? AND recipient_id = ? AND type = ?", viewerID, recipientID, models.ConversationPrivate).
			First(&conversation).Error
	case models.ConversationGroup:
		var group models.Group
		if err := database.DB.Preload("Route").First(&group, recipientID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Group not found."})
			return
		}
		if !isGroupMember(group, viewerID.(uint)) {
			c.JSON(http.StatusForbidden, gin.H{"message": "You are not a member of this group"})
			return
		}
		err = database.DB.
			Where("recipient_id = ? AND type = ?", group.ID, models.ConversationGroup).
			First(&conversation).Error
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid conversation type"})
		return
	}

	if err != nil {
		// No conversation yet means no messages, not an error.
		c.JSON(http.StatusOK, gin.H{"messages": []MessageResponse{}, "status": "undefined"})
		return
	}

	messages, err := conversationMessages(conversation.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": buildMessageResponses(messages)})
}

// GetConversationsWithMessages godoc
// @Summary      List private conversations with their last message
// @Description  Returns every private conversation the viewer owns, sorted by last-message time descending; conversations without messages sort last.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{} "{"conversations": [...]}"
// @Router       /messages/get/last [get]
func GetConversationsWithMessages(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var conversations []models.Conversation
	if err := database.DB.
		Where("sender_id = ? AND type = ?", viewerID, models.ConversationPrivate).
		Find(&conversations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch conversations"})
		return
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		var counterpart models.User
		if err := database.DB.First(&counterpart, conv.RecipientID).Error; err != nil {
			continue
		}

		summary := ConversationSummary{
			ID:             conv.ID,
			Sender:         buildUserProfile(counterpart),
			Type:           string(conv.Type),
			UnreadMessages: conv.UnreadMessages,
		}

		var last models.Message
		err := database.DB.
			Joins("JOIN conversation_messages ON conversation_messages.message_id = messages.id").
			Where("conversation_messages.conversation_id = ? AND conversation_messages.deleted_at IS NULL", conv.ID).
			Order("messages.created_at DESC").
			First(&last).Error
		if err == nil {
			summary.LastMessage = &LastMessage{
				ID:        last.ID,
				Content:   last.Content,
				Type:      last.Type,
				UserID:    last.UserID,
				CreatedAt: last.CreatedAt,
			}
		}

		summaries = append(summaries, summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	c.JSON(http.StatusOK, gin.H{"message": "Conversations fetched successfully", "conversations": summaries})
}

// MarkConversationAsRead godoc
// @Summary      Mark a conversation as read
// @Description  Resets the viewer's unread counter to zero. Idempotent.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        recipient path int true "Counterpart user ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/read/{recipient} [put]
func MarkConversationAsRead(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	recipientID, err := strconv.ParseUint(c.Param("recipient"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid recipient ID"})
		return
	}

	var conversation models.Conversation
	if err := database.DB.
		Where("sender_id = ? AND recipient_id = ?", viewerID, uint(recipientID)).
		First(&conversation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Conversation not found"})
		return
	}

	if err := database.DB.Model(&conversation).UpdateColumn("unread_messages", 0).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to mark conversation as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation marked as read"})
}

// DeleteConversation godoc
// @Summary      Delete a conversation
// @Description  Deletes the viewer's directional conversation row and its message links. The counterpart's row is untouched, so this behaves as a per-user hide.
// @Tags         chat
// @Produce      json
// @Security     BearerAuth
// @Param        recipient path int true "Counterpart user ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /messages/delete/{recipient} [delete]
func DeleteConversation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	recipientID, err := strconv.ParseUint(c.Param("recipient"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid recipient ID"})
		return
	}

	var conversation models.Conversation
	if err := database.DB.
		Where("sender_id = ? AND recipient_id = ? AND type = ?", viewerID, uint(recipientID), models.ConversationPrivate).
		First(&conversation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"messages": []MessageResponse{}})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.ConversationMessage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conversation).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
