package handler

import (
	"net/http"
	"strconv"

	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/metrics"
	"carlink/backend/internal/models"
	"carlink/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// StoreGroupInput defines the body for creating a group explicitly.
type StoreGroupInput struct {
	RouteID uint `json:"route_id" binding:"required"`
}

// isGroupMember reports whether a user may read and post in a route's
// group: the driver, or anyone holding an accepted reservation.
func isGroupMember(group models.Group, userID uint) bool {
	if group.Route.DriverID == userID {
		return true
	}
	var count int64
	database.DB.Model(&models.Reservation{}).
		Where("route_id = ? AND user_id = ? AND status = ?", group.RouteID, userID, models.ReservationAccepted).
		Count(&count)
	return count > 0
}

// acceptedReservations returns a route's accepted reservations with their
// users preloaded, in reservation order.
func acceptedReservations(routeID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := database.DB.
		Where("route_id = ? AND status = ?", routeID, models.ReservationAccepted).
		Preload("User").
		Order("id ASC").
		Find(&reservations).Error
	return reservations, err
}

// StoreGroup godoc
// @Summary      Create a group for a route
// @Description  Creates the group and its conversation for an existing route. Normally this happens automatically when the route is created.
// @Tags         group-chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body StoreGroupInput true "Route"
// @Success      201  {object}  map[string]interface{} "{"message": "...", "group_details": {...}}"
// @Failure      404  {object}  ErrorResponse "Route not found"
// @Failure      409  {object}  ErrorResponse "Group already exists"
// @Router       /messages/group/store [post]
func StoreGroup(c *gin.Context) {
	var input StoreGroupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var route models.Route
	if err := database.DB.First(&route, input.RouteID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	var existing models.Group
	if err := database.DB.Where("route_id = ?", route.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Group already exists for this route"})
		return
	}

	var group models.Group
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		group = models.Group{RouteID: route.ID}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}
		// The group conversation is owned by the route's driver.
		return tx.Create(&models.Conversation{
			SenderID:    route.DriverID,
			RecipientID: group.ID,
			Type:        models.ConversationGroup,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Group created successfully", "group_details": gin.H{
		"id":       group.ID,
		"route_id": group.RouteID,
	}})
}

// RetrieveAllGroupMembers godoc
// @Summary      List a group's members
// @Description  Membership is derived on every call: the owner is the route's driver and the members are the users with accepted reservations. The viewer must belong to the group.
// @Tags         group-chat
// @Produce      json
// @Security     BearerAuth
// @Param        group path int true "Group ID"
// @Success      200  {object}  map[string]interface{} "{"owner": {...}, "members": [...]}"
// @Failure      403  {object}  ErrorResponse "Not a group member"
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /members/get/{group} [get]
func RetrieveAllGroupMembers(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	groupID, err := strconv.ParseUint(c.Param("group"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := database.DB.Preload("Route.Driver").First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Group not found."})
		return
	}

	reservations, err := acceptedReservations(group.RouteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch members"})
		return
	}

	isMember := group.Route.DriverID == viewerID.(uint)
	members := make([]UserProfile, 0, len(reservations))
	for _, r := range reservations {
		if r.UserID == viewerID.(uint) {
			isMember = true
		}
		members = append(members, buildUserProfile(r.User))
	}

	if !isMember {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not a member of this group."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Members fetched successfully",
		"owner":   buildUserProfile(group.Route.Driver),
		"members": members,
	})
}

// SendMessageToGroup godoc
// @Summary      Send a message to a group
// @Description  The sender must be the route's driver or hold an accepted reservation. The message is attached to the group's single conversation and every other member is notified, driver first.
// @Tags         group-chat
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        group path int true "Group ID"
// @Param        input body SendMessageInput true "Message"
// @Success      200  {object}  map[string]interface{} "{"message": {...}}"
// @Failure      403  {object}  ErrorResponse "Not a group member"
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /messages/group/send/{group} [post]
func SendMessageToGroup(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	senderID := viewerID.(uint)
	groupID, err := strconv.ParseUint(c.Param("group"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid group ID"})
		return
	}

	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var group models.Group
	if err := database.DB.Preload("Route.Driver").First(&group, uint(groupID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Group not found."})
		return
	}

	if !isGroupMember(group, senderID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You are not a member of this group"})
		return
	}

	var conversation models.Conversation
	if err := database.DB.
		Where("sender_id = ? AND recipient_id = ? AND type = ?", group.Route.DriverID, group.ID, models.ConversationGroup).
		First(&conversation).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Group conversation not found."})
		return
	}

	var sender models.User
	if err := database.DB.First(&sender, senderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var message models.Message
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		message = models.Message{
			UserID:  senderID,
			Content: input.Message,
			Type:    input.Type,
		}
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Create(&models.ConversationMessage{ConversationID: conversation.ID, MessageID: message.ID}).Error
	})
	if err != nil {
		logging.Log.WithFields(logrus.Fields{
			"sender": senderID,
			"group":  group.ID,
			"error":  err.Error(),
		}).Error("Failed to store group message")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	reservations, err := acceptedReservations(group.RouteID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	// Fan out after commit in a fixed order: the driver first, then the
	// accepted-reservation holders, skipping the sender.
	senderName := sender.FirstName + " " + sender.LastName
	if group.Route.DriverID != senderID {
		notify.PushMessage(group.Route.DriverID, senderID, message, models.ConversationGroup)
		notify.Send(group.Route.DriverID, senderID, models.NotificationNewMessage,
			senderName+" sent a message to the group.")
	}
	for _, r := range reservations {
		if r.UserID == senderID {
			continue
		}
		notify.PushMessage(r.UserID, senderID, message, models.ConversationGroup)
		notify.Send(r.UserID, senderID, models.NotificationNewMessage,
			senderName+" sent a message to the group.")
	}
	metrics.MessagesSent.WithLabelValues(string(models.ConversationGroup)).Inc()

	c.JSON(http.StatusOK, gin.H{"message": LastMessage{
		ID:        message.ID,
		Content:   message.Content,
		Type:      message.Type,
		UserID:    message.UserID,
		CreatedAt: message.CreatedAt,
	}})
}
