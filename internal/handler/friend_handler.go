package handler

import (
	"net/http"
	"strconv"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"
	"carlink/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SendFriendRequest creates a pending request toward the target user and
// notifies them.
func SendFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	senderID := viewerID.(uint)
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	targetID := uint(targetID64)

	if senderID == targetID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Cannot send a friend request to yourself"})
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	var existing models.FriendRequest
	if err := database.DB.Where("sender_id = ? AND receiver_id = ?", senderID, targetID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "Friend request already sent or accepted."})
		return
	}

	request := models.FriendRequest{
		SenderID:   senderID,
		ReceiverID: targetID,
		Status:     models.RequestPending,
	}
	if err := database.DB.Create(&request).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to send friend request"})
		return
	}

	var sender models.User
	database.DB.First(&sender, senderID)
	notify.Send(targetID, senderID, models.NotificationFriendRequestSent,
		sender.FirstName+" "+sender.LastName+" sent you a friend request.")

	c.JSON(http.StatusOK, gin.H{"message": "Friend request sent."})
}

// AcceptFriendRequest accepts a pending request from the given user and
// materializes both Friend edges in one transaction.
func AcceptFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	receiverID := viewerID.(uint)
	senderID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	senderID := uint(senderID64)

	var sender models.User
	if err := database.DB.First(&sender, senderID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	var request models.FriendRequest
	err = database.DB.Where("sender_id = ? AND receiver_id = ?", senderID, receiverID).First(&request).Error
	if err != nil || request.Status != models.RequestPending {
		c.JSON(http.StatusNotFound, gin.H{"message": "Friend request not found or already accepted."})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&request).Update("status", models.RequestAccepted).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Friend{UserID: senderID, FriendID: receiverID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Friend{UserID: receiverID, FriendID: senderID}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to accept friend request"})
		return
	}

	var receiver models.User
	database.DB.First(&receiver, receiverID)
	notify.Send(senderID, receiverID, models.NotificationFriendRequestAccepted,
		receiver.FirstName+" "+receiver.LastName+" accepted your friend request.")

	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted."})
}

// DeclineFriendRequest deletes a pending request addressed to the viewer
// and notifies its sender.
func DeclineFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	receiverID := viewerID.(uint)
	senderID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	senderID := uint(senderID64)

	result := database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, receiverID, models.RequestPending).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to decline friend request"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Friend request not found."})
		return
	}

	var receiver models.User
	database.DB.First(&receiver, receiverID)
	notify.Send(senderID, receiverID, models.NotificationFriendRequestDeclined,
		receiver.FirstName+" "+receiver.LastName+" declined your friend request.")

	c.JSON(http.StatusOK, gin.H{"message": "Friend request declined."})
}

// CancelFriendRequest deletes a pending request the viewer sent. Unlike
// decline, no notification is emitted.
func CancelFriendRequest(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	senderID := viewerID.(uint)
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	result := database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", senderID, uint(targetID64), models.RequestPending).
		Delete(&models.FriendRequest{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to cancel friend request"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Friend request not found."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Friend request canceled."})
}

// Unfriend removes both Friend edges and any requests between the pair,
// in one transaction.
func Unfriend(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	userID := viewerID.(uint)
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	targetID := uint(targetID64)

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	}

	var edge models.Friend
	if err := database.DB.Where("user_id = ? AND friend_id = ?", userID, targetID).First(&edge).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "You are not friends with this user."})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ?", userID, targetID).Delete(&models.Friend{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND friend_id = ?", targetID, userID).Delete(&models.Friend{}).Error; err != nil {
			return err
		}
		return tx.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, targetID, targetID, userID).Delete(&models.FriendRequest{}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to unfriend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "You have unfriended the user."})
}

// GetFriends returns the five most recent friends of the given user,
// redacted.
func GetFriends(c *gin.Context) {
	userID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(userID64)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var edges []models.Friend
	if err := database.DB.
		Where("user_id = ?", uint(userID64)).
		Preload("FriendUser").
		Order("created_at DESC").
		Limit(5).
		Find(&edges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch friends"})
		return
	}

	friends := make([]UserProfile, 0, len(edges))
	for _, edge := range edges {
		friends = append(friends, buildUserProfile(edge.FriendUser))
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// GetFriendRequests returns the viewer's pending incoming requests with
// redacted sender profiles.
func GetFriendRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var requests []models.FriendRequest
	if err := database.DB.
		Where("receiver_id = ? AND status = ?", viewerID, models.RequestPending).
		Preload("Sender").
		Find(&requests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch friend requests"})
		return
	}

	responses := make([]gin.H, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, gin.H{
			"id":     r.ID,
			"sender": buildUserProfile(r.Sender),
			"status": r.Status,
		})
	}

	c.JSON(http.StatusOK, gin.H{"requests": responses})
}
