package models

import "gorm.io/gorm"

// FriendRequestStatus defines the state of a directed friend request.
type FriendRequestStatus string

const (
	// RequestPending means the request has been sent but not yet accepted.
	RequestPending FriendRequestStatus = "pending"

	// RequestAccepted means the request was accepted and Friend edges exist.
	RequestAccepted FriendRequestStatus = "accepted"
)

// FriendRequest is a directed request from SenderID to ReceiverID.
// At most one row exists per ordered (sender, receiver) pair.
type FriendRequest struct {
	gorm.Model
	SenderID   uint                `gorm:"not null;index:idx_friend_requests_pair"`
	ReceiverID uint                `gorm:"not null;index:idx_friend_requests_pair"`
	Status     FriendRequestStatus `gorm:"type:varchar(20);not null;default:'pending'"`

	Sender   User `gorm:"foreignKey:SenderID"`
	Receiver User `gorm:"foreignKey:ReceiverID"`
}

// Friend is one direction of an accepted friendship. Edges are always
// created and removed in symmetric pairs.
type Friend struct {
	gorm.Model
	UserID   uint `gorm:"not null;index"`
	FriendID uint `gorm:"not null;index"`

	FriendUser User `gorm:"foreignKey:FriendID"`
}
