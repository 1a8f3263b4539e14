package models

import "gorm.io/gorm"

// ConversationType distinguishes directional private rows from the single
// group row owned by a route's driver.
type ConversationType string

const (
	ConversationPrivate ConversationType = "private"
	ConversationGroup   ConversationType = "group"
)

// Group is the chat scope bound 1:1 to a route. Membership is not stored;
// it is derived from the route's accepted reservations plus the driver.
type Group struct {
	gorm.Model
	RouteID      uint   `gorm:"not null;uniqueIndex"`
	GroupPicture string `gorm:"size:512"`

	Route Route `gorm:"foreignKey:RouteID"`
}

// Conversation is one chat channel with its own unread counter.
//
// For private chat two rows exist per user pair, one per direction, so each
// participant keeps their own unread count. For group chat a single row
// exists whose sender is the driver and whose recipient is the group ID.
type Conversation struct {
	gorm.Model
	SenderID       uint             `gorm:"not null;index:idx_conversations_pair"`
	RecipientID    uint             `gorm:"not null;index:idx_conversations_pair"`
	Type           ConversationType `gorm:"type:varchar(20);not null"`
	UnreadMessages int              `gorm:"not null;default:0"`
}

// Message is an immutable chat message.
type Message struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	Content string `gorm:"not null"`
	Type    string `gorm:"size:50;not null"`

	User User `gorm:"foreignKey:UserID"`
}

// ConversationMessage links a message to a conversation. A private message
// is linked to both directional rows of the pair.
type ConversationMessage struct {
	gorm.Model
	ConversationID uint `gorm:"not null;index"`
	MessageID      uint `gorm:"not null;index"`
}

// NotificationType identifies the domain event a notification describes.
type NotificationType string

const (
	NotificationFriendRequestSent     NotificationType = "friendRequestSent"
	NotificationFriendRequestAccepted NotificationType = "friendRequestAccepted"
	NotificationFriendRequestDeclined NotificationType = "friendRequestDeclined"
	NotificationReservationRequested  NotificationType = "routeReservationRequested"
	NotificationReservationAccepted   NotificationType = "routeReservationAccepted"
	NotificationReservationRejected   NotificationType = "routeReservationRejected"
	NotificationReservationCanceled   NotificationType = "routeReservationCanceled"
	NotificationNewMessage            NotificationType = "newMessage"
)

// Notification is an append-only event record for a recipient.
type Notification struct {
	gorm.Model
	UserID   uint             `gorm:"not null;index"`
	SenderID uint             `gorm:"not null"`
	Type     NotificationType `gorm:"size:50;not null"`

	Sender User `gorm:"foreignKey:SenderID"`
}
