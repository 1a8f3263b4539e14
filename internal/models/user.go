package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user in the system.
type User struct {
	gorm.Model
	FirstName      string `gorm:"size:255;not null"`
	LastName       string `gorm:"size:255;not null"`
	Email          string `gorm:"size:255;unique;not null"`
	PasswordHash   string `gorm:"size:255;not null"`
	Role           string `gorm:"size:50;not null;default:'passenger';index"`
	ProfilePicture string `gorm:"size:512"`
}

// Ban blocks a user from logging in until DateUntil has passed.
type Ban struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index"`
	DateUntil time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}
