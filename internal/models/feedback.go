package models

import "gorm.io/gorm"

// Rating is a score given by one user to another. One row per
// (rater, target) pair.
type Rating struct {
	gorm.Model
	RaterID uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null;index"`
	Value   int    `gorm:"not null"`
	Comment string `gorm:"size:1024"`

	Rater User `gorm:"foreignKey:RaterID"`
}

// ReportReason is a fixed catalog of report categories.
type ReportReason struct {
	gorm.Model
	Name string `gorm:"size:255;unique;not null"`
}

// Report flags a user for review.
type Report struct {
	gorm.Model
	ReporterID  uint   `gorm:"not null;index"`
	UserID      uint   `gorm:"not null;index"`
	ReasonID    uint   `gorm:"not null"`
	Description string `gorm:"size:1024"`

	Reason ReportReason `gorm:"foreignKey:ReasonID"`
}

// Suggestion is free-form platform feedback from a user.
type Suggestion struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index"`
	Content string `gorm:"not null"`

	User User `gorm:"foreignKey:UserID"`
}
