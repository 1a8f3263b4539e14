package models

import "gorm.io/gorm"

// City is a reference-data row used by routes and locations.
type City struct {
	gorm.Model
	Name string `gorm:"size:255;unique;not null"`
}

// Location is a pickup point inside a city.
type Location struct {
	gorm.Model
	CityID uint   `gorm:"not null;index"`
	Name   string `gorm:"size:255;not null"`

	City City `gorm:"foreignKey:CityID"`
}

// Car is a catalog entry for a vehicle model.
type Car struct {
	gorm.Model
	Brand   string `gorm:"size:255;not null"`
	Name    string `gorm:"size:255;not null"`
	Picture string `gorm:"size:512"`
}

// UserCar attaches a catalog car to a driver with their own plate and color.
type UserCar struct {
	gorm.Model
	UserID uint   `gorm:"not null;index"`
	CarID  uint   `gorm:"not null"`
	Color  string `gorm:"size:50"`
	Plate  string `gorm:"size:50"`

	User User `gorm:"foreignKey:UserID"`
	Car  Car  `gorm:"foreignKey:CarID"`
}
