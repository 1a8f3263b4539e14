package models

import (
	"time"

	"gorm.io/gorm"
)

// Route is a ride offered by a driver between two cities.
type Route struct {
	gorm.Model
	DriverID         uint      `gorm:"not null;index"`
	CityFromID       uint      `gorm:"not null;index"`
	CityToID         uint      `gorm:"not null;index"`
	LocationID       uint      `gorm:"not null"`
	Datetime         time.Time `gorm:"not null"`
	PassengersNumber int       `gorm:"not null"`
	Price            float64   `gorm:"not null"`

	Driver   User     `gorm:"foreignKey:DriverID"`
	CityFrom City     `gorm:"foreignKey:CityFromID"`
	CityTo   City     `gorm:"foreignKey:CityToID"`
	Location Location `gorm:"foreignKey:LocationID"`
}

// ReservationStatus is the lifecycle state of a seat reservation.
type ReservationStatus string

const (
	ReservationRequested ReservationStatus = "requested"
	ReservationAccepted  ReservationStatus = "accepted"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCanceled  ReservationStatus = "canceled"
)

// Reservation binds a passenger to a route with a seat and a status.
// An accepted reservation grants membership in the route's group chat.
type Reservation struct {
	gorm.Model
	UserID  uint              `gorm:"not null;index"`
	RouteID uint              `gorm:"not null;index"`
	Status  ReservationStatus `gorm:"type:varchar(20);not null;default:'requested'"`
	Seat    int               `gorm:"not null"`

	User  User  `gorm:"foreignKey:UserID"`
	Route Route `gorm:"foreignKey:RouteID"`
}
