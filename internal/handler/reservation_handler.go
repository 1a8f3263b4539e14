package handler

import (
	"net/http"
	"strconv"

	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/models"
	"carlink/backend/internal/notify"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// region --- DTOs ---

// StoreReservationInput defines the body for requesting a seat.
type StoreReservationInput struct {
	Seat int `json:"seat" binding:"required,min=1"`
}

// UpdateReservationInput carries the requested status transition.
// Drivers may set accepted or rejected; the requester may set canceled.
type UpdateReservationInput struct {
	Status models.ReservationStatus `json:"status" binding:"required,oneof=accepted rejected canceled"`
}

// endregion

// StoreReservation godoc
// @Summary      Request a seat on a route
// @Description  Creates a reservation in the requested state and notifies the driver. A user can hold at most one reservation per route.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        route path int true "Route ID"
// @Param        input body StoreReservationInput true "Seat"
// @Success      201  {object}  models.Reservation
// @Failure      404  {object}  ErrorResponse "Route not found"
// @Failure      409  {object}  ErrorResponse "Reservation already exists"
// @Failure      422  {object}  ErrorResponse
// @Router       /reservations/create/{route} [post]
func StoreReservation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	userID := viewerID.(uint)
	routeID64, err := strconv.ParseUint(c.Param("route"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid route ID"})
		return
	}
	routeID := uint(routeID64)

	var input StoreReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var route models.Route
	if err := database.DB.Preload("Driver").First(&route, routeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	var reservation models.Reservation
	// The existence check and the insert run in one transaction so two
	// concurrent requests cannot both pass the check.
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Reservation{}).
			Where("user_id = ? AND route_id = ?", userID, routeID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return gorm.ErrDuplicatedKey
		}

		reservation = models.Reservation{
			UserID:  userID,
			RouteID: routeID,
			Status:  models.ReservationRequested,
			Seat:    input.Seat,
		}
		return tx.Create(&reservation).Error
	})
	if err == gorm.ErrDuplicatedKey {
		c.JSON(http.StatusConflict, gin.H{"message": "Reservation already exists!"})
		return
	}
	if err != nil {
		logging.Log.WithFields(logrus.Fields{"user": userID, "route": routeID, "error": err.Error()}).
			Error("Failed to create reservation")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	var sender models.User
	database.DB.First(&sender, userID)
	notify.Send(route.DriverID, userID, models.NotificationReservationRequested,
		sender.FirstName+" "+sender.LastName+" requested a reservation on your route.")

	c.JSON(http.StatusCreated, gin.H{
		"id":       reservation.ID,
		"user_id":  reservation.UserID,
		"route_id": reservation.RouteID,
		"status":   reservation.Status,
		"seat":     reservation.Seat,
	})
}

// UpdateReservation godoc
// @Summary      Update a reservation's status
// @Description  Transitions are only valid from the requested state. The driver may accept or reject; the requester may cancel. The counterpart is notified of the new state.
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        reservation path int true "Reservation ID"
// @Param        input body UpdateReservationInput true "New status"
// @Success      200  {object}  models.Reservation
// @Failure      403  {object}  ErrorResponse "Not allowed to perform this transition"
// @Failure      404  {object}  ErrorResponse "Reservation not found"
// @Failure      409  {object}  ErrorResponse "Reservation is no longer in the requested state"
// @Failure      422  {object}  ErrorResponse
// @Router       /reservations/update/{reservation} [put]
func UpdateReservation(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	actorID := viewerID.(uint)
	reservationID, err := strconv.ParseUint(c.Param("reservation"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid reservation ID"})
		return
	}

	var input UpdateReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var reservation models.Reservation
	if err := database.DB.Preload("Route").First(&reservation, uint(reservationID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Reservation not found"})
		return
	}

	// All transitions are terminal and only leave the requested state.
	if reservation.Status != models.ReservationRequested {
		c.JSON(http.StatusConflict, gin.H{"message": "Reservation is already " + string(reservation.Status) + "."})
		return
	}

	isDriver := reservation.Route.DriverID == actorID
	isRequester := reservation.UserID == actorID
	switch input.Status {
	case models.ReservationAccepted, models.ReservationRejected:
		if !isDriver {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only the driver can accept or reject a reservation"})
			return
		}
	case models.ReservationCanceled:
		if !isRequester {
			c.JSON(http.StatusForbidden, gin.H{"message": "Only the requester can cancel a reservation"})
			return
		}
	}

	if err := database.DB.Model(&reservation).Update("status", input.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	// Notify the other side of the transition.
	recipientID := reservation.UserID
	if isRequester && !isDriver {
		recipientID = reservation.Route.DriverID
	}
	var actor models.User
	database.DB.First(&actor, actorID)
	notify.Send(recipientID, actorID, reservationNotificationType(input.Status),
		actor.FirstName+" "+actor.LastName+" "+string(input.Status)+" the reservation.")

	c.JSON(http.StatusOK, gin.H{"message": "Reservation " + string(input.Status) + ".", "reservation": reservation})
}

// GetReceivedRequests godoc
// @Summary      List reservation requests on the viewer's routes
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /reservations/received [get]
func GetReceivedRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var reservations []models.Reservation
	if err := database.DB.
		Joins("JOIN routes ON routes.id = reservations.route_id").
		Where("reservations.status = ? AND routes.driver_id = ? AND routes.deleted_at IS NULL", models.ReservationRequested, viewerID).
		Preload("Route").
		Preload("User").
		Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	responses := make([]gin.H, 0, len(reservations))
	for _, r := range reservations {
		responses = append(responses, gin.H{
			"id":     r.ID,
			"status": r.Status,
			"seat":   r.Seat,
			"route":  gin.H{"id": r.RouteID, "datetime": r.Route.Datetime},
			"user":   buildUserProfile(r.User),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservations fetched successfully.", "reservations": responses})
}

// GetSentRequests godoc
// @Summary      List routes the viewer has active reservations on
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /reservations/sent [get]
func GetSentRequests(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var reservations []models.Reservation
	if err := database.DB.
		Where("user_id = ? AND status NOT IN ?", viewerID,
			[]models.ReservationStatus{models.ReservationCanceled, models.ReservationRejected}).
		Preload("Route.Driver").
		Preload("Route.CityFrom").
		Preload("Route.CityTo").
		Preload("Route.Location").
		Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	routes := make([]RouteResponse, 0, len(reservations))
	for _, r := range reservations {
		routes = append(routes, newRouteResponse(r.Route))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservations fetched successfully.", "routes": routes})
}

// GetRouteRequests godoc
// @Summary      List all reservations on a route
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        routeId path int true "Route ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /reservations/route/{routeId} [get]
func GetRouteRequests(c *gin.Context) {
	routeID, err := strconv.ParseUint(c.Param("routeId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid route ID"})
		return
	}

	var reservations []models.Reservation
	if err := database.DB.
		Where("route_id = ?", uint(routeID)).
		Preload("User").
		Find(&reservations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	responses := make([]gin.H, 0, len(reservations))
	for _, r := range reservations {
		responses = append(responses, gin.H{
			"id":     r.ID,
			"status": r.Status,
			"seat":   r.Seat,
			"user":   buildUserProfile(r.User),
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservations fetched successfully.", "reservations": responses})
}

func reservationNotificationType(status models.ReservationStatus) models.NotificationType {
	switch status {
	case models.ReservationAccepted:
		return models.NotificationReservationAccepted
	case models.ReservationRejected:
		return models.NotificationReservationRejected
	case models.ReservationCanceled:
		return models.NotificationReservationCanceled
	default:
		return models.NotificationReservationRequested
	}
}
