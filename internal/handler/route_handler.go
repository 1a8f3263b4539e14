package handler

import (
	"net/http"
	"strconv"
	"time"

	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// region --- DTOs ---

// AddRouteInput defines the body for publishing a route. The driver is
// always the authenticated user.
type AddRouteInput struct {
	CityFromID       uint    `json:"city_from_id" binding:"required"`
	CityToID         uint    `json:"city_to_id" binding:"required"`
	LocationID       uint    `json:"location_id" binding:"required"`
	Datetime         string  `json:"datetime" binding:"required" example:"2026-09-14 08:30:00"`
	PassengersNumber int     `json:"passengers_number" binding:"required,min=1"`
	Price            float64 `json:"price" binding:"required"`
}

// SearchRoutesInput defines the route search filter.
type SearchRoutesInput struct {
	CityFromID uint   `json:"city_from_id"`
	CityToID   uint   `json:"city_to_id"`
	Date       string `json:"date" example:"2026-09-14"`
}

// RouteResponse is a route with its reference data resolved.
type RouteResponse struct {
	ID               uint        `json:"id"`
	Driver           UserProfile `json:"driver"`
	CityFrom         string      `json:"city_from"`
	CityTo           string      `json:"city_to"`
	Location         string      `json:"location"`
	Datetime         time.Time   `json:"datetime"`
	PassengersNumber int         `json:"passengers_number"`
	Price            float64     `json:"price"`
}

const routeDatetimeLayout = "2006-01-02 15:04:05"

func newRouteResponse(route models.Route) RouteResponse {
	return RouteResponse{
		ID:               route.ID,
		Driver:           buildUserProfile(route.Driver),
		CityFrom:         route.CityFrom.Name,
		CityTo:           route.CityTo.Name,
		Location:         route.Location.Name,
		Datetime:         route.Datetime,
		PassengersNumber: route.PassengersNumber,
		Price:            route.Price,
	}
}

func newRouteResponses(routes []models.Route) []RouteResponse {
	responses := make([]RouteResponse, 0, len(routes))
	for _, route := range routes {
		responses = append(responses, newRouteResponse(route))
	}
	return responses
}

func routePreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Driver").Preload("CityFrom").Preload("CityTo").Preload("Location")
}

// endregion

// AddRoute godoc
// @Summary      Publish a route
// @Description  Creates a route with the authenticated user as driver. The route's group and group conversation are created in the same transaction.
// @Tags         routes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body AddRouteInput true "Route Info"
// @Success      201  {object}  RouteResponse
// @Failure      404  {object}  ErrorResponse "Unknown city or location"
// @Failure      422  {object}  ErrorResponse
// @Router       /routes/add [post]
func AddRoute(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	driverID := viewerID.(uint)

	var input AddRouteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	datetime, err := time.Parse(routeDatetimeLayout, input.Datetime)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid datetime, expected YYYY-MM-DD HH:MM:SS"})
		return
	}

	for _, check := range []struct {
		model interface{}
		id    uint
		name  string
	}{
		{&models.City{}, input.CityFromID, "Origin city"},
		{&models.City{}, input.CityToID, "Destination city"},
		{&models.Location{}, input.LocationID, "Location"},
	} {
		if err := database.DB.First(check.model, check.id).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": check.name + " not found"})
			return
		}
	}

	var route models.Route
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		route = models.Route{
			DriverID:         driverID,
			CityFromID:       input.CityFromID,
			CityToID:         input.CityToID,
			LocationID:       input.LocationID,
			Datetime:         datetime,
			PassengersNumber: input.PassengersNumber,
			Price:            input.Price,
		}
		if err := tx.Create(&route).Error; err != nil {
			return err
		}

		group := models.Group{RouteID: route.ID}
		if err := tx.Create(&group).Error; err != nil {
			return err
		}

		return tx.Create(&models.Conversation{
			SenderID:    driverID,
			RecipientID: group.ID,
			Type:        models.ConversationGroup,
		}).Error
	})
	if err != nil {
		logging.Log.WithFields(logrus.Fields{"driver": driverID, "error": err.Error()}).Error("Failed to create route")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create route"})
		return
	}

	routePreloads(database.DB).First(&route, route.ID)
	c.JSON(http.StatusCreated, newRouteResponse(route))
}

// GetRoutes godoc
// @Summary      List routes
// @Description  Paginated list of published routes, newest first.
// @Tags         routes
// @Produce      json
// @Param        page  query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(6)
// @Success      200  {object}  PaginatedResponse[RouteResponse]
// @Router       /routes/get [get]
func GetRoutes(c *gin.Context) {
	page, limit := pageParams(c, 6)

	query := routePreloads(database.DB.Model(&models.Route{})).Order("datetime ASC")
	response, err := Paginate[models.Route](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newRouteResponses(response.Data), response.Meta.TotalItems, page, limit))
}

// SearchRoutes godoc
// @Summary      Search routes
// @Description  Filters routes by origin city, destination city and day.
// @Tags         routes
// @Accept       json
// @Produce      json
// @Param        input body SearchRoutesInput true "Search filter"
// @Success      200  {array}  RouteResponse
// @Router       /routes/search [post]
func SearchRoutes(c *gin.Context) {
	var input SearchRoutesInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	query := routePreloads(database.DB.Model(&models.Route{}))
	if input.CityFromID != 0 {
		query = query.Where("city_from_id = ?", input.CityFromID)
	}
	if input.CityToID != 0 {
		query = query.Where("city_to_id = ?", input.CityToID)
	}
	if input.Date != "" {
		day, err := time.Parse("2006-01-02", input.Date)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid date, expected YYYY-MM-DD"})
			return
		}
		query = query.Where("datetime >= ? AND datetime < ?", day, day.Add(24*time.Hour))
	}

	var routes []models.Route
	if err := query.Order("datetime ASC").Find(&routes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to search routes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routes": newRouteResponses(routes)})
}

// GetRoute godoc
// @Summary      Get a route by ID
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Route ID"
// @Success      200  {object}  RouteResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /routes/{id} [get]
func GetRoute(c *gin.Context) {
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := routePreloads(database.DB).First(&route, uint(routeID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
		return
	}

	var group models.Group
	var groupID *uint
	if err := database.DB.Where("route_id = ?", route.ID).First(&group).Error; err == nil {
		groupID = &group.ID
	}

	// Seats already claimed by requested or accepted reservations.
	var taken []int
	database.DB.Model(&models.Reservation{}).
		Where("route_id = ? AND status IN ?", route.ID,
			[]models.ReservationStatus{models.ReservationRequested, models.ReservationAccepted}).
		Pluck("seat", &taken)

	c.JSON(http.StatusOK, gin.H{
		"route":       newRouteResponse(route),
		"group_id":    groupID,
		"taken_seats": taken,
	})
}

// GetUserRoutes godoc
// @Summary      List a driver's routes
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Driver user ID"
// @Param        page  query int false "Page number" default(1)
// @Success      200  {object}  PaginatedResponse[RouteResponse]
// @Router       /routes/user/{id} [get]
func GetUserRoutes(c *gin.Context) {
	driverID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	page, limit := pageParams(c, 6)

	query := routePreloads(database.DB.Model(&models.Route{}).Where("driver_id = ?", uint(driverID))).
		Order("datetime ASC")
	response, err := Paginate[models.Route](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch routes"})
		return
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(newRouteResponses(response.Data), response.Meta.TotalItems, page, limit))
}

// DeleteRoute godoc
// @Summary      Delete a route
// @Description  Only the driver or an admin may delete. The route's group, group conversation and reservations are removed in the same transaction.
// @Tags         routes
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Route ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /routes/delete/{id} [delete]
func DeleteRoute(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	routeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid route ID"})
		return
	}

	var route models.Route
	if err := database.DB.First(&route, uint(routeID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
		return
	}

	if !isSelfOrAdmin(viewerID.(uint), route.DriverID) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Only the driver can delete this route"})
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.Where("route_id = ?", route.ID).First(&group).Error; err == nil {
			var conversation models.Conversation
			if err := tx.Where("recipient_id = ? AND type = ?", group.ID, models.ConversationGroup).
				First(&conversation).Error; err == nil {
				if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&models.ConversationMessage{}).Error; err != nil {
					return err
				}
				if err := tx.Delete(&conversation).Error; err != nil {
					return err
				}
			}
			if err := tx.Delete(&group).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("route_id = ?", route.ID).Delete(&models.Reservation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&route).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete route"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Route deleted successfully"})
}

func pageParams(c *gin.Context, defaultLimit int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	return page, limit
}
