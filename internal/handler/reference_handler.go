package handler

import (
	"net/http"
	"strconv"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CityInput defines the body for creating or renaming a city.
type CityInput struct {
	Name string `json:"name" binding:"required" example:"Cluj-Napoca"`
}

// LocationInput defines the body for creating or updating a pickup point.
type LocationInput struct {
	CityID uint   `json:"city_id" binding:"required"`
	Name   string `json:"name" binding:"required" example:"Main Station"`
}

// CarInput defines the body for a catalog car.
type CarInput struct {
	Brand   string `json:"brand" binding:"required" example:"Dacia"`
	Name    string `json:"name" binding:"required" example:"Logan"`
	Picture string `json:"picture"`
}

// endregion

// region --- Cities ---

// GetAllCities godoc
// @Summary      List cities
// @Tags         reference
// @Produce      json
// @Success      200  {array}  models.City
// @Router       /cities/get [get]
func GetAllCities(c *gin.Context) {
	var cities []models.City
	if err := database.DB.Order("name ASC").Find(&cities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch cities"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// StoreCity godoc
// @Summary      Create a city
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CityInput true "City"
// @Success      201  {object}  models.City
// @Failure      409  {object}  ErrorResponse
// @Router       /cities/store [post]
func StoreCity(c *gin.Context) {
	var input CityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var existing models.City
	if err := database.DB.Where("name = ?", input.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "City already exists"})
		return
	}

	city := models.City{Name: input.Name}
	if err := database.DB.Create(&city).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create city"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "City created successfully.", "city": city})
}

// UpdateCity renames a city.
func UpdateCity(c *gin.Context) {
	cityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid city ID"})
		return
	}

	var input CityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var city models.City
	if err := database.DB.First(&city, uint(cityID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "City not found"})
		return
	}

	city.Name = input.Name
	if err := database.DB.Save(&city).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update city"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "City updated successfully.", "city": city})
}

// DeleteCity removes a city from the catalog.
func DeleteCity(c *gin.Context) {
	cityID, err := strconv.ParseUint(c.Param("cityId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid city ID"})
		return
	}

	result := database.DB.Delete(&models.City{}, uint(cityID))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete city"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "City not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "City deleted successfully."})
}

// GetCity returns one city by ID.
func GetCity(c *gin.Context) {
	cityID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid city ID"})
		return
	}

	var city models.City
	if err := database.DB.First(&city, uint(cityID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "City not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}

// endregion

// region --- Locations ---

// GetAllLocations lists the pickup points of a city.
func GetAllLocations(c *gin.Context) {
	cityID, err := strconv.ParseUint(c.Param("cityId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid city ID"})
		return
	}

	var locations []models.Location
	if err := database.DB.Where("city_id = ?", uint(cityID)).Order("name ASC").Find(&locations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch locations"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}

// StoreLocation creates a pickup point inside a city.
func StoreLocation(c *gin.Context) {
	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var city models.City
	if err := database.DB.First(&city, input.CityID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "City not found"})
		return
	}

	location := models.Location{CityID: input.CityID, Name: input.Name}
	if err := database.DB.Create(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create location"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Location created successfully.", "location": location})
}

// UpdateLocation updates a pickup point.
func UpdateLocation(c *gin.Context) {
	locationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid location ID"})
		return
	}

	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var location models.Location
	if err := database.DB.First(&location, uint(locationID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Location not found"})
		return
	}

	location.CityID = input.CityID
	location.Name = input.Name
	if err := database.DB.Save(&location).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location updated successfully.", "location": location})
}

// DeleteLocation removes a pickup point.
func DeleteLocation(c *gin.Context) {
	locationID, err := strconv.ParseUint(c.Param("locationId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid location ID"})
		return
	}

	result := database.DB.Delete(&models.Location{}, uint(locationID))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete location"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Location not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Location deleted successfully."})
}

// endregion

// region --- Cars ---

// GetAllCars lists the car catalog.
func GetAllCars(c *gin.Context) {
	var cars []models.Car
	if err := database.DB.Order("brand ASC, name ASC").Find(&cars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch cars"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cars": cars})
}

// StoreCar adds a car to the catalog.
func StoreCar(c *gin.Context) {
	var input CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	car := models.Car{Brand: input.Brand, Name: input.Name, Picture: input.Picture}
	if err := database.DB.Create(&car).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create car"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Car created successfully.", "car": car})
}

// UpdateCar updates a catalog car.
func UpdateCar(c *gin.Context) {
	carID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid car ID"})
		return
	}

	var input CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var car models.Car
	if err := database.DB.First(&car, uint(carID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Car not found"})
		return
	}

	car.Brand = input.Brand
	car.Name = input.Name
	if input.Picture != "" {
		car.Picture = input.Picture
	}
	if err := database.DB.Save(&car).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update car"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Car updated successfully.", "car": car})
}

// DeleteCar removes a catalog car.
func DeleteCar(c *gin.Context) {
	carID, err := strconv.ParseUint(c.Param("carId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid car ID"})
		return
	}

	result := database.DB.Delete(&models.Car{}, uint(carID))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete car"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Car not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Car deleted successfully."})
}

// endregion
