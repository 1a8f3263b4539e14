package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/models"
	"carlink/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// region --- DTOs ---

// SignupInput defines the structure for user registration.
type SignupInput struct {
	FirstName string `json:"first_name" binding:"required" example:"Jane"`
	LastName  string `json:"last_name" binding:"required" example:"Doe"`
	Role      string `json:"role" binding:"omitempty,oneof=passenger driver" example:"driver"`
	Email     string `json:"email" binding:"required,email" example:"jane@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"password123"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateUserInput defines the mutable profile fields.
type UpdateUserInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	ProfilePicture string `json:"profile_picture"`
}

// BanInput defines the ban duration for a user.
type BanInput struct {
	Days int `json:"days" binding:"required,min=1" example:"7"`
}

// AttachCarInput binds a catalog car to the authenticated driver.
type AttachCarInput struct {
	CarID uint   `json:"car_id" binding:"required"`
	Color string `json:"color"`
	Plate string `json:"plate"`
}

// UserProfile is the redacted public view of a user. The password hash and
// email are never included.
type UserProfile struct {
	UserID         uint   `json:"user_id" example:"1"`
	FirstName      string `json:"first_name" example:"Jane"`
	LastName       string `json:"last_name" example:"Doe"`
	Role           string `json:"role" example:"driver"`
	ProfilePicture string `json:"profile_picture"`
}

// PrivateUserResponse is the authenticated user's own profile.
type PrivateUserResponse struct {
	UserID         uint   `json:"user_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Message string `json:"message" example:"An error message"`
}

func buildUserProfile(user models.User) UserProfile {
	return UserProfile{
		UserID:         user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Role:           user.Role,
		ProfilePicture: user.ProfilePicture,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	return PrivateUserResponse{
		UserID:         user.ID,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Email:          user.Email,
		Role:           user.Role,
		ProfilePicture: user.ProfilePicture,
	}
}

// endregion

// region --- Auth Handlers ---

// Signup godoc
// @Summary      Sign up a new user
// @Description  Creates a new user and returns an authentication token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body SignupInput true "Signup Info"
// @Success      201  {object}  map[string]interface{} "{"message": "...", "user": {...}, "token": "..."}"
// @Failure      409  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /signup [post]
func Signup(c *gin.Context) {
	var input SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "A user with this email already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
		return
	}

	role := input.Role
	if role == "" {
		role = "passenger"
	}

	user := models.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		logging.Log.WithFields(logrus.Fields{"email": input.Email, "error": err.Error()}).Error("Failed to create user")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully.",
		"user":    buildPrivateUserResponse(user),
		"token":   token,
	})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password. Banned users are rejected with the remaining ban time.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]interface{} "{"message": "...", "token": "...", "user": {...}}"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      403  {object}  ErrorResponse "User is banned"
// @Failure      422  {object}  ErrorResponse
// @Router       /login [post]
func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials!"})
		return
	}

	var ban models.Ban
	err := database.DB.Where("user_id = ? AND date_until > ?", user.ID, time.Now()).First(&ban).Error
	if err == nil {
		remainingHours := math.Round(time.Until(ban.DateUntil).Hours()*100) / 100
		remainingDays := int(math.Ceil(remainingHours / 24))
		if remainingDays <= 1 {
			c.JSON(http.StatusForbidden, gin.H{"message": "User is banned!", "remaining_hours": remainingHours})
		} else {
			c.JSON(http.StatusForbidden, gin.H{"message": "User is banned!", "remaining_days": remainingDays})
		}
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred."})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login was successful.",
		"token":   token,
		"user":    buildPrivateUserResponse(user),
	})
}

// endregion

// region --- User Handlers ---

// GetUserByToken godoc
// @Summary      Get current user's info
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/getByToken [get]
func GetUserByToken(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var user models.User
	if err := database.DB.First(&user, viewerID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// GetAllUsers godoc
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  UserProfile
// @Router       /users/get [get]
func GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := database.DB.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to retrieve users"})
		return
	}

	responses := make([]gin.H, 0, len(users))
	for _, user := range users {
		var ban models.Ban
		banned := database.DB.Where("user_id = ? AND date_until > ?", user.ID, time.Now()).First(&ban).Error == nil
		responses = append(responses, gin.H{
			"user":   buildUserProfile(user),
			"banned": banned,
		})
	}

	c.JSON(http.StatusOK, gin.H{"users": responses})
}

// SearchUsers godoc
// @Summary      Search users by name
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        name path string true "Name fragment"
// @Success      200  {array}  UserProfile
// @Router       /users/search/{name} [get]
func SearchUsers(c *gin.Context) {
	name := c.Param("name")

	var users []models.User
	pattern := "%" + name + "%"
	if err := database.DB.
		Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern).
		Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to search users"})
		return
	}

	responses := make([]UserProfile, 0, len(users))
	for _, user := range users {
		responses = append(responses, buildUserProfile(user))
	}

	c.JSON(http.StatusOK, gin.H{"users": responses})
}

// GetUser godoc
// @Summary      Get user by ID
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  UserProfile
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func GetUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(userID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": buildUserProfile(user)})
}

// UpdateUser godoc
// @Summary      Update a user profile
// @Description  Updates profile fields. Users can update themselves; admins can update anyone.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Param        input body UpdateUserInput true "Profile fields"
// @Success      200  {object}  UserProfile
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/update/{userId} [put]
func UpdateUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	if !isSelfOrAdmin(viewerID.(uint), uint(targetID)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot update this user"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(targetID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	if input.FirstName != "" {
		user.FirstName = input.FirstName
	}
	if input.LastName != "" {
		user.LastName = input.LastName
	}
	if input.ProfilePicture != "" {
		user.ProfilePicture = input.ProfilePicture
	}

	if err := database.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully.", "user": buildUserProfile(user)})
}

// DeleteUser godoc
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/delete/{userId} [delete]
func DeleteUser(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	if !isSelfOrAdmin(viewerID.(uint), uint(targetID)) {
		c.JSON(http.StatusForbidden, gin.H{"message": "You cannot delete this user"})
		return
	}

	result := database.DB.Delete(&models.User{}, uint(targetID))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

// BanUser godoc
// @Summary      Ban a user (admin only)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Param        input body BanInput true "Ban duration"
// @Success      201  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /users/ban/{userId} [post]
func BanUser(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	var input BanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, uint(targetID)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	ban := models.Ban{
		UserID:    user.ID,
		DateUntil: time.Now().Add(time.Duration(input.Days) * 24 * time.Hour),
	}
	if err := database.DB.Create(&ban).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to ban user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User banned successfully."})
}

// RemoveBan godoc
// @Summary      Lift a user's ban (admin only)
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        userId path int true "User ID"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /users/ban/remove/{userId} [delete]
func RemoveBan(c *gin.Context) {
	targetID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	result := database.DB.Where("user_id = ?", uint(targetID)).Delete(&models.Ban{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to remove ban"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ban not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ban removed successfully."})
}

// AttachCar godoc
// @Summary      Attach a car to the authenticated user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body AttachCarInput true "Car attachment"
// @Success      201  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /users/car/attach [post]
func AttachCar(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input AttachCarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var car models.Car
	if err := database.DB.First(&car, input.CarID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Car not found"})
		return
	}

	var existing models.UserCar
	if err := database.DB.Where("user_id = ?", viewerID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "User already has a car attached"})
		return
	}

	userCar := models.UserCar{
		UserID: viewerID.(uint),
		CarID:  input.CarID,
		Color:  input.Color,
		Plate:  input.Plate,
	}
	if err := database.DB.Create(&userCar).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to attach car"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Car attached successfully."})
}

// UpdateAttachedCar godoc
// @Summary      Update the authenticated user's attached car
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body AttachCarInput true "Car attachment"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  ErrorResponse
// @Router       /users/car/update [put]
func UpdateAttachedCar(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input AttachCarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var userCar models.UserCar
	if err := database.DB.Where("user_id = ?", viewerID).First(&userCar).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No attached car found"})
		return
	}

	userCar.CarID = input.CarID
	userCar.Color = input.Color
	userCar.Plate = input.Plate
	if err := database.DB.Save(&userCar).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update attached car"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Attached car updated successfully."})
}

func isSelfOrAdmin(viewerID, targetID uint) bool {
	if viewerID == targetID {
		return true
	}
	var viewer models.User
	if err := database.DB.First(&viewer, viewerID).Error; err != nil {
		return false
	}
	return viewer.Role == "admin"
}

// endregion
