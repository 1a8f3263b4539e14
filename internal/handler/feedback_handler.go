package handler

import (
	"net/http"
	"strconv"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RatingInput defines the body for rating a user.
type RatingInput struct {
	Value   int    `json:"value" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// ReportInput defines the body for reporting a user.
type ReportInput struct {
	ReasonID    uint   `json:"reason_id" binding:"required"`
	Description string `json:"description"`
}

// SuggestionInput defines the body for platform feedback.
type SuggestionInput struct {
	Content string `json:"content" binding:"required"`
}

// endregion

// region --- Ratings ---

// AddRating stores one rating per (rater, target) pair.
func AddRating(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	targetID := uint(targetID64)

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}

	var existing models.Rating
	if err := database.DB.Where("rater_id = ? AND user_id = ?", viewerID, targetID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "You have already rated this user"})
		return
	}

	rating := models.Rating{
		RaterID: viewerID.(uint),
		UserID:  targetID,
		Value:   input.Value,
		Comment: input.Comment,
	}
	if err := database.DB.Create(&rating).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add rating"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Rating added successfully.", "rating": gin.H{
		"id":      rating.ID,
		"value":   rating.Value,
		"comment": rating.Comment,
	}})
}

// UpdateRating changes the viewer's existing rating of a user.
func UpdateRating(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	var input RatingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var rating models.Rating
	if err := database.DB.Where("rater_id = ? AND user_id = ?", viewerID, uint(targetID64)).First(&rating).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Rating not found"})
		return
	}

	rating.Value = input.Value
	rating.Comment = input.Comment
	if err := database.DB.Save(&rating).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update rating"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating updated successfully.", "rating": gin.H{
		"id":      rating.ID,
		"value":   rating.Value,
		"comment": rating.Comment,
	}})
}

// DeleteRating removes the viewer's rating of a user.
func DeleteRating(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	result := database.DB.Where("rater_id = ? AND user_id = ?", viewerID, uint(targetID64)).Delete(&models.Rating{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete rating"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Rating not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating deleted successfully."})
}

// GetRatings lists a user's ratings with rater profiles and the average value.
func GetRatings(c *gin.Context) {
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	var ratings []models.Rating
	if err := database.DB.
		Where("user_id = ?", uint(targetID64)).
		Preload("Rater").
		Order("created_at DESC").
		Find(&ratings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch ratings"})
		return
	}

	var sum int
	responses := make([]gin.H, 0, len(ratings))
	for _, r := range ratings {
		sum += r.Value
		responses = append(responses, gin.H{
			"id":      r.ID,
			"value":   r.Value,
			"comment": r.Comment,
			"rater":   buildUserProfile(r.Rater),
		})
	}

	average := 0.0
	if len(ratings) > 0 {
		average = float64(sum) / float64(len(ratings))
	}

	c.JSON(http.StatusOK, gin.H{"ratings": responses, "average": average})
}

// endregion

// region --- Reports ---

// AddReport flags a user with a catalog reason.
func AddReport(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}
	targetID := uint(targetID64)

	var input ReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	var target models.User
	if err := database.DB.First(&target, targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	var reason models.ReportReason
	if err := database.DB.First(&reason, input.ReasonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Report reason not found"})
		return
	}

	var existing models.Report
	if err := database.DB.Where("reporter_id = ? AND user_id = ?", viewerID, targetID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "You have already reported this user"})
		return
	}

	report := models.Report{
		ReporterID:  viewerID.(uint),
		UserID:      targetID,
		ReasonID:    input.ReasonID,
		Description: input.Description,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add report"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Report added successfully."})
}

// DeleteReport removes the viewer's report of a user.
func DeleteReport(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	targetID64, err := strconv.ParseUint(c.Param("user"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid user ID"})
		return
	}

	result := database.DB.Where("reporter_id = ? AND user_id = ?", viewerID, uint(targetID64)).Delete(&models.Report{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete report"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully."})
}

// GetReportReasons lists the report reason catalog.
func GetReportReasons(c *gin.Context) {
	var reasons []models.ReportReason
	if err := database.DB.Find(&reasons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch report reasons"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reasons": reasons})
}

// endregion

// region --- Suggestions ---

// AddSuggestion stores free-form feedback from the viewer.
func AddSuggestion(c *gin.Context) {
	viewerID, _ := c.Get("userID")

	var input SuggestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	suggestion := models.Suggestion{
		UserID:  viewerID.(uint),
		Content: input.Content,
	}
	if err := database.DB.Create(&suggestion).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to add suggestion"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Suggestion added successfully.", "suggestion": gin.H{
		"id":      suggestion.ID,
		"content": suggestion.Content,
	}})
}

// DeleteSuggestion removes a suggestion the viewer owns.
func DeleteSuggestion(c *gin.Context) {
	viewerID, _ := c.Get("userID")
	suggestionID, err := strconv.ParseUint(c.Param("suggestion"), 10, 32)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid suggestion ID"})
		return
	}

	result := database.DB.Where("id = ? AND user_id = ?", uint(suggestionID), viewerID).Delete(&models.Suggestion{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete suggestion"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Suggestion not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Suggestion deleted successfully."})
}

// GetSuggestions lists all suggestions with their authors.
func GetSuggestions(c *gin.Context) {
	var suggestions []models.Suggestion
	if err := database.DB.Preload("User").Order("created_at DESC").Find(&suggestions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch suggestions"})
		return
	}

	responses := make([]gin.H, 0, len(suggestions))
	for _, s := range suggestions {
		responses = append(responses, gin.H{
			"id":      s.ID,
			"content": s.Content,
			"user":    buildUserProfile(s.User),
		})
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": responses})
}

// endregion
