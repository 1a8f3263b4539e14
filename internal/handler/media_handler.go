package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"carlink/backend/internal/config"
	"carlink/backend/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Folders images may be stored under, keyed by entity type.
var mediaFolders = map[string]bool{
	"users":  true,
	"cars":   true,
	"groups": true,
}

// StoreMedia godoc
// @Summary      Upload an image
// @Description  Stores an image in the public upload area under a folder keyed by entity type and returns its path. If old_path names a previous file in the upload area it is removed first.
// @Tags         media
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData file true "Image file"
// @Param        type formData string true "Entity type (users, cars, groups)"
// @Param        old_path formData string false "Previously stored file to replace"
// @Success      201  {object}  map[string]string "{"path": "..."}"
// @Failure      422  {object}  ErrorResponse
// @Router       /media/store [post]
func StoreMedia(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "An image file is required"})
		return
	}

	entityType := c.PostForm("type")
	if !mediaFolders[entityType] {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid media type"})
		return
	}

	uploadDir := config.AppConfig.UploadDir

	// Replace flows delete the prior file before writing the new one. The
	// old path must stay inside the upload area.
	if oldPath := c.PostForm("old_path"); oldPath != "" {
		cleaned := filepath.Clean(oldPath)
		if strings.HasPrefix(cleaned, uploadDir) {
			if err := os.Remove(cleaned); err != nil && !os.IsNotExist(err) {
				logging.Log.WithFields(logrus.Fields{"path": cleaned, "error": err.Error()}).
					Warn("Failed to remove previous upload")
			}
		}
	}

	ext := filepath.Ext(file.Filename)
	name := uuid.New().String() + ext
	dest := filepath.Join(uploadDir, entityType, name)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store image"})
		return
	}
	if err := c.SaveUploadedFile(file, dest); err != nil {
		logging.Log.WithFields(logrus.Fields{"dest": dest, "error": err.Error()}).Error("Failed to save upload")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to store image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Image stored successfully.", "path": dest})
}
