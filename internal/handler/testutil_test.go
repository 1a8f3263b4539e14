package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carlink/backend/internal/config"
	"carlink/backend/internal/database"
	"carlink/backend/internal/logging"
	"carlink/backend/internal/models"
	"carlink/backend/pkg/jwt"
)

// setupTest wires a fresh in-memory database and a router with the full
// API mounted. Tables are wiped so tests do not bleed into each other.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{
		JWTSecret: "test-secret",
		UploadDir: t.TempDir(),
		LogLevel:  "error",
	}
	logging.Init("error")

	if database.DB == nil {
		database.ConnectSQLite()
	}
	wipeTables(t)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"))
	return router
}

func wipeTables(t *testing.T) {
	t.Helper()

	tables := []interface{}{
		&models.ConversationMessage{},
		&models.Message{},
		&models.Conversation{},
		&models.Group{},
		&models.Notification{},
		&models.Reservation{},
		&models.Route{},
		&models.Location{},
		&models.City{},
		&models.Friend{},
		&models.FriendRequest{},
		&models.Rating{},
		&models.Report{},
		&models.ReportReason{},
		&models.Suggestion{},
		&models.UserCar{},
		&models.Car{},
		&models.Ban{},
		&models.User{},
	}
	for _, table := range tables {
		err := database.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error
		require.NoError(t, err)
	}
}

func createUser(t *testing.T, firstName, lastName, email string) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         "passenger",
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return user
}

func createAdmin(t *testing.T, email string) models.User {
	t.Helper()

	user := createUser(t, "Admin", "User", email)
	require.NoError(t, database.DB.Model(&user).Update("role", "admin").Error)
	user.Role = "admin"
	return user
}

func authToken(t *testing.T, userID uint) string {
	t.Helper()

	token, err := jwt.GenerateToken(userID)
	require.NoError(t, err)
	return token
}

// doJSON performs a request against the test router, marshalling body as
// JSON when present and attaching the bearer token when non-empty.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

// seedGeo inserts two cities and a meeting location in the first one.
func seedGeo(t *testing.T) (models.City, models.City, models.Location) {
	t.Helper()

	from := models.City{Name: "Cluj-Napoca"}
	to := models.City{Name: "Bucharest"}
	require.NoError(t, database.DB.Create(&from).Error)
	require.NoError(t, database.DB.Create(&to).Error)

	location := models.Location{CityID: from.ID, Name: "Central Station"}
	require.NoError(t, database.DB.Create(&location).Error)
	return from, to, location
}

// createRoute drives the add-route endpoint as the given driver and
// returns the stored route together with its chat group.
func createRoute(t *testing.T, router *gin.Engine, driver models.User) (models.Route, models.Group) {
	t.Helper()

	from, to, location := seedGeo(t)
	input := AddRouteInput{
		CityFromID:       from.ID,
		CityToID:         to.ID,
		LocationID:       location.ID,
		Datetime:         time.Now().Add(48 * time.Hour).Format("2006-01-02 15:04:05"),
		PassengersNumber: 3,
		Price:            50,
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/routes/add", input, authToken(t, driver.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var route models.Route
	require.NoError(t, database.DB.Where("driver_id = ?", driver.ID).Order("id DESC").First(&route).Error)

	var group models.Group
	require.NoError(t, database.DB.Where("route_id = ?", route.ID).First(&group).Error)
	return route, group
}

func createReservation(t *testing.T, router *gin.Engine, user models.User, routeID uint, seat int) models.Reservation {
	t.Helper()

	input := StoreReservationInput{Seat: seat}
	path := fmt.Sprintf("/api/v1/reservations/create/%d", routeID)
	w := doJSON(t, router, http.MethodPost, path, input, authToken(t, user.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reservation models.Reservation
	require.NoError(t, database.DB.Where("user_id = ? AND route_id = ?", user.ID, routeID).First(&reservation).Error)
	return reservation
}
