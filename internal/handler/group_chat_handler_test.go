package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"
)

func acceptReservation(t *testing.T, router *gin.Engine, driver models.User, reservationID uint) {
	t.Helper()

	path := fmt.Sprintf("/api/v1/reservations/update/%d", reservationID)
	w := doJSON(t, router, http.MethodPut, path,
		UpdateReservationInput{Status: models.ReservationAccepted}, authToken(t, driver.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouteCreationBuildsGroupAndConversation(t *testing.T) {
	router := setupTest(t)
	driver := createUser(t, "Dana", "Driver", "dana@example.com")

	route, group := createRoute(t, router, driver)
	assert.Equal(t, route.ID, group.RouteID)

	var conversation models.Conversation
	require.NoError(t, database.DB.
		Where("recipient_id = ? AND type = ?", group.ID, models.ConversationGroup).
		First(&conversation).Error)
	assert.Equal(t, driver.ID, conversation.SenderID)
}

func TestStoreGroupConflictsWithExisting(t *testing.T) {
	router := setupTest(t)
	driver := createUser(t, "Dana", "Driver", "dana@example.com")
	route, _ := createRoute(t, router, driver)

	w := doJSON(t, router, http.MethodPost, "/api/v1/messages/group/store",
		StoreGroupInput{RouteID: route.ID}, authToken(t, driver.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/messages/group/store",
		StoreGroupInput{RouteID: 999999}, authToken(t, driver.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupMembersDerivedFromAcceptedReservations(t *testing.T) {
	router := setupTest(t)
	driver := createUser(t, "Dana", "Driver", "dana@example.com")
	accepted := createUser(t, "Paul", "Passenger", "paul@example.com")
	pending := createUser(t, "Petra", "Pending", "petra@example.com")
	outsider := createUser(t, "Oscar", "Outsider", "oscar@example.com")

	route, group := createRoute(t, router, driver)

	acceptedRes := createReservation(t, router, accepted, route.ID, 1)
	createReservation(t, router, pending, route.ID, 1)
	acceptReservation(t, router, driver, acceptedRes.ID)

	path := fmt.Sprintf("/api/v1/members/get/%d", group.ID)
	w := doJSON(t, router, http.MethodGet, path, nil, authToken(t, driver.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	owner := body["owner"].(map[string]interface{})
	assert.Equal(t, "Dana", owner["first_name"])

	members := body["members"].([]interface{})
	require.Len(t, members, 1, "a requested reservation must not grant membership")
	member := members[0].(map[string]interface{})
	assert.Equal(t, "Paul", member["first_name"])

	// Accepted passengers can view the member list too.
	w = doJSON(t, router, http.MethodGet, path, nil, authToken(t, accepted.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	// Pending requesters and strangers cannot.
	w = doJSON(t, router, http.MethodGet, path, nil, authToken(t, pending.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, router, http.MethodGet, path, nil, authToken(t, outsider.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGroupMessageFanOut(t *testing.T) {
	router := setupTest(t)
	driver := createUser(t, "Dana", "Driver", "dana@example.com")
	passenger := createUser(t, "Paul", "Passenger", "paul@example.com")

	route, group := createRoute(t, router, driver)
	reservation := createReservation(t, router, passenger, route.ID, 2)
	acceptReservation(t, router, driver, reservation.ID)

	path := fmt.Sprintf("/api/v1/messages/group/send/%d", group.ID)
	w := doJSON(t, router, http.MethodPost, path,
		SendMessageInput{Message: "see you at 8", Type: "text"}, authToken(t, passenger.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The message hangs off the single group conversation.
	var conversation models.Conversation
	require.NoError(t, database.DB.
		Where("recipient_id = ? AND type = ?", group.ID, models.ConversationGroup).
		First(&conversation).Error)
	var linkCount int64
	database.DB.Model(&models.ConversationMessage{}).
		Where("conversation_id = ?", conversation.ID).Count(&linkCount)
	assert.EqualValues(t, 1, linkCount)

	// The driver gets a message notification, the sender does not.
	var driverNotifs, senderNotifs int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", driver.ID, models.NotificationNewMessage).Count(&driverNotifs)
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", passenger.ID, models.NotificationNewMessage).Count(&senderNotifs)
	assert.EqualValues(t, 1, driverNotifs)
	assert.EqualValues(t, 0, senderNotifs)

	// Members read the group history through the conversation endpoint.
	getPath := fmt.Sprintf("/api/v1/messages/get/%d/group", group.ID)
	w = doJSON(t, router, http.MethodGet, getPath, nil, authToken(t, driver.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	messages := body["messages"].([]interface{})
	require.Len(t, messages, 1)
	first := messages[0].(map[string]interface{})
	assert.Equal(t, "see you at 8", first["content"])
}

func TestGroupMessageForbiddenForNonMembers(t *testing.T) {
	router := setupTest(t)
	driver := createUser(t, "Dana", "Driver", "dana@example.com")
	pending := createUser(t, "Petra", "Pending", "petra@example.com")
	outsider := createUser(t, "Oscar", "Outsider", "oscar@example.com")

	route, group := createRoute(t, router, driver)
	createReservation(t, router, pending, route.ID, 1)

	path := fmt.Sprintf("/api/v1/messages/group/send/%d", group.ID)
	input := SendMessageInput{Message: "let me in", Type: "text"}

	w := doJSON(t, router, http.MethodPost, path, input, authToken(t, outsider.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodPost, path, input, authToken(t, pending.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	getPath := fmt.Sprintf("/api/v1/messages/get/%d/group", group.ID)
	w = doJSON(t, router, http.MethodGet, getPath, nil, authToken(t, outsider.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var messageCount int64
	database.DB.Model(&models.Message{}).Count(&messageCount)
	assert.EqualValues(t, 0, messageCount)
}
