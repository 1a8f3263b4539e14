package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlink/backend/internal/database"
	"carlink/backend/internal/models"
)

func TestFriendRequestLifecycle(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	requestPath := fmt.Sprintf("/api/v1/friends/request/%d", bob.ID)
	w := doJSON(t, router, http.MethodPost, requestPath, nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Bob sees the pending request with a redacted sender profile.
	w = doJSON(t, router, http.MethodGet, "/api/v1/friends/requests/get", nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	requests := body["requests"].([]interface{})
	require.Len(t, requests, 1)
	assert.NotContains(t, w.Body.String(), "alice@example.com")

	acceptPath := fmt.Sprintf("/api/v1/friends/accept/%d", alice.ID)
	w = doJSON(t, router, http.MethodPut, acceptPath, nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Both directional friendship edges exist.
	var edges int64
	database.DB.Model(&models.Friend{}).Count(&edges)
	assert.EqualValues(t, 2, edges)

	// Each side lists the other as a friend.
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/friends/get/%d", alice.ID), nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Bob")

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/friends/get/%d", bob.ID), nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Alice")

	// Accepting a second time finds no pending request.
	w = doJSON(t, router, http.MethodPut, acceptPath, nil, authToken(t, bob.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Both sides got notified: Bob about the request, Alice about the accept.
	var sentNotif, acceptedNotif models.Notification
	require.NoError(t, database.DB.
		Where("user_id = ? AND type = ?", bob.ID, models.NotificationFriendRequestSent).First(&sentNotif).Error)
	require.NoError(t, database.DB.
		Where("user_id = ? AND type = ?", alice.ID, models.NotificationFriendRequestAccepted).First(&acceptedNotif).Error)
}

func TestFriendRequestGuards(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	selfPath := fmt.Sprintf("/api/v1/friends/request/%d", alice.ID)
	w := doJSON(t, router, http.MethodPost, selfPath, nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/friends/request/999999", nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	requestPath := fmt.Sprintf("/api/v1/friends/request/%d", bob.ID)
	w = doJSON(t, router, http.MethodPost, requestPath, nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPost, requestPath, nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeclineFriendRequest(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/friends/request/%d", bob.ID), nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	declinePath := fmt.Sprintf("/api/v1/friends/decline/%d", alice.ID)
	w = doJSON(t, router, http.MethodDelete, declinePath, nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var pending int64
	database.DB.Model(&models.FriendRequest{}).Count(&pending)
	assert.EqualValues(t, 0, pending)

	var notif models.Notification
	require.NoError(t, database.DB.
		Where("user_id = ? AND type = ?", alice.ID, models.NotificationFriendRequestDeclined).First(&notif).Error)

	// Declining again is a 404.
	w = doJSON(t, router, http.MethodDelete, declinePath, nil, authToken(t, bob.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelFriendRequestIsSilent(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/friends/request/%d", bob.ID), nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	before := notificationCount(t, bob.ID)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/v1/friends/cancel/%d", bob.ID), nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var pending int64
	database.DB.Model(&models.FriendRequest{}).Count(&pending)
	assert.EqualValues(t, 0, pending)

	// Cancellation does not notify the receiver.
	assert.Equal(t, before, notificationCount(t, bob.ID))
}

func notificationCount(t *testing.T, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.DB.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&count).Error)
	return count
}

func TestUnfriendRemovesBothEdges(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/friends/request/%d", bob.ID), nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/friends/accept/%d", alice.ID), nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code)

	unfriendPath := fmt.Sprintf("/api/v1/friends/unfriend/%d", alice.ID)
	w = doJSON(t, router, http.MethodDelete, unfriendPath, nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var edges, requests int64
	database.DB.Model(&models.Friend{}).Count(&edges)
	database.DB.Model(&models.FriendRequest{}).Count(&requests)
	assert.EqualValues(t, 0, edges)
	assert.EqualValues(t, 0, requests)

	// Unfriending someone who is not a friend is a validation error.
	w = doJSON(t, router, http.MethodDelete, unfriendPath, nil, authToken(t, bob.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
