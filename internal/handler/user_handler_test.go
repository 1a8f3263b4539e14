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

func TestSignupAndLogin(t *testing.T) {
	router := setupTest(t)

	input := SignupInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "password123",
		Role:      "driver",
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/signup", input, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.NotEmpty(t, body["token"])

	// The same email cannot register twice.
	w = doJSON(t, router, http.MethodPost, "/api/v1/signup", input, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// A short password never validates.
	bad := input
	bad.Email = "other@example.com"
	bad.Password = "short"
	w = doJSON(t, router, http.MethodPost, "/api/v1/signup", bad, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login",
		LoginInput{Email: "jane@example.com", Password: "password123"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decodeBody(t, w)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login",
		LoginInput{Email: "jane@example.com", Password: "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The issued token authenticates follow-up requests.
	w = doJSON(t, router, http.MethodGet, "/api/v1/users/getByToken", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jane@example.com")
}

func TestBanBlocksLogin(t *testing.T) {
	router := setupTest(t)
	admin := createAdmin(t, "admin@example.com")
	user := createUser(t, "Bob", "Ionescu", "bob@example.com")

	banPath := fmt.Sprintf("/api/v1/users/ban/%d", user.ID)
	w := doJSON(t, router, http.MethodPost, banPath, BanInput{Days: 7}, authToken(t, admin.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/v1/login",
		LoginInput{Email: "bob@example.com", Password: "password123"}, "")
	require.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User is banned!", body["message"])
	assert.NotZero(t, body["remaining_days"])

	// Lifting the ban restores access.
	removePath := fmt.Sprintf("/api/v1/users/ban/remove/%d", user.ID)
	w = doJSON(t, router, http.MethodDelete, removePath, nil, authToken(t, admin.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/login",
		LoginInput{Email: "bob@example.com", Password: "password123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBanRequiresAdmin(t *testing.T) {
	router := setupTest(t)
	user := createUser(t, "Bob", "Ionescu", "bob@example.com")
	victim := createUser(t, "Carol", "Vasile", "carol@example.com")

	banPath := fmt.Sprintf("/api/v1/users/ban/%d", victim.ID)
	w := doJSON(t, router, http.MethodPost, banPath, BanInput{Days: 7}, authToken(t, user.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var bans int64
	database.DB.Model(&models.Ban{}).Count(&bans)
	assert.EqualValues(t, 0, bans)
}

func TestGetUserReturnsRedactedProfile(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	path := fmt.Sprintf("/api/v1/users/%d", bob.ID)
	w := doJSON(t, router, http.MethodGet, path, nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	profile := body["user"].(map[string]interface{})
	assert.Equal(t, "Bob", profile["first_name"])
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, w.Body.String(), "password")

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/999999", nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchUsersMatchesName(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	createUser(t, "Bob", "Popescu", "bob@example.com")
	createUser(t, "Carol", "Vasile", "carol@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/search/Pop", nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["users"], 2)

	w = doJSON(t, router, http.MethodGet, "/api/v1/users/search/zzz", nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Empty(t, body["users"])
}

func TestUpdateUserAuthorization(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	path := fmt.Sprintf("/api/v1/users/update/%d", bob.ID)
	input := UpdateUserInput{FirstName: "Robert"}

	// Another regular user cannot touch Bob's profile.
	w := doJSON(t, router, http.MethodPut, path, input, authToken(t, alice.ID))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Bob can update himself.
	w = doJSON(t, router, http.MethodPut, path, input, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated models.User
	require.NoError(t, database.DB.First(&updated, bob.ID).Error)
	assert.Equal(t, "Robert", updated.FirstName)
}
