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

func TestRatingLifecycle(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")
	carol := createUser(t, "Carol", "Vasile", "carol@example.com")

	addPath := fmt.Sprintf("/api/v1/ratings/add/%d", bob.ID)
	w := doJSON(t, router, http.MethodPost, addPath, RatingInput{Value: 5, Comment: "great driver"}, authToken(t, alice.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// One rating per rater and target.
	w = doJSON(t, router, http.MethodPost, addPath, RatingInput{Value: 1}, authToken(t, alice.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/ratings/add/%d", bob.ID),
		RatingInput{Value: 3}, authToken(t, carol.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	// Out-of-range values never validate.
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/v1/ratings/add/%d", alice.ID),
		RatingInput{Value: 6}, authToken(t, bob.ID))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	getPath := fmt.Sprintf("/api/v1/ratings/get/%d", bob.ID)
	w = doJSON(t, router, http.MethodGet, getPath, nil, authToken(t, bob.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["ratings"], 2)
	assert.EqualValues(t, 4, body["average"])

	// Updating replaces the rater's own score.
	updatePath := fmt.Sprintf("/api/v1/ratings/update/%d", bob.ID)
	w = doJSON(t, router, http.MethodPut, updatePath, RatingInput{Value: 1}, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, getPath, nil, authToken(t, bob.ID))
	body = decodeBody(t, w)
	assert.EqualValues(t, 2, body["average"])

	// Deleting one's rating drops it from the list.
	deletePath := fmt.Sprintf("/api/v1/ratings/delete/%d", bob.ID)
	w = doJSON(t, router, http.MethodDelete, deletePath, nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodDelete, deletePath, nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportRequiresCatalogReason(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	reason := models.ReportReason{Name: "Dangerous driving"}
	require.NoError(t, database.DB.Create(&reason).Error)

	addPath := fmt.Sprintf("/api/v1/reports/add/%d", bob.ID)
	w := doJSON(t, router, http.MethodPost, addPath,
		ReportInput{ReasonID: 999999, Description: "nope"}, authToken(t, alice.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, addPath,
		ReportInput{ReasonID: reason.ID, Description: "ran a red light"}, authToken(t, alice.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// The same reporter cannot report the same user twice.
	w = doJSON(t, router, http.MethodPost, addPath,
		ReportInput{ReasonID: reason.ID}, authToken(t, alice.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/report/reasons/get", nil, authToken(t, alice.ID))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Len(t, body["reasons"], 1)
}

func TestSuggestionsOwnership(t *testing.T) {
	router := setupTest(t)
	alice := createUser(t, "Alice", "Pop", "alice@example.com")
	bob := createUser(t, "Bob", "Ionescu", "bob@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/v1/suggestions/add",
		SuggestionInput{Content: "add dark mode"}, authToken(t, alice.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	suggestion := body["suggestion"].(map[string]interface{})
	id := uint(suggestion["id"].(float64))

	// Only the author can delete their suggestion.
	deletePath := fmt.Sprintf("/api/v1/suggestions/delete/%d", id)
	w = doJSON(t, router, http.MethodDelete, deletePath, nil, authToken(t, bob.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, deletePath, nil, authToken(t, alice.ID))
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.Suggestion{}).Count(&count)
	assert.Zero(t, count)
}
