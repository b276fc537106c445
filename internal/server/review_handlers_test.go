package server

import (
	"fmt"
	"net/http"
	"testing"

	"speedgarage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedReview(t *testing.T, db *gorm.DB, author *models.User, car *models.Car, rating int) *models.Review {
	t.Helper()
	review := &models.Review{AuthorID: author.ID, CarID: car.ID, Rating: rating, Text: "seed review"}
	require.NoError(t, db.Create(review).Error)
	return review
}

func TestListReviews_PublicRead(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	seedReview(t, db, alice, car, 5)

	// No Authorization header at all.
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/reviews/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count   int64           `json:"count"`
		Results []models.Review `json:"results"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "alice", body.Results[0].Author.Username)
	assert.False(t, body.Results[0].LikedByMe)
}

func TestCreateReview_RequiresAuth(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	car := seedCar(t, db, "Toyota", "Supra", 1994)

	req := jsonRequest(http.MethodPost, "/api/reviews", map[string]any{
		"car_id": car.ID, "rating": 5, "text": "anonymous attempt",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateReview_AuthorIsCaller(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	mallory := createServerTestUser(t, db, "mallory")
	car := seedCar(t, db, "Toyota", "Supra", 1994)

	// A client-supplied author_id is discarded; the token decides.
	req := jsonRequest(http.MethodPost, "/api/reviews", map[string]any{
		"car_id": car.ID, "rating": 5, "text": "mine", "author_id": mallory.ID,
	})
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, alice.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body models.Review
	decodeBody(t, resp, &body)
	assert.Equal(t, alice.ID, body.AuthorID)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	token := accessTokenFor(t, s, alice.ID)

	for _, rating := range []int{0, 6} {
		req := jsonRequest(http.MethodPost, "/api/reviews", map[string]any{
			"car_id": car.ID, "rating": rating,
		})
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	}

	var count int64
	require.NoError(t, db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateReview_OnlyAuthor(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	review := seedReview(t, db, alice, car, 3)

	// A non-author with a valid token is Forbidden, not Unauthorized.
	req := jsonRequest(http.MethodPut, fmt.Sprintf("/api/reviews/%d", review.ID), map[string]any{
		"rating": 1,
	})
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, bob.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var stored models.Review
	require.NoError(t, db.First(&stored, review.ID).Error)
	assert.Equal(t, 3, stored.Rating)

	// The author succeeds.
	req = jsonRequest(http.MethodPut, fmt.Sprintf("/api/reviews/%d", review.ID), map[string]any{
		"rating": 4,
	})
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, alice.ID))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body models.Review
	decodeBody(t, resp, &body)
	assert.Equal(t, 4, body.Rating)
}

func TestDeleteReview_OnlyAuthor(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	review := seedReview(t, db, alice, car, 3)

	req := jsonRequest(http.MethodDelete, fmt.Sprintf("/api/reviews/%d", review.ID), nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, bob.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = jsonRequest(http.MethodDelete, fmt.Sprintf("/api/reviews/%d", review.ID), nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, alice.ID))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = app.Test(jsonRequest(http.MethodGet, fmt.Sprintf("/api/reviews/%d", review.ID), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLikeReview_Idempotent(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	review := seedReview(t, db, alice, car, 5)
	token := accessTokenFor(t, s, bob.ID)

	like := func() *http.Response {
		req := jsonRequest(http.MethodPost, fmt.Sprintf("/api/reviews/%d/like", review.ID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := like()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body models.Review
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.TotalLikes)
	assert.True(t, body.LikedByMe)

	// Liking again changes nothing.
	resp = like()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.TotalLikes)

	// Unlike, then unlike again: both succeed, count stays at zero.
	unlike := func() *http.Response {
		req := jsonRequest(http.MethodDelete, fmt.Sprintf("/api/reviews/%d/like", review.ID), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp = unlike()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(0), body.TotalLikes)
	assert.False(t, body.LikedByMe)

	resp = unlike()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(0), body.TotalLikes)
}

func TestListReviews_MyFilter(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	seedReview(t, db, alice, car, 5)
	seedReview(t, db, bob, car, 2)

	// Anonymous my=true cannot be resolved to an author.
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/reviews/?my=true", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := jsonRequest(http.MethodGet, "/api/reviews/?my=true", nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, alice.ID))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count   int64           `json:"count"`
		Results []models.Review `json:"results"`
	}
	decodeBody(t, resp, &body)
	assert.Equal(t, int64(1), body.Count)
	require.Len(t, body.Results, 1)
	assert.Equal(t, alice.ID, body.Results[0].AuthorID)
}

func TestListReviews_CarFilterValidation(t *testing.T) {
	t.Parallel()

	s, _ := setupTestServer(t)
	app := newTestApp(s)

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/reviews/?car_id=abc", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetReview_LikedByMeDependsOnCaller(t *testing.T) {
	t.Parallel()

	s, db := setupTestServer(t)
	app := newTestApp(s)
	alice := createServerTestUser(t, db, "alice")
	bob := createServerTestUser(t, db, "bob")
	car := seedCar(t, db, "Toyota", "Supra", 1994)
	review := seedReview(t, db, alice, car, 5)
	require.NoError(t, db.Create(&models.ReviewLike{UserID: bob.ID, ReviewID: review.ID}).Error)

	target := fmt.Sprintf("/api/reviews/%d", review.ID)

	req := jsonRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, s, bob.ID))
	resp, err := app.Test(req)
	require.NoError(t, err)
	var body models.Review
	decodeBody(t, resp, &body)
	assert.True(t, body.LikedByMe)
	assert.Equal(t, int64(1), body.TotalLikes)

	resp, err = app.Test(jsonRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	decodeBody(t, resp, &body)
	assert.False(t, body.LikedByMe)
	assert.Equal(t, int64(1), body.TotalLikes)
}
