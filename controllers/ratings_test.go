package controllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"combineapi/dbhelper"
	"combineapi/models"
	"combineapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestCreateRatingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Blue Shirt", "top", "blue", "summer")

	liked := true
	reqBody := CreateRatingIn{
		ItemID:      item.ID,
		Rating:      intPtr(4),
		Description: stringPtr("Comfortable all day"),
		Liked:       &liked,
	}
	req := test.NewJSONAuthRequest("POST", "/ratings/add", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response RatingResponse
	envelope := decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.True(t, envelope.Success)
	assert.Equal(t, item.ID, response.ItemID)
	require.NotNil(t, response.Rating)
	assert.Equal(t, 4, *response.Rating)
	assert.True(t, response.Liked)

	var count int64
	db.Model(&models.ItemRating{}).Where("owner_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCreateRatingRejectsForeignItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other-rating@example.com")
	foreign := test.FakeClothingItem(db, other.ID, "Their Shirt", "top", "red", "winter")

	reqBody := CreateRatingIn{ItemID: foreign.ID, Rating: intPtr(5)}
	req := test.NewJSONAuthRequest("POST", "/ratings/add", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var count int64
	db.Model(&models.ItemRating{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateRatingInvalidValue(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Shirt", "top", "blue", "summer")

	reqBody := CreateRatingIn{ItemID: item.ID, Rating: intPtr(9)}
	req := test.NewJSONAuthRequest("POST", "/ratings/add", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRatingsOwnerScoped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other-ratings-list@example.com")
	mine := test.FakeClothingItem(db, user.ID, "Mine", "top", "blue", "summer")
	theirs := test.FakeClothingItem(db, other.ID, "Theirs", "top", "red", "winter")

	require.NoError(t, db.Create(&models.ItemRating{OwnerID: user.ID, ItemID: mine.ID, Rating: intPtr(3)}).Error)
	require.NoError(t, db.Create(&models.ItemRating{OwnerID: user.ID, ItemID: mine.ID, Liked: true}).Error)
	require.NoError(t, db.Create(&models.ItemRating{OwnerID: other.ID, ItemID: theirs.ID, Rating: intPtr(1)}).Error)

	req := test.NewJSONAuthRequest("GET", "/ratings", strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response []RatingResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.Len(t, response, 2)
	for _, rating := range response {
		assert.Equal(t, mine.ID, rating.ItemID)
	}
}

func TestUpdateRatingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Shirt", "top", "blue", "summer")

	rating := models.ItemRating{OwnerID: user.ID, ItemID: item.ID, Rating: intPtr(2)}
	require.NoError(t, db.Create(&rating).Error)

	liked := true
	reqBody := UpdateRatingIn{Rating: intPtr(5), Liked: &liked}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/ratings/update/%d", rating.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response RatingResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.NotNil(t, response.Rating)
	assert.Equal(t, 5, *response.Rating)
	assert.True(t, response.Liked)
}

func TestUpdateRatingOtherUsers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other-rating-update@example.com")
	theirs := test.FakeClothingItem(db, other.ID, "Theirs", "top", "red", "winter")

	rating := models.ItemRating{OwnerID: other.ID, ItemID: theirs.ID, Rating: intPtr(2)}
	require.NoError(t, db.Create(&rating).Error)

	reqBody := UpdateRatingIn{Rating: intPtr(5)}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/ratings/update/%d", rating.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var stored models.ItemRating
	require.NoError(t, db.First(&stored, rating.ID).Error)
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 2, *stored.Rating)
}

func TestDeleteRatingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Shirt", "top", "blue", "summer")

	rating := models.ItemRating{OwnerID: user.ID, ItemID: item.ID, Liked: true}
	require.NoError(t, db.Create(&rating).Error)

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/ratings/delete/%d", rating.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var count int64
	db.Model(&models.ItemRating{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestDeleteRatingOtherUsers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other-rating-delete@example.com")
	theirs := test.FakeClothingItem(db, other.ID, "Theirs", "top", "red", "winter")

	rating := models.ItemRating{OwnerID: other.ID, ItemID: theirs.ID}
	require.NoError(t, db.Create(&rating).Error)

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/ratings/delete/%d", rating.ID), strconv.FormatUint(uint64(user.ID), 10), nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var count int64
	db.Model(&models.ItemRating{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
