package controllers

import (
	"encoding/json"
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

type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, body []byte, out interface{}) apiEnvelope {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	if out != nil && envelope.Data != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope
}

func TestCreateClothingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")

	reqBody := CreateClothingIn{
		Name:        "Blue Oxford Shirt",
		Description: stringPtr("Light cotton shirt"),
		Category:    "top",
		Color:       "blue",
		Season:      "summer",
		FileName:    stringPtr("shirt.jpg"),
	}

	req := test.NewJSONAuthRequest("POST", "/clothes/add", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, "Expected status code 201 Created, got %d: %s", rec.Code, rec.Body.String())

	var response ClothingCreatedResponse
	envelope := decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.True(t, envelope.Success)
	require.Equal(t, reqBody.Name, response.Clothing.Name)
	require.Equal(t, reqBody.Description, response.Clothing.Description)
	require.Equal(t, reqBody.Category, response.Clothing.Category)
	require.True(t, response.Clothing.IsActive)
	require.Contains(t, response.FileUploadUrl, "clothes/shirt.jpg")
}

func TestCreateClothingInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")

	// category missing
	reqBody := CreateClothingIn{
		Name:   "Test Clothing",
		Color:  "red",
		Season: "winter",
	}

	req := test.NewJSONAuthRequest("POST", "/clothes/add", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.Bytes(), nil)
	assert.False(t, envelope.Success)
}

func TestCreateClothingUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})

	reqBody := CreateClothingIn{
		Name:     "Test Clothing",
		Category: "top",
		Color:    "red",
		Season:   "winter",
	}
	req := test.NewJSONRequest("POST", "/clothes/add", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListClothesGrouped(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{MockUrl: "https://fake.example/read"})
	user := test.FakeUser(db, "", "")

	top := test.FakeClothingItem(db, user.ID, "Test Top", models.CategoryTop, "white", "summer")
	bottom := test.FakeClothingItem(db, user.ID, "Test Bottom", models.CategoryBottom, "black", "all")
	test.FakeClothingItem(db, user.ID, "Test Shoes", models.CategoryShoes, "brown", "all")
	test.FakeClothingItem(db, user.ID, "Test Coat", models.CategoryOuterwear, "gray", "winter")

	req := test.NewJSONAuthRequest("GET", "/clothes", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200 OK, got %d: %s", rec.Code, rec.Body.String())

	var response ClothesListResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.Len(t, response.Tops, 1)
	require.Len(t, response.Bottoms, 1)
	require.Len(t, response.Shoes, 1)
	require.Len(t, response.Outerwear, 1)
	require.Len(t, response.Accessories, 0)
	require.Equal(t, top.Name, response.Tops[0].Name)
	require.Equal(t, bottom.Name, response.Bottoms[0].Name)
}

func TestListClothesEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")

	req := test.NewJSONAuthRequest("GET", "/clothes", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.Len(t, response.Tops, 0)
	require.Len(t, response.Bottoms, 0)
	require.Len(t, response.Shoes, 0)
	require.Len(t, response.Accessories, 0)
}

func TestListClothesDoesNotLeakOtherUsers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other@example.com")
	test.FakeClothingItem(db, other.ID, "Other Top", models.CategoryTop, "red", "summer")

	req := test.NewJSONAuthRequest("GET", "/clothes", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.Len(t, response.Tops, 0)
}

func TestUpdateClothingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Old Name", models.CategoryTop, "white", "summer")

	reqBody := UpdateClothingIn{Name: stringPtr("New Name"), Color: stringPtr("navy")}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/clothes/update/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ClothingResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.Equal(t, "New Name", response.Name)
	require.Equal(t, "navy", response.Color)
}

func TestUpdateClothingFrozenWhenReferencedByOutfit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "Frozen Top", models.CategoryTop, "white", "summer")
	bottom := test.FakeClothingItem(db, user.ID, "Bottom", models.CategoryBottom, "black", "all")
	shoes := test.FakeClothingItem(db, user.ID, "Shoes", models.CategoryShoes, "brown", "all")

	outfit := models.Outfit{
		Name:    "Saved Look",
		OwnerID: user.ID,
		ItemIDs: []int64{int64(item.ID), int64(bottom.ID), int64(shoes.ID)},
		Status:  models.StatusWorn,
	}
	require.NoError(t, db.Create(&outfit).Error)

	reqBody := UpdateClothingIn{Name: stringPtr("Renamed")}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/clothes/update/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	// archiving is still allowed
	reqBody = UpdateClothingIn{IsActive: BoolPointer(false)}
	req = test.NewJSONAuthRequest("PUT", fmt.Sprintf("/clothes/update/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec = httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ClothingResponse
	decodeEnvelope(t, rec.Body.Bytes(), &response)
	require.False(t, response.IsActive)
}

func TestDeleteClothingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	item := test.FakeClothingItem(db, user.ID, "To Delete", models.CategoryTop, "white", "summer")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/clothes/delete/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.ClothingItem{}).Where("id = ?", item.ID).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestDeleteClothingOtherUsersItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := SetupServer(db, nil, &test.AWSProviderMock{}, &test.URLCacheMock{})
	user := test.FakeUser(db, "", "")
	other := test.FakeUser(db, "Other", "other@example.com")
	item := test.FakeClothingItem(db, other.ID, "Not Yours", models.CategoryTop, "white", "summer")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/clothes/delete/%v", item.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func stringPtr(s string) *string {
	return &s
}
