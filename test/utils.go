package test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	"combineapi/models"
	"combineapi/services"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		log.Fatalf("Error when signing user token for %s. Error %s ", userPk, err)
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	token := GenerateUserToken(userPk)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	return req
}

func FakeUser(db *gorm.DB, name string, email string) *models.UserAccount {
	if name == "" {
		name = "OurName"
	}
	if email == "" {
		email = "email@example.com"
	}
	user := &models.UserAccount{
		Name:   name,
		Email:  email,
		LastIp: "123.122.122.122",
		Status: "FINISHED_AUTH",
	}
	db.Create(&user)
	return user
}

func FakeClothingItem(db *gorm.DB, ownerID uint, name string, category models.Category, color string, season string) *models.ClothingItem {
	item := &models.ClothingItem{
		Name:     name,
		Category: category,
		Color:    color,
		Season:   season,
		OwnerID:  ownerID,
		IsActive: true,
	}
	db.Create(&item)
	return item
}

func NewRefString(data string) *string {
	return &data
}

type AWSProviderMock struct {
	MockUrl string
}

func (awsService AWSProviderMock) InitPresignClient(ctx context.Context) error {
	return nil
}

func (awsService AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {

	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	return awsService.MockUrl, nil
}

// URLCacheMock returns a fixed URL, or fails when Err is set so cache
// fallback paths can be exercised.
type URLCacheMock struct {
	MockUrl string
	Err     error
}

func (m URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	if objectKey == "" {
		return "", nil
	}
	return m.MockUrl, nil
}

// StubGenerator returns a fixed candidate or error. Set Block to make it
// wait until the context expires.
type StubGenerator struct {
	IDs   []uint
	Err   error
	Block bool
}

func (g StubGenerator) Propose(ctx context.Context, items []models.ClothingItem, exclusions *services.ExclusionSet) ([]uint, error) {
	if g.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.IDs, g.Err
}
