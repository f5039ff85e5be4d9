package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"combineapi/models"
	"combineapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CreateClothingIn struct {
	Name             string  `json:"name" validate:"required,max=100"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	Category         string  `json:"category" validate:"required,category"`
	SubCategory      *string `json:"sub_category" validate:"omitempty,max=50"`
	Color            string  `json:"color" validate:"required,max=30"`
	Season           string  `json:"season" validate:"required,oneof=spring summer fall winter all"`
	Material         *string `json:"material" validate:"omitempty,max=50"`
	Brand            *string `json:"brand" validate:"omitempty,max=50"`
	Size             *string `json:"size" validate:"omitempty,max=20"`
	TemperatureRange *string `json:"temperature_range" validate:"omitempty,max=30"`
	FileName         *string `json:"file_name" validate:"omitempty,max=200"`
}

type UpdateClothingIn struct {
	Name             *string `json:"name" validate:"omitempty,max=100"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	Category         *string `json:"category" validate:"omitempty,category"`
	SubCategory      *string `json:"sub_category" validate:"omitempty,max=50"`
	Color            *string `json:"color" validate:"omitempty,max=30"`
	Season           *string `json:"season" validate:"omitempty,oneof=spring summer fall winter all"`
	Material         *string `json:"material" validate:"omitempty,max=50"`
	Brand            *string `json:"brand" validate:"omitempty,max=50"`
	Size             *string `json:"size" validate:"omitempty,max=20"`
	TemperatureRange *string `json:"temperature_range" validate:"omitempty,max=30"`
	IsActive         *bool   `json:"is_active"`
}

type ClothingResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	SubCategory *string `json:"sub_category"`
	Color       string  `json:"color"`
	Season      string  `json:"season"`
	Material    *string `json:"material"`
	Brand       *string `json:"brand"`
	Size        *string `json:"size"`
	IsActive    bool    `json:"is_active"`
	Uri         *string `json:"uri,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

type ClothingCreatedResponse struct {
	Clothing      ClothingResponse `json:"clothing"`
	FileUploadUrl string           `json:"file_upload_url,omitempty"`
}

type ClothesListResponse struct {
	Tops        []ClothingResponse `json:"tops"`
	Bottoms     []ClothingResponse `json:"bottoms"`
	Shoes       []ClothingResponse `json:"shoes"`
	Outerwear   []ClothingResponse `json:"outerwear"`
	Accessories []ClothingResponse `json:"accessories"`
}

type ClothesController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.GET("", controller.ListClothes)
	g.POST("/add", controller.CreateClothing)
	g.PUT("/update/:id", controller.UpdateClothing)
	g.DELETE("/delete/:id", controller.DeleteClothing)
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return FailResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid clothing data")
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	item := models.ClothingItem{
		Name:             req.Name,
		Description:      req.Description,
		Category:         models.Category(req.Category),
		SubCategory:      req.SubCategory,
		Color:            req.Color,
		Season:           req.Season,
		Material:         req.Material,
		Brand:            req.Brand,
		Size:             req.Size,
		TemperatureRange: req.TemperatureRange,
		OwnerID:          user.ID,
		IsActive:         true,
	}

	var uploadUrl string
	if req.FileName != nil && *req.FileName != "" {
		bucketName := services.GetEnv("R2_BUCKET_NAME", "")
		safeFileName := fmt.Sprintf("clothes/%s", *req.FileName)
		url, presignErr := controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
		if presignErr != nil {
			log.Printf("Unable to presign upload for %s!, %s", item.Name, presignErr)
			return FailResponse(c, http.StatusInternalServerError, "Error while creating clothing with attachment")
		}
		uploadUrl = url
		item.ImageURL = &safeFileName
	}

	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to save clothing")
	}

	return SuccessResponse(c, http.StatusCreated, ClothingCreatedResponse{
		Clothing:      clothingResponseOf(item, nil),
		FileUploadUrl: uploadUrl,
	})
}

// UpdateClothing changes item attributes. Once an item is referenced by any
// outfit its descriptive content is frozen so outfit records stay truthful;
// only is_active may still be toggled.
func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	var itemID uint
	if err := echo.PathParamsBinder(c).Uint("id", &itemID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid clothing id")
	}
	var req UpdateClothingIn
	if err := c.Bind(&req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid clothing data")
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	var item models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).First(&item, itemID).Error; err != nil {
		return FailResponse(c, http.StatusNotFound, "Clothing item not found")
	}

	hasContentChange := req.Name != nil || req.Description != nil || req.Category != nil ||
		req.SubCategory != nil || req.Color != nil || req.Season != nil ||
		req.Material != nil || req.Brand != nil || req.Size != nil || req.TemperatureRange != nil
	if hasContentChange {
		var referencingOutfits int64
		if err := db.Model(&models.Outfit{}).Where("? = ANY(item_ids)", int64(item.ID)).Count(&referencingOutfits).Error; err != nil {
			sentry.CaptureException(err)
			return FailResponse(c, http.StatusInternalServerError, "Failed to check outfit references")
		}
		if referencingOutfits > 0 {
			return FailResponse(c, http.StatusConflict, "This item is part of an outfit and its details can no longer be changed. You can still archive it.")
		}
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.Category != nil {
		item.Category = models.Category(*req.Category)
	}
	if req.SubCategory != nil {
		item.SubCategory = req.SubCategory
	}
	if req.Color != nil {
		item.Color = *req.Color
	}
	if req.Season != nil {
		item.Season = *req.Season
	}
	if req.Material != nil {
		item.Material = req.Material
	}
	if req.Brand != nil {
		item.Brand = req.Brand
	}
	if req.Size != nil {
		item.Size = req.Size
	}
	if req.TemperatureRange != nil {
		item.TemperatureRange = req.TemperatureRange
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := db.Save(&item).Error; err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to update clothing")
	}
	return SuccessResponse(c, http.StatusOK, clothingResponseOf(item, nil))
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	var itemID uint
	if err := echo.PathParamsBinder(c).Uint("id", &itemID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid clothing id")
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	result := db.Where("owner_id = ?", user.ID).Delete(&models.ClothingItem{}, itemID)
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return FailResponse(c, http.StatusInternalServerError, "Failed to delete clothing")
	}
	if result.RowsAffected == 0 {
		return FailResponse(c, http.StatusNotFound, "Clothing item not found")
	}
	return SuccessResponse(c, http.StatusOK, map[string]uint{"id": itemID})
}

// populatePresignedClothingImages enriches items with presigned read URLs
// concurrently. If the cache layer itself fails the item falls back to a
// direct presign so the whole request never fails over one image.
func (controller *ClothesController) populatePresignedClothingImages(ctx context.Context, items []models.ClothingItem) []ClothingResponse {
	if len(items) == 0 {
		return []ClothingResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]ClothingResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, clothingItem := range items {
		wg.Add(1)
		go func(index int, item models.ClothingItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = clothingResponseOf(item, &imageUrl)
		}(i, clothingItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	var items []models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).Order("id asc").Find(&items).Error; err != nil {
		return FailResponse(c, http.StatusInternalServerError, "Failed to fetch clothes")
	}

	processedResponses := controller.populatePresignedClothingImages(c.Request().Context(), items)

	response := ClothesListResponse{
		Tops:        []ClothingResponse{},
		Bottoms:     []ClothingResponse{},
		Shoes:       []ClothingResponse{},
		Outerwear:   []ClothingResponse{},
		Accessories: []ClothingResponse{},
	}

	for _, resp := range processedResponses {
		switch models.Category(resp.Category) {
		case models.CategoryTop:
			response.Tops = append(response.Tops, resp)
		case models.CategoryBottom:
			response.Bottoms = append(response.Bottoms, resp)
		case models.CategoryShoes:
			response.Shoes = append(response.Shoes, resp)
		case models.CategoryOuterwear:
			response.Outerwear = append(response.Outerwear, resp)
		case models.CategoryAccessory:
			response.Accessories = append(response.Accessories, resp)
		}
	}

	return SuccessResponse(c, http.StatusOK, response)
}

func clothingResponseOf(item models.ClothingItem, uri *string) ClothingResponse {
	return ClothingResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Category:    string(item.Category),
		SubCategory: item.SubCategory,
		Color:       item.Color,
		Season:      item.Season,
		Material:    item.Material,
		Brand:       item.Brand,
		Size:        item.Size,
		IsActive:    item.IsActive,
		Uri:         uri,
		CreatedAt:   item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
