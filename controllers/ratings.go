package controllers

import (
	"net/http"

	"combineapi/models"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CreateRatingIn struct {
	ItemID      uint    `json:"item_id" validate:"required"`
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Liked       *bool   `json:"liked"`
}

type UpdateRatingIn struct {
	Rating      *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Liked       *bool   `json:"liked"`
}

type RatingResponse struct {
	ID          uint    `json:"id"`
	ItemID      uint    `json:"item_id"`
	Rating      *int    `json:"rating"`
	Description *string `json:"description"`
	Liked       bool    `json:"liked"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// RatingsController manages the per-item wear log. Entries are fully
// owner-scoped: users never see or touch each other's logs.
type RatingsController struct{}

func (controller *RatingsController) RatingRoutes(g *echo.Group) {
	g.GET("", controller.ListRatings)
	g.POST("/add", controller.CreateRating)
	g.PUT("/update/:id", controller.UpdateRating)
	g.DELETE("/delete/:id", controller.DeleteRating)
}

func (controller *RatingsController) ListRatings(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	var ratings []models.ItemRating
	if err := db.Where("owner_id = ?", user.ID).Order("id asc").Find(&ratings).Error; err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to fetch ratings")
	}

	responses := make([]RatingResponse, 0, len(ratings))
	for _, rating := range ratings {
		responses = append(responses, ratingResponseOf(rating))
	}
	return SuccessResponse(c, http.StatusOK, responses)
}

func (controller *RatingsController) CreateRating(c echo.Context) error {
	var req CreateRatingIn
	if err := c.Bind(&req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid rating data")
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	// the log may only reference the user's own wardrobe
	var item models.ClothingItem
	if err := db.Where("owner_id = ?", user.ID).First(&item, req.ItemID).Error; err != nil {
		return FailResponse(c, http.StatusNotFound, "Clothing item not found")
	}

	rating := models.ItemRating{
		OwnerID:     user.ID,
		ItemID:      item.ID,
		Rating:      req.Rating,
		Description: req.Description,
	}
	if req.Liked != nil {
		rating.Liked = *req.Liked
	}
	if err := db.Create(&rating).Error; err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to save rating")
	}
	return SuccessResponse(c, http.StatusCreated, ratingResponseOf(rating))
}

func (controller *RatingsController) UpdateRating(c echo.Context) error {
	var ratingID uint
	if err := echo.PathParamsBinder(c).Uint("id", &ratingID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid rating id")
	}
	var req UpdateRatingIn
	if err := c.Bind(&req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid rating data")
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	var rating models.ItemRating
	if err := db.Where("owner_id = ?", user.ID).First(&rating, ratingID).Error; err != nil {
		return FailResponse(c, http.StatusNotFound, "Rating not found")
	}

	if req.Rating != nil {
		rating.Rating = req.Rating
	}
	if req.Description != nil {
		rating.Description = req.Description
	}
	if req.Liked != nil {
		rating.Liked = *req.Liked
	}
	if err := db.Save(&rating).Error; err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to update rating")
	}
	return SuccessResponse(c, http.StatusOK, ratingResponseOf(rating))
}

func (controller *RatingsController) DeleteRating(c echo.Context) error {
	var ratingID uint
	if err := echo.PathParamsBinder(c).Uint("id", &ratingID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid rating id")
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return FailResponse(c, http.StatusInternalServerError, "Database connection error")
	}

	result := db.Where("owner_id = ?", user.ID).Delete(&models.ItemRating{}, ratingID)
	if result.Error != nil {
		sentry.CaptureException(result.Error)
		return FailResponse(c, http.StatusInternalServerError, "Failed to delete rating")
	}
	if result.RowsAffected == 0 {
		return FailResponse(c, http.StatusNotFound, "Rating not found")
	}
	return SuccessResponse(c, http.StatusOK, map[string]uint{"id": ratingID})
}

func ratingResponseOf(rating models.ItemRating) RatingResponse {
	return RatingResponse{
		ID:          rating.ID,
		ItemID:      rating.ItemID,
		Rating:      rating.Rating,
		Description: rating.Description,
		Liked:       rating.Liked,
		CreatedAt:   rating.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   rating.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
