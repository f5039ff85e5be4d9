package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"combineapi/models"
	"combineapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
)

type UpdateOutfitStatusIn struct {
	Status string `json:"status" validate:"required"`
}

type OutfitItemResponse struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
	Season   string  `json:"season"`
	Uri      *string `json:"uri,omitempty"`
}

type OutfitResponse struct {
	ID        uint                 `json:"id"`
	Name      string               `json:"name"`
	Status    string               `json:"status"`
	Items     []OutfitItemResponse `json:"items"`
	CreatedAt string               `json:"created_at"`
	UpdatedAt string               `json:"updated_at"`
}

type OutfitsController struct {
	Planner  *services.OutfitPlanner
	URLCache services.URLCacheServiceProvider
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.POST("/generate", controller.GenerateOutfit)
	g.PUT("/:id/status", controller.UpdateOutfitStatus)
	g.GET("", controller.ListOutfits)
	g.GET("/:id", controller.GetOutfit)
}

// GenerateOutfit runs the full generation workflow and returns the new
// suggestion with its items populated.
func (controller *OutfitsController) GenerateOutfit(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}

	outfit, err := controller.Planner.Generate(c.Request().Context(), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientWardrobe):
			return FailResponse(c, http.StatusBadRequest, "You need at least 3 active clothing items to generate an outfit")
		case errors.Is(err, services.ErrGenerationTimeout):
			return FailResponse(c, http.StatusGatewayTimeout, "Outfit generation took too long, please try again")
		case errors.Is(err, services.ErrGenerationExhausted):
			return FailResponse(c, http.StatusInternalServerError, "Could not find a new outfit combination, try adding more clothes")
		case errors.Is(err, services.ErrInvalidCandidate):
			return FailResponse(c, http.StatusInternalServerError, "Generated outfit was invalid, please try again")
		default:
			fmt.Printf("[User %v] Outfit generation error: %v\n", user.ID, err)
			sentry.CaptureException(err)
			return FailResponse(c, http.StatusInternalServerError, "Failed to generate outfit")
		}
	}

	return SuccessResponse(c, http.StatusCreated, controller.outfitResponseOf(c, outfit))
}

func (controller *OutfitsController) UpdateOutfitStatus(c echo.Context) error {
	var outfitID uint
	if err := echo.PathParamsBinder(c).Uint("id", &outfitID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid outfit id")
	}
	var req UpdateOutfitStatusIn
	if err := c.Bind(&req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Status is required")
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}

	outfit, err := controller.Planner.UpdateStatus(c.Request().Context(), user.ID, outfitID, models.OutfitStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return FailResponse(c, http.StatusBadRequest, "Invalid outfit status")
		case errors.Is(err, services.ErrNotFoundOrForbidden):
			return FailResponse(c, http.StatusNotFound, "Outfit not found")
		default:
			sentry.CaptureException(err)
			return FailResponse(c, http.StatusInternalServerError, "Failed to update outfit status")
		}
	}

	return SuccessResponse(c, http.StatusOK, controller.outfitResponseOf(c, outfit))
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}

	var statuses []models.OutfitStatus
	if statusParam := c.QueryParam("status"); statusParam != "" {
		status := models.OutfitStatus(statusParam)
		if !status.Valid() {
			return FailResponse(c, http.StatusBadRequest, "Invalid outfit status")
		}
		statuses = append(statuses, status)
	}

	outfits, err := controller.Planner.Outfits.ListByStatus(c.Request().Context(), user.ID, statuses)
	if err != nil {
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to fetch outfits")
	}

	responses := make([]OutfitResponse, 0, len(outfits))
	for i := range outfits {
		responses = append(responses, controller.outfitResponseOf(c, &outfits[i]))
	}
	return SuccessResponse(c, http.StatusOK, responses)
}

func (controller *OutfitsController) GetOutfit(c echo.Context) error {
	var outfitID uint
	if err := echo.PathParamsBinder(c).Uint("id", &outfitID).BindError(); err != nil {
		return FailResponse(c, http.StatusBadRequest, "Invalid outfit id")
	}
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return FailResponse(c, http.StatusUnauthorized, "Unauthorized")
	}

	outfit, err := controller.Planner.Outfits.FindByID(c.Request().Context(), user.ID, outfitID)
	if err != nil {
		if errors.Is(err, services.ErrNotFoundOrForbidden) {
			return FailResponse(c, http.StatusNotFound, "Outfit not found")
		}
		sentry.CaptureException(err)
		return FailResponse(c, http.StatusInternalServerError, "Failed to fetch outfit")
	}

	return SuccessResponse(c, http.StatusOK, controller.outfitResponseOf(c, outfit))
}

func (controller *OutfitsController) outfitResponseOf(c echo.Context, outfit *models.Outfit) OutfitResponse {
	items := make([]OutfitItemResponse, 0, len(outfit.Items))
	for _, item := range outfit.Items {
		var uri *string
		if item.ImageURL != nil && *item.ImageURL != "" && controller.URLCache != nil {
			url, err := controller.URLCache.GetReadURL(c.Request().Context(), *item.ImageURL)
			if err != nil {
				sentry.CaptureException(err)
			} else if url != "" {
				uri = &url
			}
		}
		items = append(items, OutfitItemResponse{
			ID:       item.ID,
			Name:     item.Name,
			Category: string(item.Category),
			Color:    item.Color,
			Season:   item.Season,
			Uri:      uri,
		})
	}
	return OutfitResponse{
		ID:        outfit.ID,
		Name:      outfit.Name,
		Status:    string(outfit.Status),
		Items:     items,
		CreatedAt: outfit.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: outfit.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
