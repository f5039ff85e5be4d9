package controllers

import (
	"context"
	"log"
	"net/http"
	"os"

	"combineapi/models"
	"combineapi/services"

	"github.com/go-playground/validator"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func SetupServer(
	db *gorm.DB,
	planner *services.OutfitPlanner,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
) *echo.Echo {

	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("Failed to initialize AWS provider: S3")
	}

	e := echo.New()
	v := validator.New()
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("outfitstatus", models.ValidateOutfitStatus)
	e.Validator = &CustomValidator{validator: v}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			return next(c)
		}
	})

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	clothesController := ClothesController{AWSService: awsService, URLCache: urlCache}
	clothesGroup := e.Group("/clothes", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	clothesController.ClothingRoutes(clothesGroup)

	outfitsController := OutfitsController{Planner: planner, URLCache: urlCache}
	outfitsGroup := e.Group("/outfits", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	outfitsController.OutfitRoutes(outfitsGroup)

	ratingsController := RatingsController{}
	ratingsGroup := e.Group("/ratings", echojwt.JWT([]byte(os.Getenv("JWT_SECRET"))), UserMiddleware)
	ratingsController.RatingRoutes(ratingsGroup)

	return e
}
