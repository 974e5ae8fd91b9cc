package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
)

// RegisterReviewRoutes sets up review endpoints
func RegisterReviewRoutes(e *echo.Echo, db *mongo.Client) {
	reviewController := controllers.NewReviewController(db)

	e.GET("/api/providers/:id/reviews", reviewController.ListProviderReviews)

	protected := e.Group("/api/reviews")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("", reviewController.CreateReview)
}
