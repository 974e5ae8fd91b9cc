package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
)

// RegisterProviderRoutes sets up provider profiles and the service catalog
func RegisterProviderRoutes(e *echo.Echo, db *mongo.Client) {
	providerController := controllers.NewProviderController(db)
	serviceController := controllers.NewServiceController(db)

	// Public directory
	e.GET("/api/providers", providerController.ListProviders)
	e.GET("/api/providers/:id", providerController.GetProvider)
	e.GET("/api/providers/:id/services", serviceController.ListProviderServices)

	protected := e.Group("/api/provider")
	protected.Use(middleware.JWTMiddleware())

	// Any signed-in user can open a provider profile
	protected.POST("/profile", providerController.CreateProviderProfile)

	owner := e.Group("/api/provider")
	owner.Use(middleware.JWTMiddleware())
	owner.Use(middleware.RequireUserType(models.UserTypeProvider, models.UserTypeAdmin))
	owner.GET("/profile", providerController.GetMyProvider)
	owner.PUT("/profile", providerController.UpdateProviderProfile)
	owner.PUT("/working-hours", providerController.UpdateWorkingHours)
	owner.POST("/media", providerController.UploadMedia)
	owner.POST("/services", serviceController.CreateService)
	owner.PUT("/services/:id", serviceController.UpdateService)
	owner.DELETE("/services/:id", serviceController.DeleteService)

	admin := e.Group("/api/admin/providers")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeAdmin))
	admin.PUT("/:id/verify", providerController.VerifyProvider)
}
