package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/websocket"
)

// RegisterBookingRoutes sets up booking creation, lifecycle, availability,
// and analytics endpoints.
func RegisterBookingRoutes(e *echo.Echo, db *mongo.Client, rdb *redis.Client, hub *websocket.Hub) {
	bookingController := controllers.NewBookingController(db, rdb, hub)

	// Availability is public so customers can browse before signing in
	e.POST("/api/bookings/check-availability", bookingController.CheckAvailability)

	bookings := e.Group("/api/bookings")
	bookings.Use(middleware.JWTMiddleware())

	bookings.POST("", bookingController.CreateBooking)
	bookings.POST("/bulk", bookingController.BulkCreateBookings)
	bookings.GET("/my", bookingController.GetUserBookings)
	bookings.GET("/:id", bookingController.GetBooking)
	bookings.GET("/:id/qr", bookingController.GetBookingQR)
	bookings.PUT("/:id/status", bookingController.UpdateBookingStatus)
	bookings.PUT("/:id/cancel", bookingController.CancelBooking)
	bookings.PUT("/:id/reschedule", bookingController.RescheduleBooking)

	// Verbs and paths the published API documents; same handlers
	bookings.PATCH("/:id/status", bookingController.UpdateBookingStatus)
	bookings.POST("/:id/cancel", bookingController.CancelBooking)
	bookings.POST("/:id/reschedule", bookingController.RescheduleBooking)
	bookings.GET("/user", bookingController.GetUserBookings)

	providerRole := middleware.RequireUserType(models.UserTypeProvider, models.UserTypeAdmin)
	adminRole := middleware.RequireUserType(models.UserTypeAdmin)
	bookings.GET("/provider/:id", bookingController.GetProviderBookings, providerRole)
	bookings.GET("/dashboard", bookingController.GetDashboard, providerRole)
	bookings.GET("/analytics/stats", bookingController.GetBookingStats, providerRole)
	bookings.GET("/search", bookingController.SearchBookings, adminRole)
	bookings.GET("/export/csv", bookingController.ExportBookingsCSV, adminRole)

	provider := e.Group("/api/provider/bookings")
	provider.Use(middleware.JWTMiddleware())
	provider.Use(middleware.RequireUserType(models.UserTypeProvider, models.UserTypeAdmin))
	provider.GET("", bookingController.GetProviderBookings)
	provider.GET("/dashboard", bookingController.GetDashboard)
	provider.GET("/stats", bookingController.GetBookingStats)

	admin := e.Group("/api/admin/bookings")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType(models.UserTypeAdmin))
	admin.GET("", bookingController.SearchBookings)
	admin.GET("/stats", bookingController.GetBookingStats)
	admin.GET("/export", bookingController.ExportBookingsCSV)
}
