package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
)

// RegisterNotificationRoutes sets up in-app notification endpoints
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client) {
	notificationController := controllers.NewNotificationController(db)

	notifications := e.Group("/api/notifications")
	notifications.Use(middleware.JWTMiddleware())
	notifications.GET("", notificationController.GetNotifications)
	notifications.PUT("/:id/read", notificationController.MarkNotificationRead)
	notifications.PUT("/read-all", notificationController.MarkAllNotificationsRead)
	notifications.PUT("/fcm-token", notificationController.UpdateFCMToken)
}
