package routes

import (
	"net/http"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/utils"
	"github.com/beautycort/beautycort_backend/websocket"
)

// SetupRoutes configures all API routes by calling the individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, rdb *redis.Client, hub *websocket.Hub) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Uploaded provider media is served statically
	e.Static("/uploads", "uploads")

	RegisterAuthRoutes(e, db, rdb)
	RegisterBookingRoutes(e, db, rdb, hub)
	RegisterProviderRoutes(e, db)
	RegisterReviewRoutes(e, db)
	RegisterNotificationRoutes(e, db)
	RegisterPaymentRoutes(e, db, hub)

	registerWebsocketRoute(e, db, hub)
}

// registerWebsocketRoute upgrades authenticated users to a live
// connection for booking events.
func registerWebsocketRoute(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	ws := e.Group("/ws")
	ws.Use(middleware.JWTMiddleware())
	ws.GET("", func(c echo.Context) error {
		userID, err := utils.GetUserIDFromToken(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized",
			})
		}
		return websocket.HandleWebSocket(c, hub, userID)
	})
}
