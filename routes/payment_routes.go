package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/services"
	"github.com/beautycort/beautycort_backend/websocket"
)

// RegisterPaymentRoutes sets up online payment collection endpoints
func RegisterPaymentRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	paymentController := controllers.NewPaymentController(db, services.NewPaymentService(), hub)

	// Gateway callbacks authenticate via the gateway status re-check,
	// not a user token
	e.POST("/api/payments/callback/success", paymentController.PaymentSuccessCallback)
	e.POST("/api/payments/callback/failure", paymentController.PaymentFailureCallback)

	payments := e.Group("/api/payments")
	payments.Use(middleware.JWTMiddleware())
	payments.POST("/bookings/:id/checkout", paymentController.CreateCheckout)
	payments.GET("/bookings/:id/status", paymentController.GetPaymentStatus)
}
