package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/beautycort/beautycort_backend/controllers"
	"github.com/beautycort/beautycort_backend/middleware"
)

// RegisterAuthRoutes sets up the authentication endpoints
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, rdb *redis.Client) {
	authController := controllers.NewAuthController(db, rdb)

	auth := e.Group("/api/auth")
	auth.POST("/customer/send-otp", authController.SendOTP)
	auth.POST("/customer/verify-otp", authController.VerifyOTP)
	auth.POST("/refresh", authController.RefreshToken)
	auth.POST("/google", authController.GoogleSignIn)
	auth.POST("/admin/login", authController.AdminLogin)

	protected := e.Group("/api/auth")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
}
