package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/routes"
	"github.com/beautycort/beautycort_backend/utils"
	"github.com/beautycort/beautycort_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase for push notifications
	config.InitFirebase()

	// Connect to Redis (OTP storage, token blacklist, availability cache)
	rdb := config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Prepare the uploads directories for provider media
	if err := utils.InitializeStorage(); err != nil {
		log.Printf("Warning: failed to prepare upload directories: %v", err)
	}

	// Create WebSocket hub for live booking events
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Expire blacklisted tokens from the in-memory fallback
	go middleware.CleanupBlacklist()

	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	rateLimiter := middleware.NewRateLimiter()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.GlobalCORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		AllowedDomains: []string{"*"},
		AllowInlineJS:  false,
	}))

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "BeautyCort Backend is running",
			"version": "1.0",
		})
	})

	routes.SetupRoutes(e, client, rdb, wsHub)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
