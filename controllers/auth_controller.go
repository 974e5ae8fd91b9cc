package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/beautycort/beautycort_backend/config"
	"github.com/beautycort/beautycort_backend/middleware"
	"github.com/beautycort/beautycort_backend/models"
	"github.com/beautycort/beautycort_backend/services"
	"github.com/beautycort/beautycort_backend/utils"
)

// AuthController handles authentication endpoints
type AuthController struct {
	db    *mongo.Client
	redis *redis.Client
}

// NewAuthController creates a new auth controller
func NewAuthController(db *mongo.Client, rdb *redis.Client) *AuthController {
	return &AuthController{db: db, redis: rdb}
}

func (ac *AuthController) usersCollection() *mongo.Collection {
	return config.GetCollection(ac.db, "users")
}

// SendOTP generates a one-time code and delivers it over SMS. The code
// lives in Redis for 10 minutes; requests per phone are capped per hour.
func (ac *AuthController) SendOTP(c echo.Context) error {
	var req models.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Phone number is required",
			MessageAr: "رقم الهاتف مطلوب",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid Jordanian mobile number",
			MessageAr: "رقم الهاتف الأردني غير صالح",
		})
	}

	if ac.redis == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:    http.StatusServiceUnavailable,
			Message:   "Verification service is temporarily unavailable",
			MessageAr: "خدمة التحقق غير متوفرة مؤقتاً",
		})
	}

	if err := utils.ValidateOTPAttempts(phone, ac.redis); err != nil {
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:    http.StatusTooManyRequests,
			Message:   "Too many verification attempts. Please try again later",
			MessageAr: "محاولات تحقق كثيرة. يرجى المحاولة لاحقاً",
		})
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to generate verification code",
			MessageAr: "فشل إنشاء رمز التحقق",
		})
	}

	language := req.Language
	if language != "ar" {
		language = "en"
	}

	if err := utils.StoreOTP(ac.redis, phone, otp, language); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to store verification code",
			MessageAr: "فشل حفظ رمز التحقق",
		})
	}

	if err := utils.SendOTPViaSMS(phone, otp, language); err != nil {
		log.Printf("Failed to send OTP SMS to %s: %v", phone, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to send verification code",
			MessageAr: "فشل إرسال رمز التحقق",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Verification code sent",
		MessageAr: "تم إرسال رمز التحقق",
		Data: map[string]interface{}{
			"phone":     phone,
			"expiresIn": int(utils.OTPExpiry.Seconds()),
		},
	})
}

// VerifyOTP checks the submitted code and signs the user in, creating
// the customer account on first verification.
func (ac *AuthController) VerifyOTP(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid request",
			MessageAr: "طلب غير صالح",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Phone and 6-digit code are required",
			MessageAr: "رقم الهاتف ورمز مكون من 6 أرقام مطلوبان",
		})
	}

	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Invalid Jordanian mobile number",
			MessageAr: "رقم الهاتف الأردني غير صالح",
		})
	}

	if ac.redis == nil {
		return c.JSON(http.StatusServiceUnavailable, models.Response{
			Status:    http.StatusServiceUnavailable,
			Message:   "Verification service is temporarily unavailable",
			MessageAr: "خدمة التحقق غير متوفرة مؤقتاً",
		})
	}

	if err := utils.VerifyOTP(ac.redis, phone, req.OTP); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:    http.StatusUnauthorized,
			Message:   "Invalid or expired verification code",
			MessageAr: "رمز التحقق غير صالح أو منتهي الصلاحية",
		})
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := ac.usersCollection()
	now := time.Now()

	var user models.User
	isNewUser := false
	err = users.FindOne(dbCtx, bson.M{"phone": phone}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		language := req.Language
		if language != "ar" {
			language = "en"
		}
		user = models.User{
			Phone:     phone,
			FullName:  utils.SanitizeInput(req.FullName),
			Language:  language,
			UserType:  models.UserTypeCustomer,
			FCMToken:  req.FCMToken,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if req.Email != "" {
			email, emailErr := utils.SanitizeEmail(req.Email)
			if emailErr == nil {
				user.Email = email
			}
		}
		result, insertErr := users.InsertOne(dbCtx, user)
		if insertErr != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:    http.StatusInternalServerError,
				Message:   "Failed to create account",
				MessageAr: "فشل إنشاء الحساب",
			})
		}
		user.ID = result.InsertedID.(primitive.ObjectID)
		isNewUser = true
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to look up account",
			MessageAr: "فشل البحث عن الحساب",
		})
	} else {
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:    http.StatusForbidden,
				Message:   "Account is deactivated",
				MessageAr: "الحساب معطل",
			})
		}
		update := bson.M{"lastActivityAt": now, "updatedAt": now}
		if req.FCMToken != "" {
			update["fcmToken"] = req.FCMToken
			user.FCMToken = req.FCMToken
		}
		if _, err := users.UpdateOne(dbCtx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
			log.Printf("Failed to update last activity for %s: %v", user.ID.Hex(), err)
		}
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Phone, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to generate tokens",
			MessageAr: "فشل إنشاء الرموز",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Signed in successfully",
		MessageAr: "تم تسجيل الدخول بنجاح",
		Data: models.LoginData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         &user,
			IsNewUser:    isNewUser,
		},
	})
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// The used refresh token is blacklisted so it cannot be replayed.
func (ac *AuthController) RefreshToken(c echo.Context) error {
	var req models.RefreshTokenRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "Refresh token is required",
			MessageAr: "رمز التحديث مطلوب",
		})
	}

	if middleware.IsTokenBlacklisted(req.RefreshToken) {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:    http.StatusUnauthorized,
			Message:   "Refresh token has been revoked",
			MessageAr: "تم إلغاء رمز التحديث",
		})
	}

	claims, err := middleware.ParseToken(req.RefreshToken)
	if err != nil || !claims.Refresh {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:    http.StatusUnauthorized,
			Message:   "Invalid or expired refresh token",
			MessageAr: "رمز التحديث غير صالح أو منتهي الصلاحية",
		})
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token subject",
		})
	}

	var user models.User
	if err := ac.usersCollection().FindOne(dbCtx, bson.M{"_id": userID, "isActive": true}).Decode(&user); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:    http.StatusUnauthorized,
			Message:   "Account not found or deactivated",
			MessageAr: "الحساب غير موجود أو معطل",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Phone, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:    http.StatusInternalServerError,
			Message:   "Failed to generate tokens",
			MessageAr: "فشل إنشاء الرموز",
		})
	}

	// Single-use refresh tokens
	middleware.BlacklistToken(req.RefreshToken, time.Unix(claims.ExpiresAt, 0))

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Token refreshed",
		MessageAr: "تم تحديث الرمز",
		Data: models.LoginData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         &user,
		},
	})
}

// Logout blacklists the current access token until its natural expiry
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Missing authorization header",
		})
	}
	tokenString := authHeader[7:]

	claims, err := middleware.ParseToken(tokenString)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	middleware.BlacklistToken(tokenString, time.Unix(claims.ExpiresAt, 0))

	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Logged out successfully",
		MessageAr: "تم تسجيل الخروج بنجاح",
	})
}

// GoogleSignIn verifies a Google ID token and signs the user in,
// creating a customer account on first sign-in.
func (ac *AuthController) GoogleSignIn(c echo.Context) error {
	var req models.GoogleSignInRequest
	if err := c.Bind(&req); err != nil || req.IDToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:    http.StatusBadRequest,
			Message:   "ID token is required",
			MessageAr: "رمز الهوية مطلوب",
		})
	}

	verifyCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	googleUser, err := services.VerifyGoogleIDToken(verifyCtx, req.IDToken)
	if err != nil {
		log.Printf("Google sign-in verification failed: %v", err)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:    http.StatusUnauthorized,
			Message:   "Invalid Google ID token",
			MessageAr: "رمز هوية غوغل غير صالح",
		})
	}

	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer dbCancel()

	users := ac.usersCollection()
	now := time.Now()

	filter := bson.M{"googleId": googleUser.GoogleID}
	if googleUser.Email != "" {
		filter = bson.M{"$or": []bson.M{
			{"googleId": googleUser.GoogleID},
			{"email": googleUser.Email},
		}}
	}

	var user models.User
	isNewUser := false
	err = users.FindOne(dbCtx, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		user = models.User{
			FullName:  googleUser.FullName,
			Email:     googleUser.Email,
			GoogleID:  googleUser.GoogleID,
			Language:  "en",
			UserType:  models.UserTypeCustomer,
			FCMToken:  req.FCMToken,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		result, insertErr := users.InsertOne(dbCtx, user)
		if insertErr != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:    http.StatusInternalServerError,
				Message:   "Failed to create account",
				MessageAr: "فشل إنشاء الحساب",
			})
		}
		user.ID = result.InsertedID.(primitive.ObjectID)
		isNewUser = true
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to look up account",
		})
	} else {
		if !user.IsActive {
			return c.JSON(http.StatusForbidden, models.Response{
				Status:    http.StatusForbidden,
				Message:   "Account is deactivated",
				MessageAr: "الحساب معطل",
			})
		}
		update := bson.M{"googleId": googleUser.GoogleID, "lastActivityAt": now, "updatedAt": now}
		if req.FCMToken != "" {
			update["fcmToken"] = req.FCMToken
		}
		if _, err := users.UpdateOne(dbCtx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
			log.Printf("Failed to update Google account %s: %v", user.ID.Hex(), err)
		}
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Phone, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:    http.StatusOK,
		Message:   "Signed in successfully",
		MessageAr: "تم تسجيل الدخول بنجاح",
		Data: models.LoginData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         &user,
			IsNewUser:    isNewUser,
		},
	})
}

// AdminLogin is email + password login for back-office accounts
func (ac *AuthController) AdminLogin(c echo.Context) error {
	var req models.AdminLoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = ac.usersCollection().FindOne(dbCtx, bson.M{
		"email":    email,
		"userType": models.UserTypeAdmin,
		"isActive": true,
	}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	}

	token, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Phone, user.UserType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signed in successfully",
		Data: models.LoginData{
			Token:        token,
			RefreshToken: refreshToken,
			User:         &user,
		},
	})
}
