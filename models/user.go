package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User types
const (
	UserTypeCustomer = "customer"
	UserTypeProvider = "provider"
	UserTypeAdmin    = "admin"
)

// User model. Customers sign up with phone + OTP, so Password is only
// set for admin accounts.
type User struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Phone          string              `json:"phone" bson:"phone"`
	FullName       string              `json:"fullName" bson:"fullName"`
	Email          string              `json:"email,omitempty" bson:"email,omitempty"`
	Password       string              `json:"-" bson:"password,omitempty"`
	Language       string              `json:"language" bson:"language"` // "en" or "ar"
	UserType       string              `json:"userType" bson:"userType"`
	ProviderID     *primitive.ObjectID `json:"providerId,omitempty" bson:"providerId,omitempty"`
	FCMToken       string              `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	GoogleID       string              `json:"-" bson:"googleId,omitempty"`
	IsActive       bool                `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time           `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// SendOTPRequest starts the phone verification flow
type SendOTPRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Language string `json:"language,omitempty"`
}

// VerifyOTPRequest completes the phone verification flow
type VerifyOTPRequest struct {
	Phone    string `json:"phone" validate:"required"`
	OTP      string `json:"otp" validate:"required,len=6"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Language string `json:"language,omitempty"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// GoogleSignInRequest carries a Google ID token from the mobile app
type GoogleSignInRequest struct {
	IDToken  string `json:"idToken" validate:"required"`
	FCMToken string `json:"fcmToken,omitempty"`
}

// AdminLoginRequest is email + password login for admin accounts
type AdminLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginData is returned from all successful authentication flows
type LoginData struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
	IsNewUser    bool   `json:"isNewUser,omitempty"`
}
