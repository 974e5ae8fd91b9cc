package models

import (
	"time"
)

// PhoneOTP represents the OTP verification data kept in Redis while a
// phone number is being verified
type PhoneOTP struct {
	Phone     string    `json:"phone"`
	OTP       string    `json:"otp"`
	Language  string    `json:"language,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
	Verified  bool      `json:"verified"`
}
