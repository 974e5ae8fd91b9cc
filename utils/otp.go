// utils/otp.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/beautycort/beautycort_backend/models"
)

// OTPExpiry is how long a code stays valid
const OTPExpiry = 10 * time.Minute

// GenerateSecureOTP returns a 6-digit numeric code from crypto/rand
func GenerateSecureOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidateOTPAttempts rate-limits OTP requests per phone number
func ValidateOTPAttempts(phone string, rdb *redis.Client) error {
	key := "otp_attempts:" + phone
	attempts, err := rdb.Incr(context.Background(), key).Result()
	if err != nil {
		return err
	}

	// Set expiry if first attempt
	if attempts == 1 {
		rdb.Expire(context.Background(), key, 1*time.Hour)
	}

	// Limit to 5 attempts per hour
	if attempts > 5 {
		return errors.New("too many OTP attempts")
	}

	return nil
}

// StoreOTP keeps the pending verification in Redis until it expires
func StoreOTP(rdb *redis.Client, phone, otp, language string) error {
	record := models.PhoneOTP{
		Phone:     phone,
		OTP:       otp,
		Language:  language,
		ExpiresAt: time.Now().Add(OTPExpiry),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return rdb.Set(context.Background(), "otp:"+phone, data, OTPExpiry).Err()
}

// VerifyOTP checks a submitted code against the stored one. The record is
// deleted on success so a code cannot be replayed.
func VerifyOTP(rdb *redis.Client, phone, otp string) error {
	data, err := rdb.Get(context.Background(), "otp:"+phone).Bytes()
	if err == redis.Nil {
		return errors.New("no pending verification for this phone")
	}
	if err != nil {
		return err
	}

	var record models.PhoneOTP
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	if time.Now().After(record.ExpiresAt) {
		rdb.Del(context.Background(), "otp:"+phone)
		return errors.New("OTP has expired")
	}
	if record.OTP != otp {
		return errors.New("incorrect OTP")
	}

	rdb.Del(context.Background(), "otp:"+phone)
	return nil
}
