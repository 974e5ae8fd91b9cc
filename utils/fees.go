// utils/fees.go
package utils

import (
	"errors"
	"math"

	"github.com/beautycort/beautycort_backend/models"
)

// Fee schedule in JOD. The platform takes a flat fee per booking, stepped
// on the booking amount; everything else goes to the provider.
const (
	SmallBookingThreshold = 25.0
	SmallBookingFee       = 2.0
	LargeBookingFee       = 5.0

	// Bookings above this amount must be paid online
	OnlinePaymentThreshold = 150.0
)

// PlatformFee returns the platform's flat fee for a booking amount
func PlatformFee(amount float64) float64 {
	if amount <= SmallBookingThreshold {
		return SmallBookingFee
	}
	return LargeBookingFee
}

// SplitFees returns (platformFee, providerFee) for a booking amount.
// Results are rounded to fils (3 decimal places, JOD subunit).
func SplitFees(amount float64) (float64, float64) {
	platform := PlatformFee(amount)
	provider := roundFils(amount - platform)
	return platform, provider
}

func roundFils(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ValidatePaymentMethod enforces the payment rules for a booking amount:
// cash and card are fine below the online threshold, from 150 JOD up
// only online payment is accepted.
func ValidatePaymentMethod(method string, amount float64) error {
	switch method {
	case models.PaymentMethodCash, models.PaymentMethodCard:
		if amount >= OnlinePaymentThreshold {
			return errors.New("online payment is required for this amount")
		}
		return nil
	case models.PaymentMethodOnline:
		return nil
	}
	return errors.New("unknown payment method")
}
