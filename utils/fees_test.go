package utils

import (
	"testing"

	"github.com/beautycort/beautycort_backend/models"
)

func TestPlatformFee(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   float64
	}{
		{"small booking", 10.0, 2.0},
		{"exactly at threshold", 25.0, 2.0},
		{"just above threshold", 25.001, 5.0},
		{"large booking", 100.0, 5.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlatformFee(tt.amount); got != tt.want {
				t.Errorf("PlatformFee(%v) = %v, want %v", tt.amount, got, tt.want)
			}
		})
	}
}

func TestSplitFees(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		wantPlatform float64
		wantProvider float64
	}{
		{"small booking", 20.0, 2.0, 18.0},
		{"threshold booking", 25.0, 2.0, 23.0},
		{"large booking", 80.0, 5.0, 75.0},
		{"fils rounding", 30.5555, 5.0, 25.556},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform, provider := SplitFees(tt.amount)
			if platform != tt.wantPlatform {
				t.Errorf("platform fee = %v, want %v", platform, tt.wantPlatform)
			}
			if provider != tt.wantProvider {
				t.Errorf("provider fee = %v, want %v", provider, tt.wantProvider)
			}
		})
	}
}

func TestValidatePaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		amount  float64
		wantErr bool
	}{
		{"cash small amount", models.PaymentMethodCash, 50.0, false},
		{"cash just below threshold", models.PaymentMethodCash, 149.999, false},
		{"cash at threshold", models.PaymentMethodCash, 150.0, true},
		{"card at threshold", models.PaymentMethodCard, 150.0, true},
		{"card above threshold", models.PaymentMethodCard, 200.0, true},
		{"online above threshold", models.PaymentMethodOnline, 500.0, false},
		{"online small amount", models.PaymentMethodOnline, 10.0, false},
		{"unknown method", "cheque", 10.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePaymentMethod(tt.method, tt.amount)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePaymentMethod(%q, %v) error = %v, wantErr %v", tt.method, tt.amount, err, tt.wantErr)
			}
		})
	}
}
