package controllers

import (
	"testing"

	"github.com/beautycort/beautycort_backend/models"
)

func TestCallbackSupersedes(t *testing.T) {
	tests := []struct {
		name          string
		sessionStatus string
		success       bool
		want          bool
	}{
		{"failure on pending session", models.PaymentStatusPending, false, true},
		{"failure on failed session", models.PaymentStatusFailed, false, true},
		{"failure on paid session", models.PaymentStatusPaid, false, false},
		{"success on pending session", models.PaymentStatusPending, true, true},
		{"success replay on paid session", models.PaymentStatusPaid, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := callbackSupersedes(tt.sessionStatus, tt.success); got != tt.want {
				t.Errorf("callbackSupersedes(%q, %v) = %v, want %v", tt.sessionStatus, tt.success, got, tt.want)
			}
		})
	}
}
