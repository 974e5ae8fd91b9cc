package utils

import "testing"

func TestGenerateSecureOTP(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateSecureOTP()
		if err != nil {
			t.Fatalf("GenerateSecureOTP error: %v", err)
		}
		if len(otp) != 6 {
			t.Fatalf("OTP %q has length %d, want 6", otp, len(otp))
		}
		for _, r := range otp {
			if r < '0' || r > '9' {
				t.Fatalf("OTP %q contains non-digit %q", otp, r)
			}
		}
		seen[otp] = true
	}
	// 50 draws from a million values colliding every time would mean a
	// broken generator
	if len(seen) < 2 {
		t.Error("GenerateSecureOTP returned the same code repeatedly")
	}
}
