package utils

import "testing"

func TestSanitizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"e164 form", "+962791234567", "+962791234567", false},
		{"double zero prefix", "00962781234567", "+962781234567", false},
		{"bare country code", "962771234567", "+962771234567", false},
		{"local form", "0791234567", "+962791234567", false},
		{"with spaces and dashes", "079-123 4567", "+962791234567", false},
		{"landline prefix", "+962651234567", "", true},
		{"non-jordanian carrier", "+962761234567", "", true},
		{"too short", "+96279123456", "", true},
		{"too long", "+9627912345678", "", true},
		{"empty", "", "", true},
		{"garbage", "not-a-phone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePhone(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizePhone(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "user@example.com", "user@example.com", false},
		{"uppercase normalized", "  User@Example.COM ", "user@example.com", false},
		{"missing domain", "user@", "", true},
		{"missing at", "userexample.com", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeEmail(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeEmail(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"trims whitespace", "  salon notes  ", "salon notes"},
		{"escapes html", "<b>bold</b>", "&lt;b&gt;bold&lt;/b&gt;"},
		{"arabic preserved", "صالون الجمال", "صالون الجمال"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeInput(tt.input); got != tt.want {
				t.Errorf("SanitizeInput(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
