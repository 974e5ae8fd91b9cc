// utils/valid.go
package utils

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
)

var jordanMobileRegex = regexp.MustCompile(`^\+9627[789]\d{7}$`)

// SanitizeInput sanitizes user input to prevent XSS and injection attacks
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = html.EscapeString(input)

	// Remove control characters
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, input)

	scriptRegex := regexp.MustCompile(`<script[^>]*>.*?</script>`)
	input = scriptRegex.ReplaceAllString(input, "")

	return input
}

// SanitizeEmail sanitizes and validates an email address
func SanitizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	if !emailRegex.MatchString(email) {
		return "", errors.New("invalid email format")
	}

	return email, nil
}

// SanitizePhone normalizes a Jordanian mobile number to E.164 (+9627xxxxxxxx).
// Accepted inputs: "+9627...", "009627...", "9627...", and local "07..." forms.
func SanitizePhone(phone string) (string, error) {
	phone = regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")
	if phone == "" {
		return "", errors.New("phone number is required")
	}

	switch {
	case strings.HasPrefix(phone, "+962"):
		// already E.164
	case strings.HasPrefix(phone, "00962"):
		phone = "+" + phone[2:]
	case strings.HasPrefix(phone, "962"):
		phone = "+" + phone
	case strings.HasPrefix(phone, "07"):
		phone = "+962" + phone[1:]
	default:
		return "", errors.New("not a Jordanian mobile number")
	}

	if !jordanMobileRegex.MatchString(phone) {
		return "", errors.New("invalid Jordanian mobile number")
	}

	return phone, nil
}
