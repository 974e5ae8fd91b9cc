package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, refreshToken, err := GenerateJWT("507f1f77bcf86cd799439011", "+962791234567", "customer")
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}
	if token == "" || refreshToken == "" {
		t.Fatal("GenerateJWT returned empty tokens")
	}
	if token == refreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken(access) error: %v", err)
	}
	if claims.UserID != "507f1f77bcf86cd799439011" {
		t.Errorf("UserID = %q", claims.UserID)
	}
	if claims.Phone != "+962791234567" {
		t.Errorf("Phone = %q", claims.Phone)
	}
	if claims.UserType != "customer" {
		t.Errorf("UserType = %q", claims.UserType)
	}
	if claims.Refresh {
		t.Error("access token should not carry the refresh flag")
	}

	refreshClaims, err := ParseToken(refreshToken)
	if err != nil {
		t.Fatalf("ParseToken(refresh) error: %v", err)
	}
	if !refreshClaims.Refresh {
		t.Error("refresh token should carry the refresh flag")
	}
	if refreshClaims.ExpiresAt <= claims.ExpiresAt {
		t.Error("refresh token should outlive the access token")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	claims := &JwtCustomClaims{
		UserID: "507f1f77bcf86cd799439011",
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing expired token: %v", err)
	}

	if _, err := ParseToken(expired); err == nil {
		t.Error("ParseToken accepted an expired token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, _, err := GenerateJWT("507f1f77bcf86cd799439011", "+962791234567", "customer")
	if err != nil {
		t.Fatalf("GenerateJWT error: %v", err)
	}

	t.Setenv("JWT_SECRET", "different-secret")
	if _, err := ParseToken(token); err == nil {
		t.Error("ParseToken accepted a token signed with a different secret")
	}
}

func TestTokenBlacklist(t *testing.T) {
	token := "some.jwt.token"
	if IsTokenBlacklisted(token) {
		t.Fatal("token blacklisted before BlacklistToken")
	}

	BlacklistToken(token, time.Now().Add(time.Hour))
	if !IsTokenBlacklisted(token) {
		t.Error("token not blacklisted after BlacklistToken")
	}

	// Already-expired tokens are not worth tracking
	expired := "expired.jwt.token"
	BlacklistToken(expired, time.Now().Add(-time.Minute))
	if IsTokenBlacklisted(expired) {
		t.Error("expired token should not enter the blacklist")
	}
}

func TestExtractUserType(t *testing.T) {
	e := echo.New()

	// Context key set by the JWT success handler
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("userType", "provider")
	if got := ExtractUserType(c); got != "provider" {
		t.Errorf("ExtractUserType from context key = %q, want provider", got)
	}

	// Falls back to the raw token claims
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.Set("user", &jwt.Token{Claims: &JwtCustomClaims{UserType: "admin"}})
	if got := ExtractUserType(c); got != "admin" {
		t.Errorf("ExtractUserType from claims = %q, want admin", got)
	}

	// Unauthenticated request
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := ExtractUserType(c); got != "" {
		t.Errorf("ExtractUserType without auth = %q, want empty", got)
	}
}
