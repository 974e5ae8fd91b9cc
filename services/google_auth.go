package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// GoogleUser is the identity extracted from a verified Google ID token
type GoogleUser struct {
	GoogleID string
	Email    string
	FullName string
}

// VerifyGoogleIDToken validates a Google ID token signature against
// Google's published JWKS and returns the user identity from its claims.
func VerifyGoogleIDToken(ctx context.Context, idToken string) (*GoogleUser, error) {
	parts := strings.Split(idToken, ".")
	if len(parts) < 2 {
		return nil, errors.New("invalid ID token format")
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, errors.New("invalid JWT header")
	}
	var header struct {
		Kid string `json:"kid"`
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, errors.New("invalid JWT header JSON")
	}

	jwkSet, err := jwk.Fetch(ctx, googleJWKSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Google public keys: %w", err)
	}

	key, found := jwkSet.LookupKeyID(header.Kid)
	if !found {
		return nil, errors.New("google public key not found")
	}

	var pubkey interface{}
	if err := key.Raw(&pubkey); err != nil {
		return nil, fmt.Errorf("failed to parse Google public key: %w", err)
	}

	parsedToken, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != header.Alg {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return pubkey, nil
	})
	if err != nil || !parsedToken.Valid {
		return nil, errors.New("invalid or expired Google ID token")
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}

	// Audience must be our OAuth client when configured
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		if aud, _ := claims["aud"].(string); aud != clientID {
			return nil, errors.New("ID token issued for a different client")
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("google user ID not found in token")
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return &GoogleUser{
		GoogleID: sub,
		Email:    email,
		FullName: name,
	}, nil
}
