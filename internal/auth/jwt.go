// Package auth issues and verifies the signed tokens dashboard users
// present on protected routes, and hashes their passwords.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Cachefy/Cachefy-Server-sub000/internal/models"
)

// Identity is the authenticated dashboard user attached to the request
// context by the bearer-token gate.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// TokenService signs and verifies HS256 tokens with a shared secret.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a token service with the given secret and expiry.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), expiry: expiry}
}

// Issue signs a token for the given user.
func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  user.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token string and returns the identity it
// carries. Expired, malformed, or wrongly-signed tokens all fail.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &Identity{
		UserID: claimString(claims, "sub"),
		Email:  claimString(claims, "email"),
		Role:   claimString(claims, "role"),
	}, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if value, ok := claims[key].(string); ok {
		return value
	}
	return ""
}
