package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/BradenHooton/loginguard/internal/models"
)

// TokenManager handles service-to-service JWT generation and validation for
// the guard endpoint. The guard is meant to sit behind an auth front door;
// the token proves the caller is that front door, not an end user.
type TokenManager struct {
	secret string
	expiry time.Duration
}

// ServiceClaims are the claims carried by a service token
type ServiceClaims struct {
	Service string `json:"service"`
	jwt.RegisteredClaims
}

// NewTokenManager creates a new TokenManager
func NewTokenManager(secret string, expiry time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		expiry: expiry,
	}
}

// GenerateServiceToken creates a signed service token with a unique JTI
func (tm *TokenManager) GenerateServiceToken(service string) (string, error) {
	claims := &ServiceClaims{
		Service: service,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tm.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign service token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a service token
func (tm *TokenManager) ValidateToken(tokenString string) (*ServiceClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &ServiceClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(tm.secret), nil
	})
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(*ServiceClaims)
	if !ok || !parsed.Valid {
		return nil, models.ErrUnauthorized
	}

	return claims, nil
}
