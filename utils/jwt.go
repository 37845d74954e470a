package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"agriportal-go/models"
)

// DefaultTokenTTL matches the max-age of the token cookie.
const DefaultTokenTTL = 7 * 24 * time.Hour

const tokenIssuer = "agriportal-go"

// ErrInvalidToken is returned for every verification failure: missing token,
// bad signature, expiry or an unknown role. Callers treat it as
// "unauthenticated" and never need to tell the cases apart.
var ErrInvalidToken = errors.New("invalid or expired token")

var (
	jwtSecret []byte
	tokenTTL  = DefaultTokenTTL
)

type Claims struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// InitializeJWT sets up the signing secret and token lifetime.
func InitializeJWT(secret string, ttl time.Duration) error {
	if secret == "" {
		return errors.New("JWT secret must not be empty")
	}
	if len(secret) < 32 {
		slog.Warn("JWT secret should be at least 32 characters", "length", len(secret))
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	jwtSecret = []byte(secret)
	tokenTTL = ttl
	return nil
}

// TokenTTL is the lifetime given to freshly issued tokens.
func TokenTTL() time.Duration {
	return tokenTTL
}

func GenerateToken(id string, role models.Role) (string, error) {
	if jwtSecret == nil {
		return "", errors.New("JWT secret not initialized")
	}
	if id == "" || !role.Valid() {
		return "", fmt.Errorf("cannot issue token for id %q role %q", id, role)
	}

	now := time.Now()
	claims := Claims{
		ID:   id,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature and expiry and returns the embedded claims.
// It has no side effects, so verifying the same token twice yields the same
// claims until it expires.
func VerifyToken(tokenString string) (*Claims, error) {
	if tokenString == "" || jwtSecret == nil {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
