// Package auth reads the CampHub bearer token. The client never holds the
// signing secret, so it only decodes claims; Manager signs and verifies
// tokens for the local stub backend.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the token.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Claims is the payload of a CampHub access token.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the principal may use the back-office routes.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// Principal returns the user id, falling back to the subject claim.
func (c *Claims) Principal() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

// ParseUnverified decodes the claims of tokenString without checking the
// signature. Use it only to decide presentation (admin routes, labels);
// the backend still authorises every request.
func ParseUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decoding token claims: %w", err)
	}
	return claims, nil
}

// Manager issues and validates HS256 tokens.
type Manager struct {
	SecretKey []byte
	Duration  time.Duration
}

// NewManager creates a Manager signing with secretKey.
func NewManager(secretKey string, duration time.Duration) *Manager {
	return &Manager{
		SecretKey: []byte(secretKey),
		Duration:  duration,
	}
}

// GenerateToken signs a token for the given user.
func (m *Manager) GenerateToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.SecretKey)
}

// ValidateToken verifies the signature and expiry of tokenString.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.SecretKey, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
