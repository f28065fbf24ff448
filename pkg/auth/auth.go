// Package auth provides bcrypt password hashing and HS256 JWT issuing/parsing.
// This is a leaf package with no domain dependencies. Used by internal/domain/auth and internal/api/middleware.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ===== CONSTANTS =====

// BCryptCost is the work factor for bcrypt.
const BCryptCost = 12

// DefaultJWTExpiry is used when an Issuer is built with a non-positive expiry.
const DefaultJWTExpiry = 24 * time.Hour

// minSecretLen rejects secrets too short to make HS256 meaningful.
const minSecretLen = 16

var (
	// ErrWeakSecret is returned by NewIssuer for an empty or short secret.
	ErrWeakSecret = errors.New("jwt secret must be at least 16 bytes")
	errEmptyToken = errors.New("token is empty")
)

// ===== BCRYPT FUNCTIONS =====

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BCryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword verifies a plaintext password against a bcrypt hash.
// Returns false (not error) for invalid hashes to avoid leaking hash format info in responses.
func VerifyPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ===== JWT FUNCTIONS =====

// Claims represents the JWT claims for arcana. UserID is the only custom claim.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with one secret and expiry.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. expiry <= 0 means DefaultJWTExpiry.
func NewIssuer(secret string, expiry time.Duration) (*Issuer, error) {
	if len(secret) < minSecretLen {
		return nil, ErrWeakSecret
	}
	if expiry <= 0 {
		expiry = DefaultJWTExpiry
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Generate creates a signed token for userID.
func (i *Issuer) Generate(userID string) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its claims.
// Returns error if the token is invalid, expired, malformed or signed with another algorithm.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		// HMAC only: blocks algorithm substitution
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid JWT claims or signature")
	}
	return claims, nil
}
