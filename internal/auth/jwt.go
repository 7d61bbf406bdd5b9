package auth

import (
	"errors"
	"fmt"
	"time"

	"campushire/pkg/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims carries only the user id. Tenancy and role are resolved
// fresh from the store on every request, never trusted from the token.
type SessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTUtil signs and verifies the session tokens. Access tokens are
// stateless; refresh tokens are additionally mirrored by a store row, which
// the service layer checks.
type JWTUtil struct {
	config *config.JWTConfig
}

func NewJWTUtil(config *config.JWTConfig) *JWTUtil {
	return &JWTUtil{config: config}
}

// AccessExpiry exposes the configured access token lifetime
func (j *JWTUtil) AccessExpiry() time.Duration { return j.config.AccessExpiry }

// RefreshExpiry exposes the configured refresh token lifetime
func (j *JWTUtil) RefreshExpiry() time.Duration { return j.config.RefreshExpiry }

// GenerateAccessToken creates a short-lived signed access token
func (j *JWTUtil) GenerateAccessToken(userID uint) (string, error) {
	return j.sign(userID, j.config.AccessSigningKey, j.config.AccessExpiry)
}

// GenerateRefreshToken creates a long-lived signed refresh token. The
// caller persists the matching store row.
func (j *JWTUtil) GenerateRefreshToken(userID uint) (string, error) {
	return j.sign(userID, j.config.RefreshSigningKey, j.config.RefreshExpiry)
}

func (j *JWTUtil) sign(userID uint, key string, expiry time.Duration) (string, error) {
	// The unique ID keeps two tokens for the same user distinct even when
	// issued within the same second.
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(key))
}

// VerifyAccessToken validates signature and expiry; no store lookup
func (j *JWTUtil) VerifyAccessToken(tokenString string) (uint, error) {
	return j.verify(tokenString, j.config.AccessSigningKey)
}

// VerifyRefreshToken validates signature and expiry of a refresh token.
// Existence of the mirroring store row is the service layer's concern.
func (j *JWTUtil) VerifyRefreshToken(tokenString string) (uint, error) {
	return j.verify(tokenString, j.config.RefreshSigningKey)
}

func (j *JWTUtil) verify(tokenString, key string) (uint, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(key), nil
		},
	)
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
