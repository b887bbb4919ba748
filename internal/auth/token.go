package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the session cookie carrying the signed token.
	CookieName = "auth-token"
	// TokenTTL is the fixed lifetime of an issued token.
	TokenTTL = 7 * 24 * time.Hour
)

var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Claims embeds the registered JWT claims; the user ID travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID valid for lifetime.
func IssueToken(userID string, secret []byte, lifetime time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	})

	return token.SignedString(secret)
}

// VerifyToken checks signature and expiry and returns the embedded user ID.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", ErrTokenSignature
	case err != nil:
		return "", ErrTokenMalformed
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}
