// Package auth encodes and decodes the signed access tokens handed to clients.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the username in "sub" and the session id in "jti".
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserName() string  { return c.Subject }
func (c *Claims) SessionID() string { return c.ID }

// GenerateToken signs an HS256 token for the given session.
func GenerateToken(userName, sessionID string, secretKey []byte, issuedAt, expiresAt time.Time) (string, error) {
	if len(secretKey) == 0 {
		return "", fmt.Errorf("empty signing key")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userName,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	return token.SignedString(secretKey)
}

// ParseToken validates signature, algorithm and expiry as of now. Every
// failure is reported as common.ErrUnauthorized.
func ParseToken(tokenString string, secretKey []byte, now time.Time) (*Claims, error) {
	if tokenString == "" || len(secretKey) == 0 {
		return nil, common.ErrUnauthorized
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return secretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !token.Valid {
		return nil, common.ErrUnauthorized
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrUnauthorized
	}

	return claims, nil
}
