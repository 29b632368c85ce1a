// Package auth issues and validates the bearer tokens that carry a
// caller's identity, and defines the Identity value the middleware puts
// into the request context.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Identity is the authenticated caller as seen by every layer above the
// middleware. It is built once from the token claims; handlers never
// touch raw claims.
type Identity struct {
	UserID uint64
	Email  string
	Role   string
}

// ErrInvalidToken covers every parse or validation failure, including
// expiry. Callers only need to know the token is unusable.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken is a signed JWT along with its expiry, returned to the
// client on register and login.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewToken builds and signs an HS256 JWT for the identity. The token
// carries the user id as subject plus email and role claims, expires
// after ttlDays, and is the only session state the server hands out.
func NewToken(secret string, id Identity, ttlDays int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlDays) * 24 * time.Hour)
	claims := jwt.MapClaims{
		"sub":   id.UserID,
		"email": id.Email,
		"role":  id.Role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseToken validates a raw bearer token and reconstructs the Identity
// it carries. Any failure, wrong algorithm, bad signature, expired or
// malformed claims, comes back as ErrInvalidToken.
func ParseToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	// Numeric claims decode as float64 from JSON.
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return Identity{}, ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: uint64(sub), Email: email, Role: role}, nil
}
