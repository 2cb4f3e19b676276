// Package auth implements the two credential primitives of padkeeper:
// signed session tokens (JWT) and the salted password hash shared by
// identity passwords and group/pad passphrases.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dsmirnov/padkeeper/internal/common"
)

// Namespace separates regular-user sessions from administrator sessions.
// A token minted in one namespace can never validate a session in the other.
type Namespace string

const (
	NamespaceUser  Namespace = "user"
	NamespaceAdmin Namespace = "admin"
)

// Claims carries the session reference embedded in a bearer token: the
// login, the per-login-event random key, and the registry namespace.
// Tokens carry no expiry; their lifetime is bounded by the signing secret,
// which is regenerated on every process start.
type Claims struct {
	jwt.RegisteredClaims
	Login      string `json:"login"`
	SessionKey string `json:"key"`
	Namespace  string `json:"ns"`
}

// GenerateToken mints a signed HS256 token referencing a session.
func GenerateToken(login, sessionKey string, ns Namespace, secretKey []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Login:      login,
		SessionKey: sessionKey,
		Namespace:  string(ns),
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken decodes and verifies a bearer token. Any decode or signature
// failure is reported as common.ErrInvalidToken; callers treat that as
// "unauthenticated", not as a hard error.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.Login == "" || claims.SessionKey == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
