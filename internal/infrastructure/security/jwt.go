package security

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// IdentityClaims is the subset of the auth subsystem's token the
// telemetry engine is allowed to see. Only the opaque user id and a
// coarse profile summary cross the boundary; the raw id is immediately
// hashed by the session service and never attached to events.
type IdentityClaims struct {
	UserID            string `json:"sub"`
	Role              string `json:"role"`
	ProfileCompletion int    `json:"profileCompletion"`
}

// ValidateIdentityToken validates an HS256 bearer token from the auth
// subsystem and extracts the identity claims.
func ValidateIdentityToken(tokenString, jwtSecret string) (*IdentityClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	out := &IdentityClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.UserID = sub
	}
	if out.UserID == "" {
		return nil, errors.New("token missing subject")
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if pct, ok := claims["profileCompletion"].(float64); ok {
		out.ProfileCompletion = int(pct)
	}
	return out, nil
}
