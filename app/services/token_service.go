// Package services contains supporting application services.
package services

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Token validation errors
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// TokenClaims holds the verified identity carried by a bearer token.
type TokenClaims struct {
	Subject string
	Roles   []string
}

// HasRole reports whether the token carries the given role.
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// TokenService validates bearer tokens issued by the platform identity
// provider. This service only verifies; it never issues tokens.
type TokenService interface {
	ValidateToken(token string) (*TokenClaims, error)
}

type TokenServiceImpl struct {
	secretKey []byte
	issuer    string
}

func NewTokenService(secretKey, issuer string) TokenService {
	return &TokenServiceImpl{secretKey: []byte(secretKey), issuer: issuer}
}

// ValidateToken parses and verifies an HS256 token and extracts its
// subject and roles.
func (s *TokenServiceImpl) ValidateToken(token string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	out := &TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.Subject = sub
	}
	switch roles := claims["roles"].(type) {
	case []any:
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	case string:
		out.Roles = append(out.Roles, roles)
	}
	if role, ok := claims["role"].(string); ok {
		out.Roles = append(out.Roles, role)
	}

	return out, nil
}
