package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a bearer token cannot be parsed or verified.
var ErrInvalidToken = errors.New("api: invalid token")

// Claims are the fields this app reads from the backend's access token.
type Claims struct {
	UserID    int
	Username  string
	IsAdmin   bool
	ExpiresAt time.Time // zero when the token carries no exp
}

// ParseClaims reads the access token's claims. With a non-empty secret the
// HS256 signature and exp are verified; otherwise the token is parsed without
// verification and the backend stays the authority on every call.
// PRE: raw is the access_token string
// POST: Returns Claims, or ErrInvalidToken wrapping the parser error
func ParseClaims(raw, secret string) (Claims, error) {
	claims := jwt.MapClaims{}
	if secret != "" {
		parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		})
		if err != nil {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	out := Claims{
		UserID:  intClaim(claims["id_usuario"]),
		IsAdmin: boolClaim(claims["is_admin"]),
	}
	if name, ok := claims["username"].(string); ok {
		out.Username = name
	} else if sub, err := claims.GetSubject(); err == nil {
		out.Username = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	return out, nil
}

func intClaim(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func boolClaim(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		ok, _ := strconv.ParseBool(b)
		return ok
	}
	return false
}
