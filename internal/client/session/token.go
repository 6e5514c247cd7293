package session

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// WellFormed reports whether token has exactly three dot-separated segments.
func WellFormed(token string) bool {
	return strings.Count(token, ".") == 2
}

// ExpiresAt decodes the exp claim without verifying the signature; the
// backend is the only party that can verify it. ok is false when the token
// carries no exp claim.
func ExpiresAt(token string) (exp time.Time, ok bool, err error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false, nil
	}
	return claims.ExpiresAt.Time, true, nil
}
