package xray

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT token. The signature is not
// verified; ok is false for tokens that are not JWTs or carry no expiry.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// TokenExpired reports whether token expires within skew of now. Tokens
// without a readable expiry are never considered expired.
func TokenExpired(token string, now time.Time, skew time.Duration) bool {
	exp, ok := TokenExpiry(token)
	if !ok {
		return false
	}
	return !now.Add(skew).Before(exp)
}
