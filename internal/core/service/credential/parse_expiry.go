package credential

import (
	"fmt"
	"media-pipeline/internal/core/domain"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ParseExpiry reads the exp claim of an access token without verifying its signature.
// Unpadded and padded base64url segments are both accepted.
func ParseExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithPaddingAllowed())

	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", domain.ErrClaimDecode, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", domain.ErrClaimDecode)
	}
	return claims.ExpiresAt.Time, nil
}
