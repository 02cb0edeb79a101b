package session

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/studiowebux/fxdash/internal/types"
)

// userFromToken rebuilds an identity from the access token's claims.
// The signature is not checked: the backend remains the authority and the
// result is only used to label the restored session.
func userFromToken(accessToken string) (*types.User, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, false
	}

	user := types.User{
		ID:    stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
	}
	if user.ID == "" && user.Email == "" {
		return nil, false
	}
	return &user, true
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
