package types

import "time"

// User is the identity record returned by the backend
type User struct {
	ID    string `json:"id" yaml:"id"`
	Email string `json:"email" yaml:"email"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
}

// DisplayName returns the name when set, otherwise the email
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// AuthTokens is the persisted token record
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"` // Unix milliseconds
}

// Expiry returns ExpiresAt as a time.Time
func (t AuthTokens) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// ValidAt reports whether the record expires strictly after now
func (t AuthTokens) ValidAt(now time.Time) bool {
	return t.ExpiresAt > now.UnixMilli()
}

// Security holds the token pair issued by the backend
type Security struct {
	JWTAccessToken  string `json:"jwtAccessToken"`
	JWTRefreshToken string `json:"jwtRefreshToken"`
}

// AuthResponse is returned by the login and refresh endpoints
type AuthResponse struct {
	User     User     `json:"user"`
	Security Security `json:"security"`
}
