package mock

import (
	"time"

	"github.com/studiowebux/fxdash/internal/types"
)

// Config represents the mock backend configuration
type Config struct {
	Port            int                `json:"port" yaml:"port"`                                           // Server port (default: 8080)
	Host            string             `json:"host" yaml:"host"`                                           // Server host (default: localhost)
	Logging         bool               `json:"logging" yaml:"logging"`                                     // Keep a request log (default: true)
	Secret          string             `json:"secret,omitempty" yaml:"secret,omitempty"`                   // HS256 signing key (random when empty)
	AccessTokenTTL  string             `json:"accessTokenTTL,omitempty" yaml:"accessTokenTTL,omitempty"`   // Access token lifetime (default: 15m)
	RefreshTokenTTL string             `json:"refreshTokenTTL,omitempty" yaml:"refreshTokenTTL,omitempty"` // Refresh token lifetime (default: 168h)
	Users           []SeedUser         `json:"users" yaml:"users"`                                         // Accounts that can sign in
	Providers       []types.Provider   `json:"providers,omitempty" yaml:"providers,omitempty"`             // Initial providers
	Subscribers     []types.Subscriber `json:"subscribers,omitempty" yaml:"subscribers,omitempty"`         // Initial subscribers
}

// SeedUser is an account with a plaintext password, hashed at startup
type SeedUser struct {
	ID       string `json:"id,omitempty" yaml:"id,omitempty"`
	Email    string `json:"email" yaml:"email"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Password string `json:"password" yaml:"password"`
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time         `json:"timestamp"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Headers     map[string]string `json:"headers"`
	Body        string            `json:"body"`
	MatchedRule string            `json:"matchedRule"`
	Status      int               `json:"status"`
	Duration    time.Duration     `json:"duration"`
}
