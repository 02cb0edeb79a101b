package mock

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/studiowebux/fxdash/internal/types"
)

var errInvalidToken = errors.New("invalid token")

type accessClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type refreshGrant struct {
	userID    string
	expiresAt time.Time
}

// tokenIssuer mints HS256 access tokens and opaque, single-use refresh tokens
type tokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	mu      sync.Mutex
	refresh map[string]refreshGrant
}

func newTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) (*tokenIssuer, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate signing key: %w", err)
		}
	}
	return &tokenIssuer{
		secret:     key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		refresh:    make(map[string]refreshGrant),
	}, nil
}

// issue mints a new token pair for u
func (t *tokenIssuer) issue(u types.User) (types.Security, error) {
	now := t.now()
	claims := accessClaims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return types.Security{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := uuid.NewString()
	t.mu.Lock()
	t.refresh[refresh] = refreshGrant{userID: u.ID, expiresAt: now.Add(t.refreshTTL)}
	t.mu.Unlock()

	return types.Security{JWTAccessToken: signed, JWTRefreshToken: refresh}, nil
}

// verify returns the subject of a valid, unexpired access token
func (t *tokenIssuer) verify(token string) (string, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", errInvalidToken)
	}
	return claims.Subject, nil
}

// consume redeems a refresh token once and returns its user
func (t *tokenIssuer) consume(token string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	grant, ok := t.refresh[token]
	if !ok {
		return "", false
	}
	delete(t.refresh, token)
	if !t.now().Before(grant.expiresAt) {
		return "", false
	}
	return grant.userID, true
}

// revoke drops every refresh token of userID
func (t *tokenIssuer) revoke(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for token, grant := range t.refresh {
		if grant.userID == userID {
			delete(t.refresh, token)
			n++
		}
	}
	return n
}
