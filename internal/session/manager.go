package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/studiowebux/fxdash/internal/types"
)

// TokenTTL is the validity window given to every issued token record
const TokenTTL = 15 * time.Minute

// Backend is the subset of the REST API the session lifecycle needs
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*types.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*types.AuthResponse, error)
	CurrentUser(ctx context.Context, accessToken string) (*types.User, error)
}

// rejection is implemented by backend errors that know whether the server
// refused the credentials rather than failed to answer
type rejection interface {
	CredentialsRejected() bool
}

// State is a snapshot of the session
type State struct {
	User            *types.User
	Tokens          *types.AuthTokens
	IsAuthenticated bool
	IsLoading       bool
}

// Manager owns the authentication state of the process.
//
// Session-mutating operations are serialized; concurrent Refresh calls
// share a single backend round trip.
type Manager struct {
	backend Backend
	store   Store
	log     zerolog.Logger
	now     func() time.Time
	ttl     time.Duration

	mu      sync.RWMutex
	user    *types.User
	tokens  *types.AuthTokens
	loading bool

	opMu    sync.Mutex
	refresh singleflight.Group
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for session transitions
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTokenTTL overrides TokenTTL
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// NewManager creates a manager. It reports IsLoading until Restore has run.
func NewManager(backend Backend, store Store, opts ...Option) *Manager {
	m := &Manager{
		backend: backend,
		store:   store,
		log:     zerolog.Nop(),
		now:     time.Now,
		ttl:     TokenTTL,
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current session
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := State{
		IsAuthenticated: m.tokens != nil,
		IsLoading:       m.loading,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	if m.tokens != nil {
		t := *m.tokens
		s.Tokens = &t
	}
	return s
}

// IsAuthenticated reports whether a token record is live
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tokens != nil
}

// AccessToken returns the live access token, or "" when unauthenticated
func (m *Manager) AccessToken() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.tokens == nil {
		return ""
	}
	return m.tokens.AccessToken
}

// Restore adopts the persisted token record when it has not expired.
// Expired or unreadable records are removed. Only a failure to remove
// storage is returned.
func (m *Manager) Restore() error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.setLoading(true)
	defer m.setLoading(false)

	tokens, err := m.store.LoadTokens()
	if err != nil {
		m.log.Warn().Err(err).Msg("discarding unreadable session record")
		return m.clearStore()
	}
	if tokens == nil {
		return nil
	}

	if !tokens.ValidAt(m.now()) {
		m.log.Info().Time("expiresAt", tokens.Expiry()).Msg("persisted session expired")
		return m.clearStore()
	}

	user := m.restoreUser(tokens.AccessToken)

	m.mu.Lock()
	m.tokens = tokens
	m.user = user
	m.mu.Unlock()

	m.log.Info().Time("expiresAt", tokens.Expiry()).Msg("session restored")
	return nil
}

// restoreUser prefers the persisted identity and falls back to token claims
func (m *Manager) restoreUser(accessToken string) *types.User {
	user, err := m.store.LoadUser()
	if err != nil {
		m.log.Warn().Err(err).Msg("ignoring unreadable user record")
	}
	if user != nil {
		return user
	}
	if user, ok := userFromToken(accessToken); ok {
		return user
	}
	return nil
}

// Login exchanges credentials for a session. A rejected login leaves any
// existing session untouched.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.backend.SignIn(ctx, email, password)
	if err != nil {
		m.log.Warn().Err(err).Str("email", email).Msg("login failed")
		var rej rejection
		if errors.As(err, &rej) && rej.CredentialsRejected() {
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return err
	}

	m.adopt(resp)
	m.log.Info().Str("user", resp.User.Email).Msg("login succeeded")
	return nil
}

// Logout ends the session locally whatever the backend answers
func (m *Manager) Logout(ctx context.Context) {
	m.opMu.Lock()
	defer m.opMu.Unlock()
	m.setLoading(true)
	defer m.setLoading(false)

	if token := m.AccessToken(); token != "" {
		if err := m.backend.SignOut(ctx, token); err != nil {
			m.log.Warn().Err(err).Msg("backend logout failed, clearing local session anyway")
		}
	}

	m.clear()
	m.log.Info().Msg("logged out")
}

// Refresh mints a new token pair from the stored refresh token. On failure
// the session is cleared and the error returned. Concurrent callers wait
// for the same in-flight refresh.
func (m *Manager) Refresh(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	_, err, shared := m.refresh.Do("refresh", func() (any, error) {
		return nil, m.doRefresh(ctx)
	})
	if shared {
		m.log.Debug().Msg("joined in-flight refresh")
	}
	return err
}

func (m *Manager) doRefresh(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	m.mu.RLock()
	var refreshToken string
	if m.tokens != nil {
		refreshToken = m.tokens.RefreshToken
	}
	m.mu.RUnlock()

	if refreshToken == "" {
		return ErrNoSession
	}

	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.backend.RefreshToken(ctx, refreshToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("token refresh failed, clearing session")
		m.clear()
		return fmt.Errorf("token refresh failed: %w", err)
	}

	m.adopt(resp)
	m.log.Info().Msg("token refreshed")
	return nil
}

// ReloadUser fetches the identity for the live access token
func (m *Manager) ReloadUser(ctx context.Context) (*types.User, error) {
	token := m.AccessToken()
	if token == "" {
		return nil, ErrNoSession
	}

	user, err := m.backend.CurrentUser(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}

	m.mu.Lock()
	u := *user
	m.user = &u
	m.mu.Unlock()

	if err := m.store.SaveUser(*user); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist user")
	}
	return user, nil
}

// adopt replaces user and tokens from a backend response and persists them
func (m *Manager) adopt(resp *types.AuthResponse) {
	tokens := types.AuthTokens{
		AccessToken:  resp.Security.JWTAccessToken,
		RefreshToken: resp.Security.JWTRefreshToken,
		ExpiresAt:    m.now().Add(m.ttl).UnixMilli(),
	}
	user := resp.User

	m.mu.Lock()
	m.tokens = &tokens
	m.user = &user
	m.mu.Unlock()

	if err := m.store.SaveTokens(tokens); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist tokens")
	}
	if err := m.store.SaveUser(user); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist user")
	}
}

// clear drops the live session and both storage slots
func (m *Manager) clear() {
	m.mu.Lock()
	m.tokens = nil
	m.user = nil
	m.mu.Unlock()

	if err := m.clearStore(); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear stored session")
	}
}

func (m *Manager) clearStore() error {
	if err := m.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session storage: %w", err)
	}
	return nil
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}
