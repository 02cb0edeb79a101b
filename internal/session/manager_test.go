package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/fxdash/internal/types"
)

// rejectedErr stands in for a backend status error
type rejectedErr struct {
	msg      string
	rejected bool
}

func (e rejectedErr) Error() string             { return e.msg }
func (e rejectedErr) CredentialsRejected() bool { return e.rejected }

type fakeBackend struct {
	mu sync.Mutex

	signInResp  *types.AuthResponse
	signInErr   error
	signOutErr  error
	refreshResp *types.AuthResponse
	refreshErr  error
	meResp      *types.User

	refreshGate chan struct{}
	refreshSeen chan struct{}
	seenOnce    sync.Once

	signInCalls  int
	signOutCalls int
	refreshCalls atomic.Int32
	lastRefresh  string
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signInCalls++
	return f.signInResp, f.signInErr
}

func (f *fakeBackend) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeBackend) RefreshToken(ctx context.Context, refreshToken string) (*types.AuthResponse, error) {
	f.refreshCalls.Add(1)
	if f.refreshSeen != nil {
		f.seenOnce.Do(func() { close(f.refreshSeen) })
	}
	if f.refreshGate != nil {
		<-f.refreshGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRefresh = refreshToken
	return f.refreshResp, f.refreshErr
}

func (f *fakeBackend) CurrentUser(ctx context.Context, accessToken string) (*types.User, error) {
	return f.meResp, nil
}

func authResponse(access, refresh string) *types.AuthResponse {
	return &types.AuthResponse{
		User:     types.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"},
		Security: types.Security{JWTAccessToken: access, JWTRefreshToken: refresh},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	dir := t.TempDir()
	return NewFileStore(filepath.Join(dir, "auth_tokens.json"), filepath.Join(dir, "auth_user.json"))
}

func loggedIn(t *testing.T, backend *fakeBackend, store Store, now time.Time) *Manager {
	t.Helper()
	backend.signInResp = authResponse("access-1", "refresh-1")
	m := NewManager(backend, store, WithClock(fixedClock(now)))
	require.NoError(t, m.Login(context.Background(), "ada@example.com", "secret"))
	return m
}

func TestNewManager_StartsLoading(t *testing.T) {
	m := NewManager(&fakeBackend{}, NewMemoryStore())

	state := m.State()
	require.True(t, state.IsLoading)
	require.False(t, state.IsAuthenticated)
	require.Empty(t, m.AccessToken())
}

func TestRestore(t *testing.T) {
	now := time.Date(2025, 11, 26, 14, 30, 0, 0, time.UTC)

	t.Run("expired or boundary records are discarded", func(t *testing.T) {
		for _, offset := range []time.Duration{0, -time.Millisecond, -time.Minute, -24 * time.Hour} {
			store := newTestStore(t)
			require.NoError(t, store.SaveTokens(types.AuthTokens{
				AccessToken:  "stale",
				RefreshToken: "stale-refresh",
				ExpiresAt:    now.Add(offset).UnixMilli(),
			}))
			require.NoError(t, store.SaveUser(types.User{ID: "u-1", Email: "ada@example.com"}))

			m := NewManager(&fakeBackend{}, store, WithClock(fixedClock(now)))
			require.NoError(t, m.Restore())

			state := m.State()
			require.False(t, state.IsAuthenticated, "offset %s", offset)
			require.False(t, state.IsLoading)
			require.Nil(t, state.User)

			tokens, err := store.LoadTokens()
			require.NoError(t, err)
			require.Nil(t, tokens, "stale record left in storage for offset %s", offset)
		}
	})

	t.Run("future records are adopted exactly", func(t *testing.T) {
		for _, offset := range []time.Duration{time.Millisecond, time.Minute, 14 * time.Minute} {
			store := newTestStore(t)
			want := types.AuthTokens{
				AccessToken:  "live-access",
				RefreshToken: "live-refresh",
				ExpiresAt:    now.Add(offset).UnixMilli(),
			}
			require.NoError(t, store.SaveTokens(want))
			require.NoError(t, store.SaveUser(types.User{ID: "u-1", Email: "ada@example.com"}))

			m := NewManager(&fakeBackend{}, store, WithClock(fixedClock(now)))
			require.NoError(t, m.Restore())

			state := m.State()
			require.True(t, state.IsAuthenticated)
			require.False(t, state.IsLoading)
			require.Equal(t, want, *state.Tokens)
			require.Equal(t, "ada@example.com", state.User.Email)
		}
	})

	t.Run("empty storage stays logged out", func(t *testing.T) {
		m := NewManager(&fakeBackend{}, newTestStore(t))
		require.NoError(t, m.Restore())
		require.False(t, m.IsAuthenticated())
		require.False(t, m.State().IsLoading)
	})

	t.Run("malformed record clears both slots", func(t *testing.T) {
		dir := t.TempDir()
		tokensPath := filepath.Join(dir, "auth_tokens.json")
		userPath := filepath.Join(dir, "auth_user.json")
		require.NoError(t, writeRaw(tokensPath, "{not json"))
		require.NoError(t, writeRaw(userPath, `{"id":"u-1"}`))

		m := NewManager(&fakeBackend{}, NewFileStore(tokensPath, userPath))
		require.NoError(t, m.Restore())

		require.False(t, m.IsAuthenticated())
		require.NoFileExists(t, tokensPath)
		require.NoFileExists(t, userPath)
	})

	t.Run("identity rebuilt from token claims when user slot missing", func(t *testing.T) {
		access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":   "u-42",
			"email": "grace@example.com",
			"name":  "Grace",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		store := NewMemoryStore()
		require.NoError(t, store.SaveTokens(types.AuthTokens{
			AccessToken:  access,
			RefreshToken: "r",
			ExpiresAt:    now.Add(time.Minute).UnixMilli(),
		}))

		m := NewManager(&fakeBackend{}, store, WithClock(fixedClock(now)))
		require.NoError(t, m.Restore())

		user := m.State().User
		require.NotNil(t, user)
		require.Equal(t, types.User{ID: "u-42", Email: "grace@example.com", Name: "Grace"}, *user)
	})

	t.Run("opaque token without user slot leaves identity unset", func(t *testing.T) {
		store := NewMemoryStore()
		require.NoError(t, store.SaveTokens(types.AuthTokens{
			AccessToken: "opaque",
			ExpiresAt:   now.Add(time.Minute).UnixMilli(),
		}))

		m := NewManager(&fakeBackend{}, store, WithClock(fixedClock(now)))
		require.NoError(t, m.Restore())

		require.True(t, m.IsAuthenticated())
		require.Nil(t, m.State().User)
	})
}

func TestLogin(t *testing.T) {
	now := time.Date(2025, 11, 26, 14, 30, 0, 0, time.UTC)

	t.Run("success adopts and persists tokens", func(t *testing.T) {
		store := newTestStore(t)
		backend := &fakeBackend{}
		m := loggedIn(t, backend, store, now)

		state := m.State()
		require.True(t, state.IsAuthenticated)
		require.False(t, state.IsLoading)
		require.Equal(t, "access-1", m.AccessToken())
		require.Equal(t, "Ada", state.User.Name)

		expiry := state.Tokens.Expiry()
		require.False(t, expiry.Before(now))
		require.False(t, expiry.After(now.Add(15*time.Minute)))

		stored, err := store.LoadTokens()
		require.NoError(t, err)
		require.Equal(t, *state.Tokens, *stored)

		storedUser, err := store.LoadUser()
		require.NoError(t, err)
		require.Equal(t, "u-1", storedUser.ID)
	})

	t.Run("failure keeps prior session", func(t *testing.T) {
		store := newTestStore(t)
		backend := &fakeBackend{}
		m := loggedIn(t, backend, store, now)
		before := m.State()

		backend.signInResp = nil
		backend.signInErr = rejectedErr{msg: "Invalid credentials", rejected: true}

		err := m.Login(context.Background(), "ada@example.com", "wrong")
		require.Error(t, err)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		require.Contains(t, err.Error(), "Invalid credentials")

		after := m.State()
		require.False(t, after.IsLoading)
		require.Equal(t, before.Tokens, after.Tokens)
		require.Equal(t, before.User, after.User)

		stored, err := store.LoadTokens()
		require.NoError(t, err)
		require.Equal(t, "access-1", stored.AccessToken)
	})

	t.Run("unreachable backend is not a credential error", func(t *testing.T) {
		outage := errors.New("dial tcp 127.0.0.1:8080: connect: connection refused")
		for name, err := range map[string]error{
			"transport":    outage,
			"server error": rejectedErr{msg: "Internal error", rejected: false},
		} {
			t.Run(name, func(t *testing.T) {
				m := NewManager(&fakeBackend{signInErr: err}, NewMemoryStore())
				got := m.Login(context.Background(), "a@b.c", "x")
				require.ErrorIs(t, got, err)
				require.NotErrorIs(t, got, ErrInvalidCredentials)
				require.False(t, m.IsAuthenticated())
			})
		}
	})

	t.Run("failure from empty session stays logged out", func(t *testing.T) {
		m := NewManager(&fakeBackend{signInErr: errors.New("nope")}, NewMemoryStore())
		require.Error(t, m.Login(context.Background(), "a@b.c", "x"))
		require.False(t, m.IsAuthenticated())
		require.False(t, m.State().IsLoading)
	})
}

func TestLogout(t *testing.T) {
	now := time.Now()
	outcomes := map[string]error{
		"backend ok":       nil,
		"network error":    errors.New("dial tcp: connection refused"),
		"non-2xx response": errors.New("status 500: Failed to sign out"),
	}

	for name, signOutErr := range outcomes {
		t.Run(name, func(t *testing.T) {
			store := newTestStore(t)
			backend := &fakeBackend{}
			m := loggedIn(t, backend, store, now)
			backend.signOutErr = signOutErr

			m.Logout(context.Background())

			require.Equal(t, 1, backend.signOutCalls)
			state := m.State()
			require.False(t, state.IsAuthenticated)
			require.False(t, state.IsLoading)
			require.Nil(t, state.User)

			tokens, err := store.LoadTokens()
			require.NoError(t, err)
			require.Nil(t, tokens)
		})
	}

	t.Run("unauthenticated logout skips backend", func(t *testing.T) {
		backend := &fakeBackend{}
		m := NewManager(backend, NewMemoryStore())
		m.Logout(context.Background())
		require.Zero(t, backend.signOutCalls)
		require.False(t, m.IsAuthenticated())
	})
}

func TestRefresh(t *testing.T) {
	now := time.Date(2025, 11, 26, 14, 30, 0, 0, time.UTC)

	t.Run("no refresh token fails without backend", func(t *testing.T) {
		backend := &fakeBackend{}
		m := NewManager(backend, NewMemoryStore())

		err := m.Refresh(context.Background())
		require.ErrorIs(t, err, ErrNoSession)
		require.Zero(t, backend.refreshCalls.Load())
	})

	t.Run("success replaces session and persists", func(t *testing.T) {
		store := newTestStore(t)
		backend := &fakeBackend{}
		m := loggedIn(t, backend, store, now)
		backend.refreshResp = authResponse("access-2", "refresh-2")
		backend.refreshResp.User.Name = "Ada Lovelace"

		require.NoError(t, m.Refresh(context.Background()))

		require.Equal(t, "refresh-1", backend.lastRefresh)
		require.Equal(t, "access-2", m.AccessToken())
		state := m.State()
		require.Equal(t, "refresh-2", state.Tokens.RefreshToken)
		require.Equal(t, "Ada Lovelace", state.User.Name)
		require.Equal(t, now.Add(TokenTTL).UnixMilli(), state.Tokens.ExpiresAt)

		stored, err := store.LoadTokens()
		require.NoError(t, err)
		require.Equal(t, "access-2", stored.AccessToken)
	})

	t.Run("failure clears session and returns error", func(t *testing.T) {
		store := newTestStore(t)
		backend := &fakeBackend{}
		m := loggedIn(t, backend, store, now)
		backend.refreshErr = errors.New("Failed to refresh token")

		err := m.Refresh(context.Background())
		require.Error(t, err)
		require.Contains(t, err.Error(), "Failed to refresh token")

		state := m.State()
		require.False(t, state.IsAuthenticated)
		require.False(t, state.IsLoading)
		require.Nil(t, state.User)

		tokens, err := store.LoadTokens()
		require.NoError(t, err)
		require.Nil(t, tokens)
	})

	t.Run("concurrent callers share one backend call", func(t *testing.T) {
		backend := &fakeBackend{
			refreshGate: make(chan struct{}),
			refreshSeen: make(chan struct{}),
		}
		m := loggedIn(t, backend, NewMemoryStore(), now)
		backend.refreshResp = authResponse("access-2", "refresh-2")

		const callers = 5
		errs := make(chan error, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- m.Refresh(context.Background())
			}()
		}

		<-backend.refreshSeen
		time.Sleep(50 * time.Millisecond)
		close(backend.refreshGate)
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}
		require.Equal(t, int32(1), backend.refreshCalls.Load())
		require.Equal(t, "access-2", m.AccessToken())
	})
}

func TestReloadUser(t *testing.T) {
	store := NewMemoryStore()
	backend := &fakeBackend{meResp: &types.User{ID: "u-1", Email: "ada@example.com", Name: "Countess"}}
	m := loggedIn(t, backend, store, time.Now())

	user, err := m.ReloadUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Countess", user.Name)
	require.Equal(t, "Countess", m.State().User.Name)

	stored, err := store.LoadUser()
	require.NoError(t, err)
	require.Equal(t, "Countess", stored.Name)

	_, err = NewManager(backend, NewMemoryStore()).ReloadUser(context.Background())
	require.ErrorIs(t, err, ErrNoSession)
}
