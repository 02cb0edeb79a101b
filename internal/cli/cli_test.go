package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/mock"
	"github.com/studiowebux/fxdash/internal/session"
	"github.com/studiowebux/fxdash/internal/types"
)

// scriptedPrompter answers prompts from a queue
type scriptedPrompter struct {
	answers  []string
	confirms []bool
	asked    []string
}

func (p *scriptedPrompter) Prompt(title string, secret bool) (string, error) {
	p.asked = append(p.asked, title)
	if len(p.answers) == 0 {
		return "", errors.New("unexpected prompt " + title)
	}
	v := p.answers[0]
	p.answers = p.answers[1:]
	return v, nil
}

func (p *scriptedPrompter) Confirm(question string) (bool, error) {
	p.asked = append(p.asked, question)
	if len(p.confirms) == 0 {
		return false, errors.New("unexpected confirm " + question)
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testApp struct {
	*App
	out   *bytes.Buffer
	err   *bytes.Buffer
	store *session.MemoryStore
	clock *clock
}

func newTestApp(t *testing.T, signedIn bool) *testApp {
	t.Helper()

	c := &clock{now: time.Now()}
	srv, err := mock.NewServer(mock.DefaultConfig(), mock.WithClock(c.Now))
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	settings := config.DefaultSettings()
	settings.APIURL = ts.URL
	settings.RequestTimeout = 5 * time.Second

	store := session.NewMemoryStore()
	app, err := NewApp(AppOptions{
		Settings:     settings,
		Log:          zerolog.Nop(),
		Store:        store,
		DatabasePath: filepath.Join(t.TempDir(), "fxdash.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	app.Out = out
	app.Err = errOut

	if signedIn {
		require.NoError(t, app.Login(&scriptedPrompter{}, LoginOptions{Email: "admin@example.com", Password: "password123"}))
		out.Reset()
	}
	return &testApp{App: app, out: out, err: errOut, store: store, clock: c}
}

func (a *testApp) kinds(t *testing.T) []string {
	t.Helper()
	entries, err := a.Activity.Recent(context.Background(), 50)
	require.NoError(t, err)
	var kinds []string
	for _, e := range entries {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	app := newTestApp(t, false)
	p := &scriptedPrompter{answers: []string{"admin@example.com", "password123"}}

	require.NoError(t, app.Login(p, LoginOptions{}))
	require.Equal(t, []string{"Email", "Password"}, p.asked)
	require.Contains(t, app.out.String(), "Signed in as Admin")
	require.True(t, app.Session.IsAuthenticated())

	tokens, err := app.store.LoadTokens()
	require.NoError(t, err)
	require.NotNil(t, tokens)
	require.Equal(t, []string{activity.KindLogin}, app.kinds(t))
}

func TestLoginRejected(t *testing.T) {
	app := newTestApp(t, false)

	err := app.Login(&scriptedPrompter{}, LoginOptions{Email: "admin@example.com", Password: "wrong"})
	require.EqualError(t, err, "login failed: Invalid credentials")
	require.False(t, app.Session.IsAuthenticated())
	require.Empty(t, app.kinds(t))
}

func TestLoginRequiresPassword(t *testing.T) {
	app := newTestApp(t, false)

	err := app.Login(&scriptedPrompter{answers: []string{""}}, LoginOptions{Email: "admin@example.com"})
	require.EqualError(t, err, "password is required")
}

func TestCommandsRequireSession(t *testing.T) {
	app := newTestApp(t, false)

	require.ErrorContains(t, app.ListProviders(api.SearchParams{}, OutputOptions{}), "not signed in")
	require.ErrorContains(t, app.ListSubscribers(api.SearchParams{}, OutputOptions{}), "not signed in")
	require.ErrorContains(t, app.Whoami(false, OutputOptions{}), "not signed in")
}

func TestLogout(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.Logout())
	require.Contains(t, app.out.String(), "Signed out")
	require.False(t, app.Session.IsAuthenticated())

	tokens, err := app.store.LoadTokens()
	require.NoError(t, err)
	require.Nil(t, tokens)
	require.Equal(t, []string{activity.KindLogout, activity.KindLogin}, app.kinds(t))

	app.out.Reset()
	require.NoError(t, app.Logout())
	require.Contains(t, app.out.String(), "Not signed in")
}

func TestWhoami(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.Whoami(false, OutputOptions{}))
	require.Contains(t, app.out.String(), "Admin <admin@example.com>")
	require.Contains(t, app.out.String(), "Session expires")

	app.out.Reset()
	require.NoError(t, app.Whoami(true, OutputOptions{Format: FormatJSON}))
	var user types.User
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &user))
	require.Equal(t, "admin@example.com", user.Email)
}

func TestListProvidersText(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{}))
	out := app.out.String()
	require.Contains(t, out, "PROVIDER")
	require.Contains(t, out, "ExchangeRate-API")
	require.Contains(t, out, "CurrencyLayer")
	require.Contains(t, out, "Fixer.io")
}

func TestListProvidersBackendSearch(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ListProviders(api.SearchParams{Status: types.StatusInactive}, OutputOptions{}))
	out := app.out.String()
	require.Contains(t, out, "Fixer.io")
	require.NotContains(t, out, "CurrencyLayer")
}

func TestListProvidersTableOptions(t *testing.T) {
	app := newTestApp(t, true)

	t.Run("local search", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{Search: "layer"}))
		require.Contains(t, app.out.String(), "CurrencyLayer")
		require.NotContains(t, app.out.String(), "Fixer.io")
	})

	t.Run("pagination", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{PerPage: 2}))
		require.Contains(t, app.out.String(), "ExchangeRate-API")
		require.NotContains(t, app.out.String(), "Fixer.io")

		app.out.Reset()
		require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{PerPage: 2, Page: 2}))
		require.Contains(t, app.out.String(), "Fixer.io")
		require.NotContains(t, app.out.String(), "ExchangeRate-API")
	})

	t.Run("sort descending", func(t *testing.T) {
		app.out.Reset()
		require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{Sort: "requestCount", Desc: true}))
		out := app.out.String()
		require.Less(t, strings.Index(out, "ExchangeRate-API"), strings.Index(out, "CurrencyLayer"))
		require.Less(t, strings.Index(out, "CurrencyLayer"), strings.Index(out, "Fixer.io"))
	})

	t.Run("unsortable column", func(t *testing.T) {
		err := app.ListProviders(api.SearchParams{}, OutputOptions{Sort: "id"})
		require.ErrorContains(t, err, `cannot sort by "id"`)
	})
}

func TestListProvidersJSONQuery(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ListProviders(api.SearchParams{}, OutputOptions{Format: FormatJSON, Query: "[?status=='active'].name"}))
	var names []string
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &names))
	require.Equal(t, []string{"ExchangeRate-API", "CurrencyLayer"}, names)
}

func TestOutputValidation(t *testing.T) {
	app := newTestApp(t, true)

	require.ErrorContains(t, app.ListProviders(api.SearchParams{}, OutputOptions{Format: "xml"}), "unknown output format")
	require.ErrorContains(t, app.ListProviders(api.SearchParams{}, OutputOptions{Format: FormatYAML, Query: "[0]"}), "--query requires -o json")
}

func TestGetProvider(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.GetProvider("11", OutputOptions{}))
	out := app.out.String()
	require.Contains(t, out, "CurrencyLayer")
	require.Contains(t, out, "sk_l…r_02")
	require.NotContains(t, out, "sk_live_currencylayer_02")

	app.out.Reset()
	require.NoError(t, app.GetProvider("11", OutputOptions{Format: FormatYAML}))
	require.Contains(t, app.out.String(), "name: CurrencyLayer")

	require.EqualError(t, app.GetProvider("999", OutputOptions{}), "provider 999 not found")
}

func TestSaveProvider(t *testing.T) {
	app := newTestApp(t, true)

	p := types.NewProvider()
	p.Name = "Open Exchange Rates"
	p.APIKey = "oxr_live_0123456789"
	p.APIURL = "https://openexchangerates.org/api"

	created, err := app.SaveProvider("", p)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Contains(t, app.out.String(), "Created provider Open Exchange Rates")

	created.RateLimit = 250
	updated, err := app.SaveProvider(created.ID, *created)
	require.NoError(t, err)
	require.Equal(t, 250, updated.RateLimit)

	require.Equal(t, []string{activity.KindProviderUpdate, activity.KindProviderCreate, activity.KindLogin}, app.kinds(t))
}

func TestSaveProviderValidation(t *testing.T) {
	app := newTestApp(t, true)

	p := types.NewProvider()
	p.Name = "FX"
	_, err := app.SaveProvider("", p)

	var verr *api.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
}

func TestLoadProviderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provider.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Frankfurter\napiKey: not-needed-key\napiUrl: https://api.frankfurter.app\n"), 0600))

	p, err := LoadProviderFile(path)
	require.NoError(t, err)
	require.Equal(t, "Frankfurter", p.Name)
	require.Equal(t, types.StatusActive, p.Status)
	require.Equal(t, 100, p.RateLimit)
	require.Equal(t, 30, p.Timeout)
}

func TestDeleteProvider(t *testing.T) {
	app := newTestApp(t, true)

	p := &scriptedPrompter{confirms: []bool{false}}
	require.NoError(t, app.DeleteProvider(p, "12", false))
	require.Contains(t, app.out.String(), "Cancelled")

	require.NoError(t, app.DeleteProvider(&scriptedPrompter{}, "12", true))
	require.Contains(t, app.out.String(), "Deleted provider 12")
	require.EqualError(t, app.GetProvider("12", OutputOptions{}), "provider 12 not found")
	require.Equal(t, activity.KindProviderDelete, app.kinds(t)[0])
}

func TestSubscribers(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ListSubscribers(api.SearchParams{}, OutputOptions{}))
	out := app.out.String()
	require.Contains(t, out, "SUBSCRIBER NAME")
	require.Contains(t, out, "Treasury Desk")
	require.NotContains(t, out, "sub_live_treasury_01")

	require.NoError(t, app.DeleteSubscriber(&scriptedPrompter{confirms: []bool{true}}, "22", false))
	app.out.Reset()
	require.NoError(t, app.ListSubscribers(api.SearchParams{}, OutputOptions{}))
	require.NotContains(t, app.out.String(), "Reporting Batch")
	require.Equal(t, activity.KindSubscriberDelete, app.kinds(t)[0])
}

func TestActivity(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ShowActivity(0, OutputOptions{}))
	require.Contains(t, app.out.String(), "login")
	require.Contains(t, app.out.String(), "admin@example.com")

	app.out.Reset()
	require.NoError(t, app.ClearActivity())
	require.Contains(t, app.out.String(), "Removed 1 activity entries")

	app.out.Reset()
	require.NoError(t, app.ShowActivity(0, OutputOptions{}))
	require.Contains(t, app.out.String(), "No recent activity")
}

func TestSessionExpiryIsRecorded(t *testing.T) {
	app := newTestApp(t, true)
	app.clock.Advance(8 * 24 * time.Hour)

	err := app.ListProviders(api.SearchParams{}, OutputOptions{})
	require.ErrorIs(t, err, api.ErrSessionExpired)
	require.False(t, app.Session.IsAuthenticated())
	require.Contains(t, app.err.String(), "Session expired. Run 'fxdash login' to sign in again.")
	require.Equal(t, activity.KindSessionExpired, app.kinds(t)[0])

	tokens, err := app.store.LoadTokens()
	require.NoError(t, err)
	require.Nil(t, tokens)
}

func TestRunMock(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	out := &bytes.Buffer{}
	done := make(chan error, 1)
	go func() {
		done <- RunMock(ctx, out, zerolog.Nop(), MockOptions{Host: "127.0.0.1", Port: port})
	}()

	client := api.NewClient("http://127.0.0.1:" + strconv.Itoa(port))
	require.Eventually(t, func() bool {
		_, err := client.SignIn(context.Background(), "admin@example.com", "password123")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.Contains(t, out.String(), "Mock backend listening on http://127.0.0.1:"+strconv.Itoa(port))
	require.Contains(t, out.String(), "user admin@example.com / password123")
	require.Contains(t, out.String(), "Stopping mock backend")
}

func TestDashboardDeps(t *testing.T) {
	app := newTestApp(t, false)

	deps := app.DashboardDeps(nil, "1.0.0")
	require.NotNil(t, deps.Activity)
	require.Equal(t, app.Settings.APIURL, deps.APIURL)
	require.Equal(t, "1.0.0", deps.Version)

	store := app.Activity
	app.Activity = nil
	defer func() { app.Activity = store }()
	require.Nil(t, app.DashboardDeps(nil, "1.0.0").Activity)
}

func TestListUsers(t *testing.T) {
	app := newTestApp(t, true)

	require.NoError(t, app.ListUsers(OutputOptions{}))
	require.Contains(t, app.out.String(), "admin@example.com")

	app.out.Reset()
	require.NoError(t, app.ListUsers(OutputOptions{Format: FormatJSON, Query: "[0].email"}))
	require.Equal(t, "\"admin@example.com\"\n", app.out.String())
}
