package tui

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/session"
	"github.com/studiowebux/fxdash/internal/types"
)

// fakeSession is an in-memory SessionService
type fakeSession struct {
	mu       sync.Mutex
	state    session.State
	password string
	stored   *types.User // adopted by Restore when set
	logouts  int
}

func (f *fakeSession) State() session.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeSession) Restore() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored != nil {
		f.state = session.State{User: f.stored, IsAuthenticated: true}
	}
	return nil
}

func (f *fakeSession) Login(_ context.Context, email, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.password {
		return fmt.Errorf("%w: %w", session.ErrInvalidCredentials, &api.Error{Status: 401, Message: "Invalid credentials"})
	}
	f.state = session.State{User: &types.User{ID: "1", Email: email, Name: "Admin"}, IsAuthenticated: true}
	return nil
}

func (f *fakeSession) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.state = session.State{}
}

// expire drops the session the way AuthClient does after a failed refresh
func (f *fakeSession) expire() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = session.State{}
}

// fakeProviders is an in-memory ProviderAPI
type fakeProviders struct {
	mu      sync.Mutex
	rows    []types.Provider
	nextID  int
	err     error // returned by the next Search
	deleted []string
}

func (f *fakeProviders) Search(context.Context, api.SearchParams) ([]types.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.err; err != nil {
		f.err = nil
		return nil, err
	}
	return slices.Clone(f.rows), nil
}

func (f *fakeProviders) Create(_ context.Context, p types.Provider) (*types.Provider, error) {
	if err := api.Validate(p); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p.ID = "new-" + strconv.Itoa(f.nextID)
	f.rows = append(f.rows, p)
	return &p, nil
}

func (f *fakeProviders) Update(_ context.Context, id string, p types.Provider) (*types.Provider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			p.ID = id
			f.rows[i] = p
			return &p, nil
		}
	}
	return nil, &api.Error{Status: 404, Message: "Not found"}
}

func (f *fakeProviders) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	f.rows = slices.DeleteFunc(f.rows, func(p types.Provider) bool { return p.ID == id })
	return nil
}

// fakeSubscribers is an in-memory SubscriberAPI
type fakeSubscribers struct {
	mu      sync.Mutex
	rows    []types.Subscriber
	deleted []string
}

func (f *fakeSubscribers) Search(context.Context, api.SearchParams) ([]types.Subscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.rows), nil
}

func (f *fakeSubscribers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	f.rows = slices.DeleteFunc(f.rows, func(s types.Subscriber) bool { return s.ID == id })
	return nil
}

// fakeActivity is an in-memory ActivityLog
type fakeActivity struct {
	mu      sync.Mutex
	entries []types.ActivityEntry
}

func (f *fakeActivity) Record(_ context.Context, kind, subject, detail string) (types.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e := types.ActivityEntry{ID: strconv.Itoa(len(f.entries) + 1), Kind: kind, Subject: subject, Detail: detail}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeActivity) Recent(context.Context, int) ([]types.ActivityEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.entries)
	slices.Reverse(out)
	return out, nil
}

func (f *fakeActivity) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.entries {
		out = append(out, e.Kind)
	}
	return out
}

// testEnv bundles a model with its fakes
type testEnv struct {
	m           *Model
	session     *fakeSession
	providers   *fakeProviders
	subscribers *fakeSubscribers
	activity    *fakeActivity
	copied      []string
}

func sampleProviders() []types.Provider {
	return []types.Provider{
		{ID: "10", Name: "ExchangeRate-API", APIKey: "era_live_0123456789", APIURL: "https://v6.exchangerate-api.com/v6",
			Status: types.StatusActive, RateLimit: 1500, Timeout: 30, RequestCount: 4200},
		{ID: "11", Name: "CurrencyLayer", APIKey: "cl_live_0123456789", APIURL: "https://api.currencylayer.com",
			Status: types.StatusActive, RateLimit: 1000, Timeout: 20, RequestCount: 800},
		{ID: "12", Name: "Fixer.io", APIKey: "fx_live_0123456789", APIURL: "https://data.fixer.io/api",
			Status: types.StatusInactive, RateLimit: 100, Timeout: 10, RequestCount: 0},
	}
}

func sampleSubscribers() []types.Subscriber {
	return []types.Subscriber{
		{ID: "20", Name: "Treasury Desk", APIKey: "sub_treasury_0001", Status: types.StatusActive, RequestCount: 120},
		{ID: "21", Name: "Checkout Service", APIKey: "sub_checkout_0002", Status: types.StatusActive, RequestCount: 5400},
	}
}

// CreateTestModel creates a Model wired to fakes. When authenticated is
// true the session restores as the seed admin.
func CreateTestModel(t *testing.T, authenticated bool) *testEnv {
	t.Helper()

	env := &testEnv{
		session:     &fakeSession{password: "password123"},
		providers:   &fakeProviders{rows: sampleProviders()},
		subscribers: &fakeSubscribers{rows: sampleSubscribers()},
		activity:    &fakeActivity{},
	}
	if authenticated {
		env.session.stored = &types.User{ID: "1", Email: "admin@example.com", Name: "Admin"}
	}

	env.m = New(Deps{
		Session:      env.session,
		Providers:    env.providers,
		Subscribers:  env.subscribers,
		Activity:     env.activity,
		Timeout:      time.Second,
		ItemsPerPage: 10,
		CopyToClipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	})
	env.m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return env
}

// start runs Init and everything it triggers
func (e *testEnv) start(t *testing.T) {
	t.Helper()
	drain(t, e.m, e.m.Init())
}

// press sends one key per argument. Names like "enter" and "ctrl+s" map to
// special keys; anything else is typed as runes.
func (e *testEnv) press(t *testing.T, keys ...string) (quit bool) {
	t.Helper()
	for _, k := range keys {
		_, cmd := e.m.Update(keyMsg(k))
		if drain(t, e.m, cmd) {
			quit = true
		}
	}
	return quit
}

// typeText sends s rune by rune
func (e *testEnv) typeText(t *testing.T, s string) {
	t.Helper()
	for _, r := range s {
		_, cmd := e.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		drain(t, e.m, cmd)
	}
}

var specialKeys = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"ctrl+c":    tea.KeyCtrlC,
	"ctrl+s":    tea.KeyCtrlS,
	" ":         tea.KeySpace,
}

func keyMsg(k string) tea.KeyMsg {
	if kt, ok := specialKeys[k]; ok {
		if kt == tea.KeySpace {
			return tea.KeyMsg{Type: kt, Runes: []rune{' '}}
		}
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// drain executes cmd and feeds the resulting messages back into m until
// nothing is left. Spinner ticks and slow commands such as cursor blinks
// are dropped. It reports whether tea.Quit was returned.
func drain(t *testing.T, m *Model, cmd tea.Cmd) (quit bool) {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
			continue
		}
		_, next := m.Update(msg)
		if drain(t, m, next) {
			quit = true
		}
	}
	return quit
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
			return nil
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, collect(c)...)
			}
			return out
		default:
			return []tea.Msg{msg}
		}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// AssertModelField checks a model field value
func AssertModelField[T comparable](t *testing.T, name string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

// AssertViewContains checks the rendered view
func AssertViewContains(t *testing.T, m *Model, substr string) {
	t.Helper()
	if view := m.View(); !strings.Contains(view, substr) {
		t.Errorf("view does not contain %q:\n%s", substr, view)
	}
}
