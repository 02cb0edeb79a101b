package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/session"
	"github.com/studiowebux/fxdash/internal/table"
	"github.com/studiowebux/fxdash/internal/types"
)

// Screen is the page currently drawn in the content area
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenHome
	ScreenProviders
	ScreenSubscribers
	ScreenProviderForm
)

// sections are the sidebar entries, in order
var sections = []Screen{ScreenHome, ScreenProviders, ScreenSubscribers}

// Title is the sidebar and header label of a screen
func (s Screen) Title() string {
	switch s {
	case ScreenLogin:
		return "Sign in"
	case ScreenHome:
		return "Dashboard"
	case ScreenProviders:
		return "Exchange Providers"
	case ScreenSubscribers:
		return "Subscribers"
	case ScreenProviderForm:
		return "Provider"
	default:
		return ""
	}
}

// Mode is an overlay on top of the current screen
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirmDelete
	ModeDetail
)

// SessionService is the part of session.Manager the dashboard drives
type SessionService interface {
	State() session.State
	Restore() error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context)
}

// ProviderAPI is the provider backend used by the dashboard
type ProviderAPI interface {
	Search(ctx context.Context, params api.SearchParams) ([]types.Provider, error)
	Create(ctx context.Context, p types.Provider) (*types.Provider, error)
	Update(ctx context.Context, id string, p types.Provider) (*types.Provider, error)
	Delete(ctx context.Context, id string) error
}

// SubscriberAPI is the subscriber backend used by the dashboard
type SubscriberAPI interface {
	Search(ctx context.Context, params api.SearchParams) ([]types.Subscriber, error)
	Delete(ctx context.Context, id string) error
}

// ActivityLog records and lists local activity. It may be nil.
type ActivityLog interface {
	Record(ctx context.Context, kind, subject, detail string) (types.ActivityEntry, error)
	Recent(ctx context.Context, limit int) ([]types.ActivityEntry, error)
}

// Deps are the collaborators of the dashboard
type Deps struct {
	Session     SessionService
	Providers   ProviderAPI
	Subscribers SubscriberAPI
	Activity    ActivityLog

	Keys         *keybinds.Registry
	Logger       zerolog.Logger
	Timeout      time.Duration
	ItemsPerPage int
	APIURL       string
	Version      string

	// CopyToClipboard defaults to clipboard.WriteAll
	CopyToClipboard func(string) error
}

// homeStats are the cards on the dashboard home
type homeStats struct {
	TotalProviders  int
	ActiveProviders int
	TotalRequests   int
	Subscribers     int
}

// pendingDelete is the row awaiting confirmation
type pendingDelete struct {
	kind string // "provider" or "subscriber"
	id   string
	name string
}

// Model represents the TUI state
type Model struct {
	deps Deps
	keys *keybinds.Registry
	log  zerolog.Logger

	width  int
	height int

	screen    Screen
	mode      Mode
	afterAuth Screen // section to open after the next sign-in

	restoring bool
	busy      bool
	spinner   spinner.Model

	help         help.Model
	showFullHelp bool

	statusMsg string
	errorMsg  string

	login loginForm

	providers        *table.Table[types.Provider]
	subscribers      *table.Table[types.Subscriber]
	providerCursor   int
	subscriberCursor int
	search           textinput.Model

	stats  homeStats
	recent []types.ActivityEntry

	confirm *pendingDelete
	detail  []detailLine
	form    *providerForm
}

// New creates a new TUI model. Restore runs from Init.
func New(deps Deps) *Model {
	if deps.Keys == nil {
		deps.Keys = keybinds.NewDefaultRegistry()
	}
	if deps.Timeout <= 0 {
		deps.Timeout = api.DefaultTimeout
	}
	if deps.CopyToClipboard == nil {
		deps.CopyToClipboard = clipboard.WriteAll
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styleTitle))

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "Search..."
	search.CharLimit = 100

	m := &Model{
		deps:      deps,
		keys:      deps.Keys,
		log:       deps.Logger,
		screen:    ScreenLogin,
		mode:      ModeNormal,
		afterAuth: ScreenHome,
		restoring: true,
		spinner:   sp,
		help:      help.New(),
		login:     newLoginForm(),
		search:    search,
	}
	m.providers = m.newProviderTable()
	m.subscribers = m.newSubscriberTable()
	return m
}

// Init restores the persisted session while the spinner runs
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.restoreCmd())
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.restoring && !m.busy && !m.tablesLoading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, m.handleMessage(msg)
}

// View renders the TUI
func (m *Model) View() string {
	if m.restoring {
		return m.renderRestoring()
	}
	if m.screen == ScreenLogin {
		return m.renderLogin()
	}
	return m.renderShell()
}

// protected reports whether s needs a live session
func protected(s Screen) bool {
	return s != ScreenLogin
}

// navigate switches screens, redirecting to login when unauthenticated
func (m *Model) navigate(s Screen) tea.Cmd {
	if protected(s) && !m.deps.Session.State().IsAuthenticated {
		if s != ScreenProviderForm {
			m.afterAuth = s
		}
		m.screen = ScreenLogin
		m.mode = ModeNormal
		return m.login.focus()
	}

	m.screen = s
	m.mode = ModeNormal
	m.confirm = nil
	m.detail = nil
	m.errorMsg = ""

	switch s {
	case ScreenLogin:
		return m.login.focus()
	case ScreenHome:
		return tea.Batch(m.loadProvidersCmd(), m.loadSubscribersCmd(), m.loadActivityCmd())
	case ScreenProviders:
		if len(m.providers.Rows()) == 0 {
			return m.loadProvidersCmd()
		}
	case ScreenSubscribers:
		if len(m.subscribers.Rows()) == 0 {
			return m.loadSubscribersCmd()
		}
	}
	return nil
}

// cycleSection moves through the sidebar by delta
func (m *Model) cycleSection(delta int) tea.Cmd {
	idx := 0
	for i, s := range sections {
		if s == m.screen {
			idx = i
		}
	}
	idx = (idx + delta + len(sections)) % len(sections)
	return m.navigate(sections[idx])
}

func (m *Model) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.deps.Timeout)
}

func (m *Model) tablesLoading() bool {
	return m.providers.Loading() || m.subscribers.Loading()
}

func (m *Model) setStatus(msg string) {
	m.statusMsg = msg
	m.errorMsg = ""
}

func (m *Model) setError(msg string) {
	m.errorMsg = msg
	m.statusMsg = ""
}
