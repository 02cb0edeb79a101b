package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/types"
)

type restoredMsg struct{ err error }

type loginDoneMsg struct {
	email string
	err   error
}

type logoutDoneMsg struct{ name string }

type providersLoadedMsg struct {
	rows []types.Provider
	err  error
}

type subscribersLoadedMsg struct {
	rows []types.Subscriber
	err  error
}

type activityLoadedMsg struct {
	entries []types.ActivityEntry
	err     error
}

type providerSavedMsg struct {
	provider *types.Provider
	created  bool
	err      error
}

type deletedMsg struct {
	kind string
	name string
	err  error
}

// sessionExpiredMsg is sent by the authenticated client's expiry hook
type sessionExpiredMsg struct{ err error }

// activityRecordedMsg carries a new feed entry
type activityRecordedMsg struct{ entry types.ActivityEntry }

func (m *Model) restoreCmd() tea.Cmd {
	sess := m.deps.Session
	return func() tea.Msg {
		return restoredMsg{err: sess.Restore()}
	}
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	sess := m.deps.Session
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		return loginDoneMsg{email: email, err: sess.Login(ctx, email, password)}
	}
}

func (m *Model) logoutCmd() tea.Cmd {
	sess := m.deps.Session
	name := sess.State().User.DisplayName()
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		sess.Logout(ctx)
		return logoutDoneMsg{name: name}
	}
}

func (m *Model) loadProvidersCmd() tea.Cmd {
	m.providers.SetLoading(true)
	svc := m.deps.Providers
	ctx, cancel := m.context()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer cancel()
		rows, err := svc.Search(ctx, api.SearchParams{})
		return providersLoadedMsg{rows: rows, err: err}
	})
}

func (m *Model) loadSubscribersCmd() tea.Cmd {
	m.subscribers.SetLoading(true)
	svc := m.deps.Subscribers
	ctx, cancel := m.context()
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer cancel()
		rows, err := svc.Search(ctx, api.SearchParams{})
		return subscribersLoadedMsg{rows: rows, err: err}
	})
}

func (m *Model) loadActivityCmd() tea.Cmd {
	log := m.deps.Activity
	if log == nil {
		return nil
	}
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		entries, err := log.Recent(ctx, activity.DefaultLimit)
		return activityLoadedMsg{entries: entries, err: err}
	}
}

// recordCmd appends to the activity feed. Failures are logged only.
func (m *Model) recordCmd(kind, subject, detail string) tea.Cmd {
	log := m.deps.Activity
	if log == nil {
		return nil
	}
	logger := m.log
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		entry, err := log.Record(ctx, kind, subject, detail)
		if err != nil {
			logger.Warn().Err(err).Str("kind", kind).Msg("failed to record activity")
			return nil
		}
		return activityRecordedMsg{entry: entry}
	}
}

func (m *Model) saveProviderCmd(id string, p types.Provider) tea.Cmd {
	svc := m.deps.Providers
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		if id == "" {
			out, err := svc.Create(ctx, p)
			return providerSavedMsg{provider: out, created: true, err: err}
		}
		out, err := svc.Update(ctx, id, p)
		return providerSavedMsg{provider: out, err: err}
	}
}

func (m *Model) deleteCmd(d pendingDelete) tea.Cmd {
	providers, subscribers := m.deps.Providers, m.deps.Subscribers
	ctx, cancel := m.context()
	return func() tea.Msg {
		defer cancel()
		var err error
		if d.kind == "provider" {
			err = providers.Delete(ctx, d.id)
		} else {
			err = subscribers.Delete(ctx, d.id)
		}
		return deletedMsg{kind: d.kind, name: d.name, err: err}
	}
}

// handleMessage applies command results
func (m *Model) handleMessage(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case restoredMsg:
		m.restoring = false
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("session restore failed")
		}
		if m.deps.Session.State().IsAuthenticated {
			return m.navigate(ScreenHome)
		}
		return m.navigate(ScreenLogin)

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.login.err = loginErrorMessage(msg.err)
			return m.login.focus()
		}
		m.login.reset()
		target := m.afterAuth
		m.afterAuth = ScreenHome
		m.setStatus("Signed in as " + msg.email)
		return tea.Batch(m.navigate(target), m.recordCmd(activity.KindLogin, msg.email, ""))

	case logoutDoneMsg:
		m.busy = false
		m.resetData()
		m.screen = ScreenLogin
		m.afterAuth = ScreenHome
		m.setStatus("Signed out")
		return tea.Batch(m.login.focus(), m.recordCmd(activity.KindLogout, msg.name, ""))

	case sessionExpiredMsg:
		return m.expire(msg.err)

	case providersLoadedMsg:
		m.providers.SetLoading(false)
		if m.failed(msg.err, "Failed to load providers") {
			return m.expiredCmd(msg.err)
		}
		m.providers.SetRows(msg.rows)
		m.clampCursors()
		m.refreshStats()
		return nil

	case subscribersLoadedMsg:
		m.subscribers.SetLoading(false)
		if m.failed(msg.err, "Failed to load subscribers") {
			return m.expiredCmd(msg.err)
		}
		m.subscribers.SetRows(msg.rows)
		m.clampCursors()
		m.refreshStats()
		return nil

	case activityLoadedMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("failed to load activity")
			return nil
		}
		m.recent = msg.entries
		return nil

	case activityRecordedMsg:
		m.recent = append([]types.ActivityEntry{msg.entry}, m.recent...)
		if len(m.recent) > activity.DefaultLimit {
			m.recent = m.recent[:activity.DefaultLimit]
		}
		return nil

	case providerSavedMsg:
		m.busy = false
		if msg.err != nil {
			if m.form != nil {
				m.form.applyError(msg.err)
			}
			return m.expiredCmd(msg.err)
		}
		kind, verb := activity.KindProviderUpdate, "updated"
		if msg.created {
			kind, verb = activity.KindProviderCreate, "created"
		}
		m.form = nil
		m.setStatus(fmt.Sprintf("Provider %q %s", msg.provider.Name, verb))
		m.screen = ScreenProviders
		return tea.Batch(m.loadProvidersCmd(), m.recordCmd(kind, msg.provider.Name, msg.provider.ID))

	case deletedMsg:
		m.busy = false
		if m.failed(msg.err, "Failed to delete "+msg.kind) {
			return m.expiredCmd(msg.err)
		}
		m.setStatus(fmt.Sprintf("Deleted %s %q", msg.kind, msg.name))
		if msg.kind == "provider" {
			return tea.Batch(m.loadProvidersCmd(), m.recordCmd(activity.KindProviderDelete, msg.name, ""))
		}
		return tea.Batch(m.loadSubscribersCmd(), m.recordCmd(activity.KindSubscriberDelete, msg.name, ""))
	}
	return nil
}

// failed reports err on the status line and returns true when err is set
func (m *Model) failed(err error, prefix string) bool {
	if err == nil {
		return false
	}
	m.log.Warn().Err(err).Msg(prefix)
	m.setError(prefix + ": " + err.Error())
	return true
}

// expiredCmd sends the model to login when err ended the session
func (m *Model) expiredCmd(err error) tea.Cmd {
	if errors.Is(err, api.ErrSessionExpired) {
		return m.expire(err)
	}
	return nil
}

// expire returns to the login screen once per lost session
func (m *Model) expire(err error) tea.Cmd {
	if m.screen == ScreenLogin {
		return nil
	}
	m.log.Info().Err(err).Msg("session expired, returning to login")

	if m.screen != ScreenProviderForm {
		m.afterAuth = m.screen
	} else {
		m.afterAuth = ScreenProviders
	}
	m.resetData()
	m.screen = ScreenLogin
	m.login.err = "Your session has expired. Please sign in again."
	return tea.Batch(m.login.focus(), m.recordCmd(activity.KindSessionExpired, "", errString(err)))
}

// resetData drops everything fetched under the previous session
func (m *Model) resetData() {
	m.mode = ModeNormal
	m.busy = false
	m.form = nil
	m.confirm = nil
	m.detail = nil
	m.providers.SetRows(nil)
	m.providers.SetLoading(false)
	m.subscribers.SetRows(nil)
	m.subscribers.SetLoading(false)
	m.providerCursor, m.subscriberCursor = 0, 0
	m.stats = homeStats{}
}

func (m *Model) refreshStats() {
	var s homeStats
	for _, p := range m.providers.Rows() {
		s.TotalProviders++
		if p.Status == types.StatusActive {
			s.ActiveProviders++
		}
		s.TotalRequests += p.RequestCount
	}
	s.Subscribers = len(m.subscribers.Rows())
	m.stats = s
}

func loginErrorMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Login failed. Please check your credentials."
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
