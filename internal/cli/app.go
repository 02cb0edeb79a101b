package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/config"
	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/session"
	"github.com/studiowebux/fxdash/internal/tui"
)

// App wires the backend client, session and activity log for one command
type App struct {
	Settings config.Settings
	Log      zerolog.Logger

	Client      *api.Client
	Session     *session.Manager
	Auth        *api.AuthClient
	Providers   *api.ProviderService
	Subscribers *api.SubscriberService
	Users       *api.UserService

	// Activity is nil when the database could not be opened
	Activity *activity.Store

	Out io.Writer
	Err io.Writer
}

// AppOptions configure NewApp
type AppOptions struct {
	Settings config.Settings
	Log      zerolog.Logger
	Store    session.Store
	// OnSessionExpired runs after a failed refresh. The default records the
	// expiry and prints a hint.
	OnSessionExpired func(error)
	// DatabasePath overrides config.DatabasePath
	DatabasePath string
}

// NewApp builds the collaborators and restores the persisted session
func NewApp(opts AppOptions) (*App, error) {
	a := &App{
		Settings: opts.Settings,
		Log:      opts.Log,
		Out:      os.Stdout,
		Err:      os.Stderr,
	}

	store := opts.Store
	if store == nil {
		store = session.DefaultFileStore()
	}

	a.Client = api.NewClient(opts.Settings.APIURL,
		api.WithHTTPClient(&http.Client{Timeout: opts.Settings.RequestTimeout}),
		api.WithLogger(opts.Log))
	a.Session = session.NewManager(a.Client, store, session.WithLogger(opts.Log))

	onExpired := opts.OnSessionExpired
	if onExpired == nil {
		onExpired = func(err error) {
			a.record(context.Background(), activity.KindSessionExpired, "", err.Error())
			fmt.Fprintln(a.Err, "Session expired. Run 'fxdash login' to sign in again.")
		}
	}
	a.Auth = api.NewAuthClient(a.Client, a.Session,
		api.OnSessionExpired(onExpired),
		api.WithAuthLogger(opts.Log))

	a.Providers = api.NewProviderService(a.Auth)
	a.Subscribers = api.NewSubscriberService(a.Auth)
	a.Users = api.NewUserService(a.Auth)

	dbPath := opts.DatabasePath
	if dbPath == "" {
		dbPath = config.DatabasePath
	}
	acts, err := activity.Open(dbPath, opts.Settings.APIURL)
	if err != nil {
		a.Log.Warn().Err(err).Msg("activity log unavailable")
	} else {
		a.Activity = acts
	}

	if err := a.Session.Restore(); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return a, nil
}

// DashboardDeps wires the App into the interactive dashboard
func (a *App) DashboardDeps(keys *keybinds.Registry, version string) tui.Deps {
	deps := tui.Deps{
		Session:      a.Session,
		Providers:    a.Providers,
		Subscribers:  a.Subscribers,
		Keys:         keys,
		Logger:       a.Log,
		Timeout:      a.Settings.RequestTimeout,
		ItemsPerPage: a.Settings.ItemsPerPage,
		APIURL:       a.Settings.APIURL,
		Version:      version,
	}
	// A nil *activity.Store must not become a non-nil interface
	if a.Activity != nil {
		deps.Activity = a.Activity
	}
	return deps
}

// Close releases the activity database
func (a *App) Close() error {
	if a.Activity == nil {
		return nil
	}
	return a.Activity.Close()
}

// Context bounds one backend operation by the configured request timeout
func (a *App) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), a.Settings.RequestTimeout)
}

// RequireSession fails fast when nobody is signed in
func (a *App) RequireSession() error {
	if !a.Session.IsAuthenticated() {
		return fmt.Errorf("not signed in: run 'fxdash login' first")
	}
	return nil
}

// record appends to the activity log, logging failures
func (a *App) record(ctx context.Context, kind, subject, detail string) {
	if a.Activity == nil {
		return
	}
	if _, err := a.Activity.Record(ctx, kind, subject, detail); err != nil {
		a.Log.Warn().Err(err).Str("kind", kind).Msg("failed to record activity")
	}
}
