package cli

import (
	"errors"
	"fmt"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
)

// LoginOptions holds the credentials given on the command line
type LoginOptions struct {
	Email    string
	Password string
}

// Login signs in, prompting for anything missing
func (a *App) Login(p Prompter, opts LoginOptions) error {
	email := opts.Email
	if email == "" {
		v, err := p.Prompt("Email", false)
		if err != nil {
			return err
		}
		email = v
	}
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password := opts.Password
	if password == "" {
		v, err := p.Prompt("Password", true)
		if err != nil {
			return err
		}
		password = v
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	ctx, cancel := a.Context()
	defer cancel()

	if err := a.Session.Login(ctx, email, password); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("login failed: %s", apiErr.Message)
		}
		return fmt.Errorf("login failed: %w", err)
	}

	a.record(ctx, activity.KindLogin, email, "cli")
	fmt.Fprintf(a.Out, "Signed in as %s\n", a.Session.State().User.DisplayName())
	return nil
}

// Logout ends the session. Signing out with no session is not an error.
func (a *App) Logout() error {
	state := a.Session.State()
	if !state.IsAuthenticated {
		fmt.Fprintln(a.Out, "Not signed in")
		return nil
	}

	ctx, cancel := a.Context()
	defer cancel()

	a.Session.Logout(ctx)
	a.record(ctx, activity.KindLogout, state.User.DisplayName(), "cli")
	fmt.Fprintln(a.Out, "Signed out")
	return nil
}

// Whoami prints the signed-in identity. Remote asks the backend instead of
// trusting the persisted record.
func (a *App) Whoami(remote bool, opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := a.Context()
	defer cancel()

	user := a.Session.State().User
	if remote || user == nil {
		u, err := a.Session.ReloadUser(ctx)
		if err != nil {
			return err
		}
		user = u
	}

	if opts.Format == "" || opts.Format == FormatText {
		fmt.Fprintf(a.Out, "%s <%s>\n", user.DisplayName(), user.Email)
		if tokens := a.Session.State().Tokens; tokens != nil {
			fmt.Fprintf(a.Out, "Session expires %s\n", tokens.Expiry().Format("2006-01-02 15:04:05"))
		}
		return nil
	}
	return formatOutput(ctx, a.Out, user, opts)
}
