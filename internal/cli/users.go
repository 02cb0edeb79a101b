package cli

import (
	"fmt"

	"github.com/studiowebux/fxdash/internal/table"
	"github.com/studiowebux/fxdash/internal/types"
)

// ListUsers prints the backend's user accounts
func (a *App) ListUsers(opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := a.Context()
	defer cancel()

	users, err := a.Users.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	if opts.Format == "" || opts.Format == FormatText {
		return renderRows(a.Out, users, userColumns(), opts)
	}
	return formatOutput(ctx, a.Out, users, opts)
}

func userColumns() []table.Column[types.User] {
	return []table.Column[types.User]{
		{Key: "id", Header: "ID", Value: func(u types.User) any { return u.ID }},
		{Key: "email", Header: "Email", Value: func(u types.User) any { return u.Email }, Sortable: true},
		{Key: "name", Header: "Name", Value: func(u types.User) any { return u.Name }, Sortable: true},
	}
}
