package cli

import (
	"context"
	"fmt"

	"github.com/studiowebux/fxdash/internal/activity"
	"github.com/studiowebux/fxdash/internal/api"
)

// ListSubscribers prints the subscribers matching search
func (a *App) ListSubscribers(params api.SearchParams, opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if err := a.RequireSession(); err != nil {
		return err
	}

	ctx, cancel := a.Context()
	defer cancel()

	rows, err := a.Subscribers.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to list subscribers: %w", err)
	}

	if opts.Format == "" || opts.Format == FormatText {
		if opts.PerPage == 0 {
			opts.PerPage = a.Settings.ItemsPerPage
		}
		return renderRows(a.Out, rows, subscriberColumns(), opts)
	}
	return formatOutput(ctx, a.Out, rows, opts)
}

// DeleteSubscriber removes subscriber id after confirmation unless yes is set
func (a *App) DeleteSubscriber(p Prompter, id string, yes bool) error {
	return a.deleteResource(p, "subscriber", id, yes)
}

func (a *App) deleteResource(p Prompter, kind, id string, yes bool) error {
	if err := a.RequireSession(); err != nil {
		return err
	}

	if !yes {
		ok, err := p.Confirm(fmt.Sprintf("Delete %s %s?", kind, id))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.Out, "Cancelled")
			return nil
		}
	}

	ctx, cancel := a.Context()
	defer cancel()

	var (
		del       func(context.Context, string) error
		kindEntry string
	)
	switch kind {
	case "provider":
		del, kindEntry = a.Providers.Delete, activity.KindProviderDelete
	default:
		del, kindEntry = a.Subscribers.Delete, activity.KindSubscriberDelete
	}

	if err := del(ctx, id); err != nil {
		if api.IsNotFound(err) {
			return fmt.Errorf("%s %s not found", kind, id)
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}

	a.record(ctx, kindEntry, id, "")
	fmt.Fprintf(a.Out, "Deleted %s %s\n", kind, id)
	return nil
}
