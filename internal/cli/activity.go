package cli

import (
	"context"
	"fmt"
)

// ShowActivity prints the most recent activity entries
func (a *App) ShowActivity(limit int, opts OutputOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	if a.Activity == nil {
		return fmt.Errorf("activity log is unavailable")
	}

	entries, err := a.Activity.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	if opts.Format == "" || opts.Format == FormatText {
		if len(entries) == 0 {
			fmt.Fprintln(a.Out, "No recent activity")
			return nil
		}
		return renderRows(a.Out, entries, activityColumns(), opts)
	}
	return formatOutput(context.Background(), a.Out, entries, opts)
}

// ClearActivity removes every entry recorded for the configured backend
func (a *App) ClearActivity() error {
	if a.Activity == nil {
		return fmt.Errorf("activity log is unavailable")
	}
	n, err := a.Activity.Clear(context.Background())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Removed %d activity entries\n", n)
	return nil
}
