package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/studiowebux/fxdash/internal/version"
)

// PrintVersion prints the banner and build version. With checker set it
// also reports whether a newer release exists.
func PrintVersion(ctx context.Context, w io.Writer, checker *version.Checker) error {
	fmt.Fprint(w, version.Banner())
	fmt.Fprintf(w, "\n%s %s\n", version.AppName, version.Version)

	if checker == nil {
		return nil
	}
	update, err := checker.Check(ctx, version.Version)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if update.Available {
		fmt.Fprintf(w, "A newer version is available: %s (%s)\n", update.Latest, update.URL)
	} else {
		fmt.Fprintln(w, "You are running the latest version")
	}
	return nil
}
