package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiowebux/fxdash/internal/mock"
)

// MockOptions configure the development backend
type MockOptions struct {
	ConfigPath string
	Host       string
	Port       int
}

// RunMock serves the development backend until ctx is cancelled
func RunMock(ctx context.Context, out io.Writer, log zerolog.Logger, opts MockOptions) error {
	cfg := mock.DefaultConfig()
	if opts.ConfigPath != "" {
		loaded, err := mock.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.Host != "" {
		cfg.Host = opts.Host
	}
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	srv, err := mock.NewServer(cfg, mock.WithLogger(log))
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Mock backend listening on %s (Ctrl+C to stop)\n", srv.GetAddress())
	for _, u := range cfg.Users {
		fmt.Fprintf(out, "  user %s / %s\n", u.Email, u.Password)
	}

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "Stopping mock backend")
			return srv.Stop()
		case <-srv.NotifyChannel():
			for _, l := range srv.DrainLogs() {
				fmt.Fprintf(out, "%s %-6s %-28s %d %s\n",
					l.Timestamp.Format(time.TimeOnly), l.Method, l.Path, l.Status, l.Duration.Round(time.Microsecond))
			}
		}
	}
}
