package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/fxdash/internal/filter"
	"github.com/studiowebux/fxdash/internal/table"
	"github.com/studiowebux/fxdash/internal/types"
)

// Output formats accepted by -o
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// OutputOptions control how a command prints its result
type OutputOptions struct {
	Format string
	// Query is a JMESPath expression or $(command) applied to JSON output
	Query string

	// Table options, text format only
	Search  string
	Sort    string
	Desc    bool
	Page    int
	PerPage int
	Width   int
}

func (o OutputOptions) validate() error {
	switch o.Format {
	case "", FormatText, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("unknown output format %q (want text, json or yaml)", o.Format)
	}
	if o.Query != "" && o.Format != FormatJSON {
		return fmt.Errorf("--query requires -o json")
	}
	if o.Query != "" && !filter.IsShellCommand(o.Query) && !filter.IsValidJMESPath(o.Query) {
		return fmt.Errorf("invalid JMESPath expression %q", o.Query)
	}
	return nil
}

// formatOutput encodes v as JSON or YAML
func formatOutput(ctx context.Context, w io.Writer, v any, opts OutputOptions) error {
	switch opts.Format {
	case FormatJSON:
		out, err := filter.Apply(ctx, v, opts.Query)
		if err != nil {
			return err
		}
		return writeJSON(w, out)
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", opts.Format)
	}
}

// writeJSON highlights JSON when w is a terminal
func writeJSON(w io.Writer, body string) error {
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if isTerminal(w) {
		if err := quick.Highlight(w, body, "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := io.WriteString(w, body)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// isInteractive reports whether stdin is attached to a terminal
func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// renderRows prints rows through the table engine
func renderRows[T any](w io.Writer, rows []T, columns []table.Column[T], opts OutputOptions) error {
	t := table.New(rows, columns, table.WithConfig[T](table.Config{
		Searchable:   true,
		Pagination:   opts.PerPage > 0,
		ItemsPerPage: opts.PerPage,
		EmptyMessage: "No results",
	}))

	t.SetSearch(opts.Search)
	if opts.Sort != "" {
		if !t.ToggleSort(opts.Sort) {
			return fmt.Errorf("cannot sort by %q (sortable: %s)", opts.Sort, strings.Join(sortableKeys(columns), ", "))
		}
		if opts.Desc {
			t.ToggleSort(opts.Sort)
		}
	}
	if opts.Page > 0 {
		t.SetPage(opts.Page)
	}

	_, err := fmt.Fprintln(w, table.Render(t.View(), table.RenderOptions{Width: opts.Width, Selected: -1}))
	return err
}

func sortableKeys[T any](columns []table.Column[T]) []string {
	var keys []string
	for _, c := range columns {
		if c.Sortable {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

func providerColumns() []table.Column[types.Provider] {
	return []table.Column[types.Provider]{
		{Key: "id", Header: "ID", Value: func(p types.Provider) any { return p.ID }},
		{Key: "name", Header: "Provider", Value: func(p types.Provider) any { return p.Name }, Sortable: true},
		{Key: "apiUrl", Header: "API URL", Value: func(p types.Provider) any { return p.APIURL }, Sortable: true},
		{Key: "status", Header: "Status", Value: func(p types.Provider) any { return string(p.Status) }, Sortable: true},
		{Key: "rateLimit", Header: "Rate limit", Value: func(p types.Provider) any { return p.RateLimit }, Sortable: true},
		{Key: "lastSync", Header: "Last Sync", Value: func(p types.Provider) any { return orNever(p.LastSync) }, Sortable: true},
		{Key: "requestCount", Header: "Requests", Value: func(p types.Provider) any { return p.RequestCount }, Sortable: true},
	}
}

func subscriberColumns() []table.Column[types.Subscriber] {
	return []table.Column[types.Subscriber]{
		{Key: "id", Header: "ID", Value: func(s types.Subscriber) any { return s.ID }},
		{Key: "name", Header: "Subscriber Name", Value: func(s types.Subscriber) any { return s.Name }, Sortable: true},
		{Key: "apiKey", Header: "API Key", Value: func(s types.Subscriber) any { return maskKey(s.APIKey) }},
		{Key: "status", Header: "Status", Value: func(s types.Subscriber) any { return string(s.Status) }, Sortable: true},
		{Key: "lastSync", Header: "Last Sync", Value: func(s types.Subscriber) any { return orNever(s.LastSync) }, Sortable: true},
		{Key: "requestCount", Header: "Requests", Value: func(s types.Subscriber) any { return s.RequestCount }, Sortable: true},
	}
}

func activityColumns() []table.Column[types.ActivityEntry] {
	return []table.Column[types.ActivityEntry]{
		{Key: "timestamp", Header: "When", Value: func(e types.ActivityEntry) any { return e.Timestamp }},
		{Key: "kind", Header: "Event", Value: func(e types.ActivityEntry) any { return e.Kind }},
		{Key: "subject", Header: "Subject", Value: func(e types.ActivityEntry) any { return e.Subject }},
		{Key: "detail", Header: "Detail", Value: func(e types.ActivityEntry) any { return e.Detail }},
	}
}

func orNever(s string) string {
	if s == "" {
		return "Never"
	}
	return s
}

// maskKey keeps the first and last four characters of long keys
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 8 {
		return key
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}
