package tui

import (
	"fmt"
	"strconv"

	"github.com/studiowebux/fxdash/internal/table"
	"github.com/studiowebux/fxdash/internal/types"
)

// detailLine is one label/value pair of the opened row
type detailLine struct {
	Label string
	Value string
}

func (m *Model) tableConfig(placeholder string) table.Config {
	cfg := table.DefaultConfig()
	cfg.Searchable = true
	cfg.SearchPlaceholder = placeholder
	if m.deps.ItemsPerPage > 0 {
		cfg.ItemsPerPage = m.deps.ItemsPerPage
	}
	return cfg
}

func (m *Model) newProviderTable() *table.Table[types.Provider] {
	cfg := m.tableConfig("Search providers...")
	cfg.EmptyMessage = "No providers found"

	columns := []table.Column[types.Provider]{
		{Key: "name", Header: "Provider", Sortable: true, Width: 22,
			Value: func(p types.Provider) any { return p.Name }},
		{Key: "apiUrl", Header: "API URL", Sortable: true, Width: 30,
			Value: func(p types.Provider) any { return p.APIURL }},
		{Key: "status", Header: "Status", Sortable: true, Width: 8,
			Value:  func(p types.Provider) any { return string(p.Status) },
			Render: func(p types.Provider, _ int) string { return statusBadge(p.Status) }},
		{Key: "rateLimit", Header: "Rate limit", Sortable: true, Width: 10,
			Value: func(p types.Provider) any { return p.RateLimit }},
		{Key: "lastSync", Header: "Last Sync", Sortable: true, Width: 19,
			Value:  func(p types.Provider) any { return p.LastSync },
			Render: func(p types.Provider, _ int) string { return orNever(p.LastSync) }},
		{Key: "requestCount", Header: "Requests", Sortable: true, Width: 9,
			Value: func(p types.Provider) any { return p.RequestCount }},
	}

	return table.New(nil, columns,
		table.WithConfig[types.Provider](cfg),
		table.WithActions(
			table.Action[types.Provider]{Label: "Edit", Key: "e", Variant: table.VariantPrimary,
				OnClick: func(p types.Provider) { m.openProviderForm(&p) }},
			table.Action[types.Provider]{Label: "Delete", Key: "d", Variant: table.VariantDanger,
				OnClick: func(p types.Provider) { m.askDelete("provider", p.ID, p.Name) }},
			table.Action[types.Provider]{Label: "Copy key", Key: "c", Variant: table.VariantSecondary,
				OnClick: func(p types.Provider) { m.copyKey(p.Name, p.APIKey) },
				Show:    func(p types.Provider) bool { return p.APIKey != "" }},
		),
		table.WithRowClick(func(p types.Provider) { m.detail = providerDetail(p); m.mode = ModeDetail }),
	)
}

func (m *Model) newSubscriberTable() *table.Table[types.Subscriber] {
	cfg := m.tableConfig("Search subscribers...")
	cfg.EmptyMessage = "No subscribers found"

	columns := []table.Column[types.Subscriber]{
		{Key: "name", Header: "Subscriber Name", Sortable: true, Width: 24,
			Value: func(s types.Subscriber) any { return s.Name }},
		{Key: "apiKey", Header: "API Key", Width: 16,
			Value:  func(s types.Subscriber) any { return s.APIKey },
			Render: func(s types.Subscriber, _ int) string { return maskKey(s.APIKey) }},
		{Key: "status", Header: "Status", Sortable: true, Width: 8,
			Value:  func(s types.Subscriber) any { return string(s.Status) },
			Render: func(s types.Subscriber, _ int) string { return statusBadge(s.Status) }},
		{Key: "lastSync", Header: "Last Sync", Sortable: true, Width: 19,
			Value:  func(s types.Subscriber) any { return s.LastSync },
			Render: func(s types.Subscriber, _ int) string { return orNever(s.LastSync) }},
		{Key: "requestCount", Header: "Requests", Sortable: true, Width: 9,
			Value: func(s types.Subscriber) any { return s.RequestCount }},
	}

	return table.New(nil, columns,
		table.WithConfig[types.Subscriber](cfg),
		table.WithActions(
			table.Action[types.Subscriber]{Label: "Delete", Key: "d", Variant: table.VariantDanger,
				OnClick: func(s types.Subscriber) { m.askDelete("subscriber", s.ID, s.Name) }},
			table.Action[types.Subscriber]{Label: "Copy key", Key: "c", Variant: table.VariantSecondary,
				OnClick: func(s types.Subscriber) { m.copyKey(s.Name, s.APIKey) },
				Show:    func(s types.Subscriber) bool { return s.APIKey != "" }},
		),
		table.WithRowClick(func(s types.Subscriber) { m.detail = subscriberDetail(s); m.mode = ModeDetail }),
	)
}

// pager is the table surface the key handler drives
type pager interface {
	SetSearch(string)
	Search() string
	ToggleSort(string) bool
	NextPage()
	PrevPage()
	SetPage(int)
	Page() int
	TotalPages() int
	ClickRow(int) bool
	ClickAction(int, string) bool
	HasActions() bool
}

// activeTable returns the table on screen with its cursor and sortable keys
func (m *Model) activeTable() (pager, *int, []string) {
	switch m.screen {
	case ScreenProviders:
		return m.providers, &m.providerCursor, columnKeys(m.providers.Columns())
	case ScreenSubscribers:
		return m.subscribers, &m.subscriberCursor, columnKeys(m.subscribers.Columns())
	}
	return nil, nil, nil
}

// pageLen is the row count of the visible page
func (m *Model) pageLen() int {
	switch m.screen {
	case ScreenProviders:
		return len(m.providers.View().Rows)
	case ScreenSubscribers:
		return len(m.subscribers.View().Rows)
	}
	return 0
}

// columnKeys lists every column key. The 1..9 shortcut counts all columns
// so the number matches the header position
func columnKeys[T any](cols []table.Column[T]) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}

func (m *Model) clampCursors() {
	m.providerCursor = clampCursor(m.providerCursor, len(m.providers.View().Rows))
	m.subscriberCursor = clampCursor(m.subscriberCursor, len(m.subscribers.View().Rows))
}

func clampCursor(c, n int) int {
	if n == 0 {
		return 0
	}
	return max(0, min(c, n-1))
}

func (m *Model) askDelete(kind, id, name string) {
	m.confirm = &pendingDelete{kind: kind, id: id, name: name}
	m.mode = ModeConfirmDelete
}

func (m *Model) copyKey(name, key string) {
	if err := m.deps.CopyToClipboard(key); err != nil {
		m.setError("Failed to copy API key: " + err.Error())
		return
	}
	m.setStatus(fmt.Sprintf("Copied API key of %q", name))
}

func providerDetail(p types.Provider) []detailLine {
	return []detailLine{
		{"ID", p.ID},
		{"Name", p.Name},
		{"API URL", p.APIURL},
		{"API key", maskKey(p.APIKey)},
		{"Status", string(p.Status)},
		{"Description", p.Description},
		{"Rate limit", strconv.Itoa(p.RateLimit) + " req/min"},
		{"Timeout", strconv.Itoa(p.Timeout) + "s"},
		{"Last sync", orNever(p.LastSync)},
		{"Requests", strconv.Itoa(p.RequestCount)},
	}
}

func subscriberDetail(s types.Subscriber) []detailLine {
	return []detailLine{
		{"ID", s.ID},
		{"Name", s.Name},
		{"API key", maskKey(s.APIKey)},
		{"Status", string(s.Status)},
		{"Last sync", orNever(s.LastSync)},
		{"Requests", strconv.Itoa(s.RequestCount)},
	}
}

// maskKey keeps the first and last four characters of an API key
func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 8 {
		return key
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

func orNever(s string) string {
	if s == "" {
		return "Never"
	}
	return s
}
