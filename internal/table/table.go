package table

import (
	"slices"
	"strings"
)

// Direction is a column's sort state
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// Column describes one field of T
type Column[T any] struct {
	Key    string
	Header string
	// Value returns the raw field used for search and sort
	Value func(T) any
	// Render formats the cell for display; defaults to Text(Value(row))
	Render   func(row T, index int) string
	Sortable bool
	Width    int
}

// Variant styles an action button
type Variant string

const (
	VariantPrimary   Variant = "primary"
	VariantSecondary Variant = "secondary"
	VariantDanger    Variant = "danger"
)

// Action is a per-row command
type Action[T any] struct {
	Label   string
	Key     string
	Variant Variant
	OnClick func(T)
	// Show hides the action for rows where it returns false
	Show func(T) bool
}

func (a Action[T]) visible(row T) bool {
	return a.Show == nil || a.Show(row)
}

// Config holds presentation options
type Config struct {
	Searchable        bool
	Pagination        bool
	ItemsPerPage      int
	EmptyMessage      string
	SearchPlaceholder string
}

// DefaultConfig mirrors the dashboard widget's defaults
func DefaultConfig() Config {
	return Config{
		Searchable:        false,
		Pagination:        true,
		ItemsPerPage:      10,
		EmptyMessage:      "No data available",
		SearchPlaceholder: "Search...",
	}
}

// Option configures a Table
type Option[T any] func(*Table[T])

// WithConfig replaces the configuration. Zero ItemsPerPage and empty
// messages fall back to the defaults.
func WithConfig[T any](cfg Config) Option[T] {
	return func(t *Table[T]) {
		def := DefaultConfig()
		if cfg.ItemsPerPage <= 0 {
			cfg.ItemsPerPage = def.ItemsPerPage
		}
		if cfg.EmptyMessage == "" {
			cfg.EmptyMessage = def.EmptyMessage
		}
		if cfg.SearchPlaceholder == "" {
			cfg.SearchPlaceholder = def.SearchPlaceholder
		}
		t.cfg = cfg
	}
}

// WithActions sets the row actions
func WithActions[T any](actions ...Action[T]) Option[T] {
	return func(t *Table[T]) { t.actions = actions }
}

// WithRowClick sets the handler for clicks outside action controls
func WithRowClick[T any](fn func(T)) Option[T] {
	return func(t *Table[T]) { t.onRowClick = fn }
}

// Table is the state of one rendered table
type Table[T any] struct {
	rows       []T
	columns    []Column[T]
	actions    []Action[T]
	onRowClick func(T)
	cfg        Config

	search  string
	sortKey string
	sortDir Direction
	page    int
	loading bool
}

// New creates a table over rows. The slice is never modified.
func New[T any](rows []T, columns []Column[T], opts ...Option[T]) *Table[T] {
	t := &Table[T]{
		rows:    rows,
		columns: columns,
		cfg:     DefaultConfig(),
		page:    1,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Config returns the table configuration
func (t *Table[T]) Config() Config {
	return t.cfg
}

// Columns returns the column descriptors
func (t *Table[T]) Columns() []Column[T] {
	return t.columns
}

// SetRows replaces the source rows and keeps the page in range
func (t *Table[T]) SetRows(rows []T) {
	t.rows = rows
	t.page = t.clampPage(t.page)
}

// Rows returns the source rows
func (t *Table[T]) Rows() []T {
	return t.rows
}

// SetLoading toggles the loading indicator
func (t *Table[T]) SetLoading(loading bool) {
	t.loading = loading
}

// Loading reports whether the loading indicator is shown
func (t *Table[T]) Loading() bool {
	return t.loading
}

// SetSearch changes the search term and returns to page 1
func (t *Table[T]) SetSearch(term string) {
	t.search = term
	t.page = 1
}

// Search returns the current search term
func (t *Table[T]) Search() string {
	return t.search
}

// ToggleSort advances key's sort state: unsorted, ascending, descending,
// unsorted. Another column's sort is dropped. Returns false when key is
// not a sortable column.
func (t *Table[T]) ToggleSort(key string) bool {
	col, ok := t.column(key)
	if !ok || !col.Sortable {
		return false
	}

	switch {
	case t.sortKey != key || t.sortDir == Unsorted:
		t.sortKey, t.sortDir = key, Ascending
	case t.sortDir == Ascending:
		t.sortDir = Descending
	default:
		t.sortKey, t.sortDir = "", Unsorted
	}
	return true
}

// Sort returns the active sort column and direction
func (t *Table[T]) Sort() (string, Direction) {
	return t.sortKey, t.sortDir
}

// ClearSort drops any active sort
func (t *Table[T]) ClearSort() {
	t.sortKey, t.sortDir = "", Unsorted
}

// Page returns the current 1-based page
func (t *Table[T]) Page() int {
	return t.clampPage(t.page)
}

// SetPage moves to page n, clamped to the valid range
func (t *Table[T]) SetPage(n int) {
	t.page = t.clampPage(n)
}

// NextPage advances one page if possible
func (t *Table[T]) NextPage() {
	t.SetPage(t.Page() + 1)
}

// PrevPage goes back one page if possible
func (t *Table[T]) PrevPage() {
	t.SetPage(t.Page() - 1)
}

// TotalPages returns max(1, ceil(n/ItemsPerPage)) over the sorted rows
func (t *Table[T]) TotalPages() int {
	return t.totalPages(len(t.Filtered()))
}

func (t *Table[T]) totalPages(n int) int {
	if !t.cfg.Pagination || n == 0 {
		return 1
	}
	return (n + t.cfg.ItemsPerPage - 1) / t.cfg.ItemsPerPage
}

func (t *Table[T]) clampPage(n int) int {
	return max(1, min(n, t.TotalPages()))
}

// Filtered returns the rows matching the search term, in source order
func (t *Table[T]) Filtered() []T {
	if !t.cfg.Searchable || t.search == "" {
		return t.rows
	}

	term := strings.ToLower(t.search)
	out := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.matches(row, term) {
			out = append(out, row)
		}
	}
	return out
}

func (t *Table[T]) matches(row T, term string) bool {
	for _, col := range t.columns {
		if col.Value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(Text(col.Value(row))), term) {
			return true
		}
	}
	return false
}

// Sorted returns the filtered rows ordered by the active sort column
func (t *Table[T]) Sorted() []T {
	filtered := t.Filtered()
	col, ok := t.column(t.sortKey)
	if t.sortDir == Unsorted || !ok || col.Value == nil {
		return filtered
	}

	out := slices.Clone(filtered)
	slices.SortStableFunc(out, func(a, b T) int {
		c := Compare(col.Value(a), col.Value(b))
		if t.sortDir == Descending {
			return -c
		}
		return c
	})
	return out
}

// Actions returns the actions shown for row
func (t *Table[T]) Actions(row T) []Action[T] {
	out := make([]Action[T], 0, len(t.actions))
	for _, a := range t.actions {
		if a.visible(row) {
			out = append(out, a)
		}
	}
	return out
}

// HasActions reports whether any action is configured
func (t *Table[T]) HasActions() bool {
	return len(t.actions) > 0
}

// ClickRow fires the row handler for the index-th row of the current page
func (t *Table[T]) ClickRow(index int) bool {
	row, ok := t.pageRow(index)
	if !ok || t.onRowClick == nil {
		return false
	}
	t.onRowClick(row)
	return true
}

// ClickAction fires the action labelled label on the index-th row of the
// current page. The row handler is not invoked. Hidden actions do nothing.
func (t *Table[T]) ClickAction(index int, label string) bool {
	row, ok := t.pageRow(index)
	if !ok {
		return false
	}
	for _, a := range t.Actions(row) {
		if a.Label == label || (a.Key != "" && a.Key == label) {
			if a.OnClick != nil {
				a.OnClick(row)
			}
			return true
		}
	}
	return false
}

func (t *Table[T]) pageRow(index int) (T, bool) {
	var zero T
	if t.loading {
		return zero, false
	}
	rows := t.pageRows(t.Sorted())
	if index < 0 || index >= len(rows) {
		return zero, false
	}
	return rows[index], true
}

func (t *Table[T]) pageRows(sorted []T) []T {
	if !t.cfg.Pagination {
		return sorted
	}
	page := max(1, min(t.page, t.totalPages(len(sorted))))
	start := (page - 1) * t.cfg.ItemsPerPage
	end := min(start+t.cfg.ItemsPerPage, len(sorted))
	if start >= end {
		return nil
	}
	return sorted[start:end]
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column[T]{}, false
}
