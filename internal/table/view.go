package table

// Header is one rendered column heading
type Header struct {
	Key       string
	Title     string
	Sortable  bool
	Direction Direction
	Width     int
}

// View is the derived, render-ready state of a Table
type View[T any] struct {
	Headers []Header
	Rows    []T
	Cells   [][]string
	// Actions holds the visible action labels per row
	Actions [][]ActionLabel

	Page       int
	TotalPages int
	TotalRows  int
	// From and To are the 1-based bounds of the visible rows, 0 when empty
	From int
	To   int

	Loading      bool
	Empty        bool
	EmptyMessage string
	Pagination   bool
	Search       string
	Searchable   bool
}

// ActionLabel is the render-ready form of an Action
type ActionLabel struct {
	Label   string
	Key     string
	Variant Variant
}

// ShowPager reports whether pagination controls are drawn
func (v View[T]) ShowPager() bool {
	return v.Pagination && v.TotalPages > 1 && !v.Loading
}

// View derives the current page
func (t *Table[T]) View() View[T] {
	v := View[T]{
		Loading:      t.loading,
		EmptyMessage: t.cfg.EmptyMessage,
		Pagination:   t.cfg.Pagination,
		Search:       t.search,
		Searchable:   t.cfg.Searchable,
	}
	for _, c := range t.columns {
		h := Header{Key: c.Key, Title: c.Header, Sortable: c.Sortable, Width: c.Width}
		if c.Key == t.sortKey {
			h.Direction = t.sortDir
		}
		v.Headers = append(v.Headers, h)
	}

	sorted := t.Sorted()
	v.TotalRows = len(sorted)
	v.TotalPages = t.totalPages(len(sorted))
	v.Page = max(1, min(t.page, v.TotalPages))

	if t.loading {
		return v
	}

	v.Rows = t.pageRows(sorted)
	v.Empty = len(v.Rows) == 0
	if !v.Empty {
		v.From = (v.Page-1)*t.cfg.ItemsPerPage + 1
		if !t.cfg.Pagination {
			v.From = 1
		}
		v.To = v.From + len(v.Rows) - 1
	}

	for i, row := range v.Rows {
		cells := make([]string, len(t.columns))
		for j, c := range t.columns {
			switch {
			case c.Render != nil:
				cells[j] = c.Render(row, i)
			case c.Value != nil:
				cells[j] = Text(c.Value(row))
			}
		}
		v.Cells = append(v.Cells, cells)

		if len(t.actions) > 0 {
			var labels []ActionLabel
			for _, a := range t.Actions(row) {
				labels = append(labels, ActionLabel{Label: a.Label, Key: a.Key, Variant: a.Variant})
			}
			v.Actions = append(v.Actions, labels)
		}
	}
	return v
}
