/*
Package table is a generic, in-memory table engine.

A Table[T] holds caller-owned rows plus column and action descriptors and
derives a view on demand:

	filter (Searchable) -> sort (active column) -> paginate (Pagination)

Only the search term, the sort column/direction and the current page are
stored; filtered, sorted and paged rows are recomputed by View. The current
page is always clamped to [1, TotalPages], and TotalPages is at least 1.

Clicking a sortable header cycles ascending, descending, unsorted. Clicking
another column starts it ascending.

Row actions fire independently of the row click handler. Render draws a
View as text for both the TUI and the CLI.
*/
package table
