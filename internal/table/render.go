package table

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	maxCellWidth = 40
	minCellWidth = 4
	cellGap      = 2
)

var (
	styleHeader = lipgloss.NewStyle().Bold(true)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSubtle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"})

	variantStyles = map[Variant]lipgloss.Style{
		VariantPrimary:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}),
		VariantSecondary: styleSubtle,
		VariantDanger:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff5f5f"}),
	}
)

// RenderOptions controls Render
type RenderOptions struct {
	// Width is the available terminal width; 0 means unbounded
	Width int
	// Selected is the highlighted row index on the page, -1 for none
	Selected int
}

// Render draws v as aligned text with a header rule and a pager line
func Render[T any](v View[T], opts RenderOptions) string {
	var b strings.Builder

	if v.Searchable && v.Search != "" {
		b.WriteString(styleSubtle.Render("Search: "+v.Search) + "\n")
	}

	widths := columnWidths(v, opts.Width)
	hasActions := len(v.Actions) > 0

	header := make([]string, len(v.Headers))
	for i, h := range v.Headers {
		header[i] = runewidth.FillRight(runewidth.Truncate(headerTitle(h), widths[i], "…"), widths[i])
	}
	if hasActions {
		header = append(header, "ACTIONS")
	}
	headerLine := "  " + strings.Join(header, strings.Repeat(" ", cellGap))
	b.WriteString(styleHeader.Render(strings.TrimRight(headerLine, " ")) + "\n")
	b.WriteString(styleSubtle.Render(strings.Repeat("─", runewidth.StringWidth(strings.TrimRight(headerLine, " ")))) + "\n")

	switch {
	case v.Loading:
		b.WriteString(styleSubtle.Render("  Loading...") + "\n")
		return b.String()
	case v.Empty:
		b.WriteString(styleSubtle.Render("  "+v.EmptyMessage) + "\n")
		return b.String()
	}

	for i, cells := range v.Cells {
		parts := make([]string, len(cells))
		for j, c := range cells {
			parts[j] = runewidth.FillRight(runewidth.Truncate(flatten(c), widths[j], "…"), widths[j])
		}
		line := strings.Join(parts, strings.Repeat(" ", cellGap))
		if i == opts.Selected {
			line = styleSelected.Render("> " + line)
		} else {
			line = "  " + line
		}
		if hasActions {
			line += strings.Repeat(" ", cellGap) + renderActions(v.Actions[i])
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}

	if v.Pagination {
		pager := fmt.Sprintf("Showing %d to %d of %d results", v.From, v.To, v.TotalRows)
		if v.ShowPager() {
			pager += fmt.Sprintf("  ·  Page %d of %d", v.Page, v.TotalPages)
		}
		b.WriteString("\n" + styleSubtle.Render(pager) + "\n")
	}
	return b.String()
}

func headerTitle(h Header) string {
	title := strings.ToUpper(h.Title)
	switch h.Direction {
	case Ascending:
		return title + " ▲"
	case Descending:
		return title + " ▼"
	}
	return title
}

func renderActions(labels []ActionLabel) string {
	parts := make([]string, 0, len(labels))
	for _, a := range labels {
		text := a.Label
		if a.Key != "" {
			text = "[" + a.Key + "] " + a.Label
		}
		if style, ok := variantStyles[a.Variant]; ok {
			text = style.Render(text)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " ")
}

// columnWidths fits every column to its widest cell, then shrinks the
// widest columns until the row fits in total.
func columnWidths[T any](v View[T], total int) []int {
	widths := make([]int, len(v.Headers))
	for i, h := range v.Headers {
		if h.Width > 0 {
			widths[i] = h.Width
			continue
		}
		w := runewidth.StringWidth(headerTitle(h))
		for _, cells := range v.Cells {
			w = max(w, runewidth.StringWidth(flatten(cells[i])))
		}
		widths[i] = min(w, maxCellWidth)
	}

	if total <= 0 {
		return widths
	}

	budget := total - 2 - cellGap*max(0, len(widths)-1)
	if len(v.Actions) > 0 {
		widest := 0
		for _, a := range v.Actions {
			widest = max(widest, runewidth.StringWidth(plainActions(a)))
		}
		budget -= widest + cellGap
	}

	for len(widths) > 0 && sum(widths) > budget {
		i := widestIndex(widths)
		if widths[i] <= minCellWidth {
			break
		}
		widths[i]--
	}
	return widths
}

func plainActions(labels []ActionLabel) string {
	parts := make([]string, 0, len(labels))
	for _, a := range labels {
		if a.Key != "" {
			parts = append(parts, "["+a.Key+"] "+a.Label)
		} else {
			parts = append(parts, a.Label)
		}
	}
	return strings.Join(parts, " ")
}

func flatten(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func sum(xs []int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func widestIndex(xs []int) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
