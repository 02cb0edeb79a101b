package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/table"
	"github.com/studiowebux/fxdash/internal/types"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
	colorPurple = lipgloss.AdaptiveColor{Light: "#5b21b6", Dark: "#c084fc"}
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPurple)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray).
			Padding(0, 1)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPurple).
			Padding(0, 2).
			MarginRight(1)
)

const sidebarWidth = 24

func statusBadge(s types.Status) string {
	switch s {
	case types.StatusActive:
		return styleSuccess.Render(string(s))
	case types.StatusInactive:
		return styleSubtle.Render(string(s))
	default:
		return string(s)
	}
}

func (m *Model) renderRestoring() string {
	return fmt.Sprintf("\n  %s Restoring session...\n", m.spinner.View())
}

// renderLogin draws the centered sign-in box
func (m *Model) renderLogin() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("ExchangeHub") + "\n")
	b.WriteString(styleSubtle.Render("Sign in to manage your exchange rates") + "\n\n")

	labels := []string{"Email", "Password"}
	for i, in := range m.login.inputs {
		label := labels[i]
		if i == m.login.active {
			label = styleTitle.Render("› " + label)
		} else {
			label = "  " + label
		}
		b.WriteString(label + "\n  " + in.View() + "\n\n")
	}

	switch {
	case m.busy:
		b.WriteString(m.spinner.View() + " Signing in...\n")
	case m.login.err != "":
		b.WriteString(styleError.Render(m.login.err) + "\n")
	case m.statusMsg != "":
		b.WriteString(styleSuccess.Render(m.statusMsg) + "\n")
	}
	b.WriteString("\n" + m.help.ShortHelpView(m.keys.Help(keybinds.ContextLogin,
		keybinds.ActionSubmit, keybinds.ActionNextField, keybinds.ActionQuit)))

	box := styleBox.Width(48).Render(b.String())
	if m.width == 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderShell draws header, sidebar, content and footer
func (m *Model) renderShell() string {
	width := m.width
	if width == 0 {
		width = 100
	}
	contentWidth := max(20, width-sidebarWidth-4)

	header := m.renderHeader(width)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		lipgloss.NewStyle().PaddingLeft(2).Width(contentWidth).Render(m.renderContent(contentWidth)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderFooter())
}

func (m *Model) renderHeader(width int) string {
	user := m.deps.Session.State().User
	left := styleTitle.Render("ExchangeHub") + styleSubtle.Render("  Currency Platform")
	right := ""
	if user != nil {
		right = user.DisplayName()
		if user.Name != "" && user.Email != "" {
			right += styleSubtle.Render(" <" + user.Email + ">")
		}
	}
	gap := max(1, width-lipgloss.Width(left)-lipgloss.Width(right))
	line := left + strings.Repeat(" ", gap) + right
	return line + "\n" + styleSubtle.Render(strings.Repeat("─", width)) + "\n"
}

func (m *Model) renderSidebar() string {
	var b strings.Builder
	current := m.screen
	if current == ScreenProviderForm {
		current = ScreenProviders
	}
	for _, s := range sections {
		if s == current {
			b.WriteString(styleSelected.Render("▸ "+s.Title()) + "\n")
		} else {
			b.WriteString("  " + s.Title() + "\n")
		}
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m *Model) renderContent(width int) string {
	switch m.screen {
	case ScreenHome:
		return m.renderHome()
	case ScreenProviders:
		return m.renderTableScreen(width, m.providers.View(), m.providerCursor, "Manage your exchange rate API providers")
	case ScreenSubscribers:
		return m.renderSubscribers(width)
	case ScreenProviderForm:
		return m.renderForm()
	}
	return ""
}

func (m *Model) renderHome() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Dashboard") + "\n")
	b.WriteString(styleSubtle.Render("Welcome back! Here's what's happening with your exchange rates.") + "\n\n")

	cards := []struct{ title, value string }{
		{"Providers", fmt.Sprintf("%d", m.stats.TotalProviders)},
		{"Active Providers", fmt.Sprintf("%d", m.stats.ActiveProviders)},
		{"Total Requests", fmt.Sprintf("%d", m.stats.TotalRequests)},
		{"Subscribers", fmt.Sprintf("%d", m.stats.Subscribers)},
	}
	rendered := make([]string, len(cards))
	for i, c := range cards {
		value := c.value
		if m.tablesLoading() {
			value = m.spinner.View()
		}
		rendered[i] = styleCard.Render(styleSubtle.Render(c.title) + "\n" + lipgloss.NewStyle().Bold(true).Render(value))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n\n")

	b.WriteString(styleTitle.Render("Recent Activity") + "\n")
	if len(m.recent) == 0 {
		b.WriteString(styleSubtle.Render("  No recent activity") + "\n")
	}
	for _, e := range m.recent {
		line := fmt.Sprintf("  %s  %-18s %s", styleSubtle.Render(e.Timestamp), e.Kind, e.Subject)
		if e.Detail != "" {
			line += styleSubtle.Render("  " + e.Detail)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m *Model) renderSubscribers(width int) string {
	return m.renderTableScreen(width, m.subscribers.View(), m.subscriberCursor, "Manage the consumers of your exchange rate data")
}

func renderTable[T any](v table.View[T], width, cursor int, selected bool) string {
	if !selected {
		cursor = -1
	}
	return table.Render(v, table.RenderOptions{Width: width, Selected: cursor})
}

// renderTableScreen draws a title, the search line, the table and overlays
func (m *Model) renderTableScreen(width int, v any, cursor int, subtitle string) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render(m.screen.Title()) + "\n")
	b.WriteString(styleSubtle.Render(subtitle) + "\n\n")

	if m.mode == ModeSearch {
		b.WriteString(m.search.View() + "\n\n")
	}

	switch tv := v.(type) {
	case table.View[types.Provider]:
		b.WriteString(renderTable(tv, width, cursor, m.mode != ModeSearch))
	case table.View[types.Subscriber]:
		b.WriteString(renderTable(tv, width, cursor, m.mode != ModeSearch))
	}

	switch m.mode {
	case ModeConfirmDelete:
		if m.confirm != nil {
			prompt := fmt.Sprintf("Delete %s %q? (%s/%s)", m.confirm.kind, m.confirm.name,
				m.keys.KeyString(keybinds.ContextConfirm, keybinds.ActionConfirm),
				m.keys.KeyString(keybinds.ContextConfirm, keybinds.ActionDeny))
			b.WriteString("\n" + styleWarning.Render(prompt) + "\n")
		}
	case ModeDetail:
		b.WriteString("\n" + renderDetail(m.detail))
	}
	return b.String()
}

func renderDetail(lines []detailLine) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s %s\n", styleSubtle.Render(fmt.Sprintf("%-12s", l.Label)), l.Value)
	}
	return styleBox.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m *Model) renderForm() string {
	f := m.form
	if f == nil {
		return ""
	}
	var b strings.Builder
	title := "Add New Provider"
	if f.editing() {
		title = "Edit Provider"
	}
	b.WriteString(styleTitle.Render(title) + "\n")
	b.WriteString(styleSubtle.Render("Configure a new exchange rate API provider") + "\n\n")

	for i, field := range f.fields {
		label := "  " + field.label
		if i == f.active {
			label = styleTitle.Render("› " + field.label)
		}
		value := field.input.View()
		if i == fieldStatus {
			value = "◀ " + statusBadge(f.status) + " ▶"
		}
		b.WriteString(label + "\n    " + value + "\n")
		if msg, ok := f.errors[field.key]; ok {
			b.WriteString("    " + styleError.Render(msg) + "\n")
		}
	}

	switch {
	case m.busy:
		b.WriteString("\n" + m.spinner.View() + " Saving...\n")
	case f.formErr != "":
		b.WriteString("\n" + styleError.Render(f.formErr) + "\n")
	}
	return b.String()
}

// footerBindings lists the help entries for the current screen and mode
func (m *Model) footerBindings() []key.Binding {
	switch {
	case m.screen == ScreenProviderForm:
		return m.keys.Help(keybinds.ContextForm, keybinds.ActionNextField, keybinds.ActionSubmit,
			keybinds.ActionToggle, keybinds.ActionCancel)
	case m.mode == ModeSearch:
		return m.keys.Help(keybinds.ContextSearch, keybinds.ActionSubmit, keybinds.ActionCancel)
	case m.mode == ModeConfirmDelete:
		return m.keys.Help(keybinds.ContextConfirm, keybinds.ActionConfirm, keybinds.ActionDeny)
	case m.mode == ModeDetail:
		return m.keys.Help(keybinds.ContextDetail, keybinds.ActionClose, keybinds.ActionRowEdit, keybinds.ActionRowCopy)
	case m.screen == ScreenHome:
		return m.keys.Help(keybinds.ContextGlobal, keybinds.ActionNextSection, keybinds.ActionReload,
			keybinds.ActionLogout, keybinds.ActionHelp, keybinds.ActionQuit)
	}

	bindings := m.keys.Help(keybinds.ContextTable, keybinds.ActionRowDown, keybinds.ActionNextPage,
		keybinds.ActionOpenSearch, keybinds.ActionRowOpen)
	if keys := m.keys.Keys(keybinds.ContextTable, keybinds.ActionSortColumn); len(keys) > 0 {
		bindings = append(bindings, key.NewBinding(key.WithKeys(keys...), key.WithHelp("1-9", "sort")))
	}
	if m.showFullHelp {
		bindings = append(bindings, m.keys.Help(keybinds.ContextTable, keybinds.ActionRowUp, keybinds.ActionPrevPage,
			keybinds.ActionFirstPage, keybinds.ActionLastPage, keybinds.ActionClearSearch)...)
		if m.screen == ScreenProviders {
			bindings = append(bindings, m.keys.Help(keybinds.ContextTable, keybinds.ActionCreateProvider, keybinds.ActionRowEdit)...)
		}
		bindings = append(bindings, m.keys.Help(keybinds.ContextTable, keybinds.ActionRowDelete, keybinds.ActionRowCopy,
			keybinds.ActionNextSection, keybinds.ActionReload, keybinds.ActionLogout)...)
	}
	return append(bindings, m.keys.Help(keybinds.ContextTable, keybinds.ActionHelp, keybinds.ActionQuit)...)
}

func (m *Model) renderFooter() string {
	var status string
	switch {
	case m.errorMsg != "":
		status = styleError.Render(m.errorMsg)
	case m.busy:
		status = m.spinner.View() + " Working..."
	case m.statusMsg != "":
		status = styleSuccess.Render(m.statusMsg)
	}

	help := m.help.ShortHelpView(m.footerBindings())
	if status == "" {
		return "\n" + help
	}
	return "\n" + status + "\n" + help
}
