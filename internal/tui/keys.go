package tui

import (
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/fxdash/internal/keybinds"
)

// rowActionLabels maps row shortcuts to table action labels
var rowActionLabels = map[keybinds.Action]string{
	keybinds.ActionRowEdit:   "Edit",
	keybinds.ActionRowDelete: "Delete",
	keybinds.ActionRowCopy:   "Copy key",
}

// handleKeyPress routes key presses based on current screen and mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	// Force quit works everywhere, including text inputs
	if action, ok := m.keys.MatchIn(keybinds.ContextGlobal, msg.String()); ok && action == keybinds.ActionQuitForce {
		return tea.Quit
	}

	if m.restoring {
		return nil
	}

	switch m.screen {
	case ScreenLogin:
		return m.handleLoginKeys(msg)
	case ScreenProviderForm:
		return m.handleFormKeys(msg)
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmKeys(msg)
	case ModeDetail:
		return m.handleDetailKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles the shell and table shortcuts
func (m *Model) handleNormalKeys(msg tea.KeyMsg) tea.Cmd {
	tbl, cursor, columns := m.activeTable()

	var (
		action keybinds.Action
		ok     bool
	)
	if tbl != nil {
		action, ok, _ = m.keys.MatchMultiKey(keybinds.ContextTable, msg.String())
	} else {
		action, ok = m.keys.Match(keybinds.ContextGlobal, msg.String())
	}
	if !ok {
		return nil
	}

	if m.busy && action != keybinds.ActionQuit {
		return nil
	}

	switch action {
	case keybinds.ActionQuit:
		return tea.Quit
	case keybinds.ActionHelp:
		m.showFullHelp = !m.showFullHelp
		return nil
	case keybinds.ActionLogout:
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.logoutCmd())
	case keybinds.ActionNextSection:
		return m.cycleSection(1)
	case keybinds.ActionPrevSection:
		return m.cycleSection(-1)
	case keybinds.ActionGoHome:
		return m.navigate(ScreenHome)
	case keybinds.ActionGoProviders:
		return m.navigate(ScreenProviders)
	case keybinds.ActionGoSubscribers:
		return m.navigate(ScreenSubscribers)
	case keybinds.ActionReload:
		return m.reload()
	}

	if tbl == nil {
		return nil
	}

	switch action {
	case keybinds.ActionCreateProvider:
		if m.screen == ScreenProviders {
			return m.openProviderForm(nil)
		}
	case keybinds.ActionRowUp:
		*cursor = clampCursor(*cursor-1, m.pageLen())
	case keybinds.ActionRowDown:
		*cursor = clampCursor(*cursor+1, m.pageLen())
	case keybinds.ActionNextPage:
		tbl.NextPage()
		*cursor = 0
	case keybinds.ActionPrevPage:
		tbl.PrevPage()
		*cursor = 0
	case keybinds.ActionFirstPage:
		tbl.SetPage(1)
		*cursor = 0
	case keybinds.ActionLastPage:
		tbl.SetPage(tbl.TotalPages())
		*cursor = 0
	case keybinds.ActionOpenSearch:
		m.mode = ModeSearch
		m.search.SetValue(tbl.Search())
		m.search.CursorEnd()
		return m.search.Focus()
	case keybinds.ActionClearSearch:
		if tbl.Search() != "" {
			tbl.SetSearch("")
			*cursor = 0
		}
	case keybinds.ActionRowOpen:
		tbl.ClickRow(*cursor)
	case keybinds.ActionSortColumn:
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(columns) {
			tbl.ToggleSort(columns[n-1])
		}
	case keybinds.ActionRowEdit, keybinds.ActionRowDelete, keybinds.ActionRowCopy:
		return m.rowAction(action)
	}
	return nil
}

// rowAction fires a table action on the selected row
func (m *Model) rowAction(action keybinds.Action) tea.Cmd {
	tbl, cursor, _ := m.activeTable()
	if tbl == nil {
		return nil
	}
	if !tbl.ClickAction(*cursor, rowActionLabels[action]) {
		return nil
	}
	if m.screen == ScreenProviderForm && m.form != nil {
		return m.form.focus()
	}
	return nil
}

// handleSearchKeys filters the table as the user types
func (m *Model) handleSearchKeys(msg tea.KeyMsg) tea.Cmd {
	tbl, cursor, _ := m.activeTable()
	if tbl == nil {
		m.mode = ModeNormal
		return nil
	}

	if action, ok := m.keys.MatchIn(keybinds.ContextSearch, msg.String()); ok {
		switch action {
		case keybinds.ActionSubmit:
			m.mode = ModeNormal
			m.search.Blur()
			return nil
		case keybinds.ActionCancel:
			m.mode = ModeNormal
			m.search.Blur()
			m.search.SetValue("")
			tbl.SetSearch("")
			*cursor = 0
			return nil
		}
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != tbl.Search() {
		tbl.SetSearch(m.search.Value())
		*cursor = 0
	}
	return cmd
}

// handleConfirmKeys answers the delete prompt
func (m *Model) handleConfirmKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextConfirm, msg.String())
	if !ok || m.confirm == nil {
		return nil
	}

	switch action {
	case keybinds.ActionConfirm:
		pending := *m.confirm
		m.confirm = nil
		m.mode = ModeNormal
		m.busy = true
		return tea.Batch(m.spinner.Tick, m.deleteCmd(pending))
	case keybinds.ActionDeny:
		m.confirm = nil
		m.mode = ModeNormal
	case keybinds.ActionQuit:
		return tea.Quit
	}
	return nil
}

// handleDetailKeys handles the opened row
func (m *Model) handleDetailKeys(msg tea.KeyMsg) tea.Cmd {
	action, ok := m.keys.Match(keybinds.ContextDetail, msg.String())
	if !ok {
		return nil
	}

	switch action {
	case keybinds.ActionClose:
		m.mode = ModeNormal
		m.detail = nil
	case keybinds.ActionRowEdit, keybinds.ActionRowCopy:
		m.mode = ModeNormal
		m.detail = nil
		return m.rowAction(action)
	case keybinds.ActionQuit:
		return tea.Quit
	}
	return nil
}

// reload refetches the data behind the current screen
func (m *Model) reload() tea.Cmd {
	switch m.screen {
	case ScreenHome:
		return tea.Batch(m.loadProvidersCmd(), m.loadSubscribersCmd(), m.loadActivityCmd())
	case ScreenProviders:
		return m.loadProvidersCmd()
	case ScreenSubscribers:
		return m.loadSubscribersCmd()
	}
	return nil
}
