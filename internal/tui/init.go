package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ExpiryHook forwards the authenticated client's session-expired callback
// to the running program. Pass Notify to api.OnSessionExpired.
type ExpiryHook struct {
	mu   sync.Mutex
	prog *tea.Program
}

// Notify sends the expiry to the program. Before Run it does nothing; the
// failing request's own error still reaches the model.
func (h *ExpiryHook) Notify(err error) {
	h.mu.Lock()
	prog := h.prog
	h.mu.Unlock()
	if prog != nil {
		prog.Send(sessionExpiredMsg{err: err})
	}
}

func (h *ExpiryHook) attach(prog *tea.Program) {
	h.mu.Lock()
	h.prog = prog
	h.mu.Unlock()
}

// Run starts the TUI and blocks until it exits
func Run(deps Deps, hook *ExpiryHook) error {
	m := New(deps)

	// Pass pointer since Update uses pointer receiver
	p := tea.NewProgram(m, tea.WithAltScreen())
	if hook != nil {
		hook.attach(p)
		defer hook.attach(nil)
	}

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
