package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/fxdash/internal/keybinds"
)

const (
	loginEmail = iota
	loginPassword
	loginFieldCount
)

// loginForm holds the sign-in inputs
type loginForm struct {
	inputs []textinput.Model
	active int
	err    string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = ""
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "••••••••"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return loginForm{inputs: []textinput.Model{email, password}}
}

// focus puts the cursor on the current field
func (f *loginForm) focus() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.active].Focus()
}

func (f *loginForm) move(delta int) tea.Cmd {
	f.active = (f.active + delta + loginFieldCount) % loginFieldCount
	return f.focus()
}

func (f *loginForm) email() string {
	return strings.TrimSpace(f.inputs[loginEmail].Value())
}

func (f *loginForm) password() string {
	return f.inputs[loginPassword].Value()
}

// reset clears the password and error, keeping the email for next time
func (f *loginForm) reset() {
	f.inputs[loginPassword].SetValue("")
	f.active = loginEmail
	f.err = ""
}

// handleLoginKeys drives the sign-in form
func (m *Model) handleLoginKeys(msg tea.KeyMsg) tea.Cmd {
	if m.busy {
		return nil
	}

	action, ok := m.keys.MatchIn(keybinds.ContextLogin, msg.String())
	if ok {
		switch action {
		case keybinds.ActionSubmit:
			if m.login.active == loginEmail && m.login.password() == "" {
				return m.login.move(1)
			}
			return m.submitLogin()
		case keybinds.ActionNextField:
			return m.login.move(1)
		case keybinds.ActionPrevField:
			return m.login.move(-1)
		case keybinds.ActionQuit:
			return tea.Quit
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.active], cmd = m.login.inputs[m.login.active].Update(msg)
	return cmd
}

func (m *Model) submitLogin() tea.Cmd {
	email, password := m.login.email(), m.login.password()
	switch {
	case email == "":
		m.login.err = "Email is required"
		m.login.active = loginEmail
		return m.login.focus()
	case password == "":
		m.login.err = "Password is required"
		m.login.active = loginPassword
		return m.login.focus()
	}

	m.login.err = ""
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.loginCmd(email, password))
}
