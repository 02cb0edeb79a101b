package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studiowebux/fxdash/internal/api"
	"github.com/studiowebux/fxdash/internal/keybinds"
	"github.com/studiowebux/fxdash/internal/types"
)

// formField is one row of the provider editor. The status field has no
// text input and is toggled instead.
type formField struct {
	key   string // JSON name, matches api.ValidationError keys
	label string
	input textinput.Model
}

// providerForm creates or edits one provider
type providerForm struct {
	id      string // empty when creating
	base    types.Provider
	fields  []formField
	status  types.Status
	active  int
	errors  map[string]string
	formErr string
}

const (
	fieldName = iota
	fieldAPIKey
	fieldAPIURL
	fieldStatus
	fieldDescription
	fieldRateLimit
	fieldTimeout
)

func newProviderForm(p *types.Provider) *providerForm {
	base := types.NewProvider()
	if p != nil {
		base = *p
	}

	mk := func(key, label, placeholder, value string, limit int) formField {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholder
		ti.CharLimit = limit
		ti.SetValue(value)
		return formField{key: key, label: label, input: ti}
	}

	f := &providerForm{
		id:     base.ID,
		base:   base,
		status: base.Status,
		errors: map[string]string{},
		fields: []formField{
			mk("name", "Provider name", "e.g., ExchangeRate-API", base.Name, 50),
			mk("apiKey", "API key", "Enter your API key", base.APIKey, 200),
			mk("apiUrl", "API URL", "https://api.example.com/v1", base.APIURL, 300),
			{key: "status", label: "Status"},
			mk("description", "Description", "Brief description of this provider", base.Description, 200),
			mk("rateLimit", "Rate limit (req/min)", "100", strconv.Itoa(base.RateLimit), 5),
			mk("timeout", "Timeout (seconds)", "30", strconv.Itoa(base.Timeout), 2),
		},
	}
	if f.status == "" {
		f.status = types.StatusActive
	}
	return f
}

func (f *providerForm) editing() bool {
	return f.id != ""
}

func (f *providerForm) focus() tea.Cmd {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
	if f.active == fieldStatus {
		return nil
	}
	return f.fields[f.active].input.Focus()
}

func (f *providerForm) move(delta int) tea.Cmd {
	n := len(f.fields)
	f.active = (f.active + delta + n) % n
	return f.focus()
}

func (f *providerForm) toggleStatus() {
	if f.status == types.StatusActive {
		f.status = types.StatusInactive
	} else {
		f.status = types.StatusActive
	}
	delete(f.errors, "status")
}

func (f *providerForm) value(i int) string {
	return strings.TrimSpace(f.fields[i].input.Value())
}

// provider builds the payload. Number fields that do not parse are reported
// alongside the validator's messages.
func (f *providerForm) provider() (types.Provider, map[string]string) {
	p := f.base
	p.Name = f.value(fieldName)
	p.APIKey = f.value(fieldAPIKey)
	p.APIURL = f.value(fieldAPIURL)
	p.Status = f.status
	p.Description = f.value(fieldDescription)

	problems := map[string]string{}
	parse := func(i int, label string) int {
		s := f.value(i)
		if s == "" {
			return 0
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			problems[f.fields[i].key] = label + " must be a number"
		}
		return n
	}
	p.RateLimit = parse(fieldRateLimit, "Rate limit")
	p.Timeout = parse(fieldTimeout, "Timeout")
	return p, problems
}

// validate runs the client-side checks and stores field messages
func (f *providerForm) validate() (types.Provider, bool) {
	p, problems := f.provider()
	f.errors = problems
	f.formErr = ""

	var verr *api.ValidationError
	if err := api.Validate(p); errors.As(err, &verr) {
		for k, v := range verr.Fields {
			if _, taken := f.errors[k]; !taken {
				f.errors[k] = v
			}
		}
	}
	return p, len(f.errors) == 0
}

// applyError shows a failed save on the form
func (f *providerForm) applyError(err error) {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		for k, v := range verr.Fields {
			f.errors[k] = v
		}
		return
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		f.formErr = apiErr.Message
		return
	}
	if errors.Is(err, api.ErrSessionExpired) {
		return
	}
	f.formErr = "Failed to save provider. Please try again."
}

func (m *Model) openProviderForm(p *types.Provider) tea.Cmd {
	m.form = newProviderForm(p)
	m.screen = ScreenProviderForm
	m.mode = ModeNormal
	m.detail = nil
	return m.form.focus()
}

// handleFormKeys drives the provider editor
func (m *Model) handleFormKeys(msg tea.KeyMsg) tea.Cmd {
	f := m.form
	if f == nil || m.busy {
		return nil
	}

	action, ok := m.keys.MatchIn(keybinds.ContextForm, msg.String())
	if ok {
		switch action {
		case keybinds.ActionCancel:
			m.form = nil
			return m.navigate(ScreenProviders)
		case keybinds.ActionNextField:
			return f.move(1)
		case keybinds.ActionPrevField:
			return f.move(-1)
		case keybinds.ActionToggle:
			if f.active == fieldStatus {
				f.toggleStatus()
				return nil
			}
		case keybinds.ActionSubmit:
			// enter advances through the fields and submits from the last
			if msg.String() == "enter" && f.active < len(f.fields)-1 {
				return f.move(1)
			}
			return m.submitProviderForm()
		}
	}

	if f.active == fieldStatus {
		switch msg.String() {
		case "left", "right", "h", "l":
			f.toggleStatus()
		}
		return nil
	}

	var cmd tea.Cmd
	f.fields[f.active].input, cmd = f.fields[f.active].input.Update(msg)
	delete(f.errors, f.fields[f.active].key)
	return cmd
}

func (m *Model) submitProviderForm() tea.Cmd {
	p, ok := m.form.validate()
	if !ok {
		return nil
	}
	m.busy = true
	return tea.Batch(m.spinner.Tick, m.saveProviderCmd(m.form.id, p))
}
