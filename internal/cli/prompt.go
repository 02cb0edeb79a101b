package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().MarginLeft(2).Bold(true)
	inputStyle = lipgloss.NewStyle().PaddingLeft(2)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1).MarginLeft(2)
)

// errPromptCancelled is returned when the user leaves a prompt with esc or ctrl+c
var errPromptCancelled = errors.New("prompt cancelled")

type inputModel struct {
	title     string
	input     textinput.Model
	submitted bool
	quitting  bool
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			m.submitted = true
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.quitting {
		return ""
	}
	help := helpStyle.Render("enter: confirm • esc/ctrl+c: cancel")
	return fmt.Sprintf("%s\n\n%s\n%s", titleStyle.Render(m.title), inputStyle.Render(m.input.View()), help)
}

func newInputModel(title, placeholder string, secret bool) inputModel {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{title: title, input: ti}
}

// promptInteractive runs a single-field input program on the terminal
func promptInteractive(title, placeholder string, secret bool) (string, error) {
	p := tea.NewProgram(newInputModel(title, placeholder, secret))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("error running prompt: %w", err)
	}

	result := final.(inputModel)
	if !result.submitted {
		return "", errPromptCancelled
	}
	return result.input.Value(), nil
}

// Prompter asks the user for values
type Prompter interface {
	Prompt(title string, secret bool) (string, error)
	Confirm(question string) (bool, error)
}

// TerminalPrompter uses bubbletea on a TTY and reads lines otherwise
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
	// Interactive selects the bubbletea prompt
	Interactive bool

	reader *bufio.Reader
}

// NewTerminalPrompter prompts on stderr so stdout stays parseable
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr, Interactive: isInteractive()}
}

// Prompt reads one value
func (p *TerminalPrompter) Prompt(title string, secret bool) (string, error) {
	if p.Interactive {
		return promptInteractive(title, "", secret)
	}
	fmt.Fprintf(p.Out, "%s: ", title)
	return p.readLine()
}

// Confirm asks a y/N question. Anything but y or yes is a no.
func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", question)
	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(line)
	return answer == "y" || answer == "yes", nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
