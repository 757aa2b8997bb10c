// Package tui is a terminal rendition of the formula form: a name field,
// one field per form input and a result line.
package tui

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/njchilds90/eeformula"
)

// Model is the bubbletea model for the formula form.
type Model struct {
	inputs []textinput.Model // inputs[0] is the name, then eeformula.FormFields
	focus  int
	answer string

	// UI state
	keys  KeyMap
	help  help.Model
	width int
}

// New creates the form with the name field focused.
func New() Model {
	inputs := make([]textinput.Model, 0, len(eeformula.FormFields)+1)

	name := textinput.New()
	name.Placeholder = "ohm"
	name.Prompt = "› "
	name.CharLimit = 80
	name.Focus()
	inputs = append(inputs, name)

	for range eeformula.FormFields {
		ti := textinput.New()
		ti.Placeholder = "unknown"
		ti.Prompt = "› "
		ti.CharLimit = 32
		ti.Validate = validateNumber
		inputs = append(inputs, ti)
	}

	return Model{
		inputs: inputs,
		keys:   DefaultKeyMap(),
		help:   help.New(),
	}
}

// validateNumber accepts anything that could become a float while typing.
func validateNumber(s string) error {
	for _, r := range s {
		if !strings.ContainsRune("0123456789.eE+-", r) {
			return strconv.ErrSyntax
		}
	}
	return nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus(m.focus + 1)

		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus(m.focus - 1)

		case key.Matches(msg, m.keys.Submit):
			m.answer = eeformula.Handle(m.Name(), m.Values())
			return m, nil

		case key.Matches(msg, m.keys.Clear):
			for i := range m.inputs {
				m.inputs[i].Reset()
			}
			m.answer = ""
			return m, m.setFocus(0)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// setFocus moves focus to field i, wrapping around.
func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	i = ((i % n) + n) % n
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

// Name is the text of the name field.
func (m Model) Name() string { return m.inputs[0].Value() }

// Values are the numeric fields keyed by symbol. Empty fields are unknown.
func (m Model) Values() eeformula.Bindings {
	values := make(eeformula.Bindings, len(eeformula.FormFields))
	for i, f := range eeformula.FormFields {
		values[f.Symbol] = m.inputs[i+1].Value()
	}
	return values
}

// Answer is the last result line, or "" before the first submit.
func (m Model) Answer() string { return m.answer }

// Focused is the index of the focused field; 0 is the name.
func (m Model) Focused() int { return m.focus }

// View renders the form.
func (m Model) View() string {
	return m.renderView()
}

// siHint renders a parsed value with an SI prefix, "4.7 mH". It returns ""
// for empty or unparseable input.
func siHint(raw, unit string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v == 0 {
		return ""
	}
	return humanize.SIWithDigits(v, 3, unit)
}

// Run drives the form on the given terminal streams until the user quits
// or ctx is cancelled. It returns the last answer.
func Run(ctx context.Context, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(New(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(Model); ok {
		return m.Answer(), nil
	}
	return "", nil
}
