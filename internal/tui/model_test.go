package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/njchilds90/eeformula"
)

func typeText(m Model, s string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(Model)
}

func press(m Model, k tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: k})
	return next.(Model)
}

// fieldIndex is the input index of a form symbol.
func fieldIndex(t *testing.T, symbol string) int {
	t.Helper()
	for i, f := range eeformula.FormFields {
		if f.Symbol == symbol {
			return i + 1
		}
	}
	t.Fatalf("no form field %q", symbol)
	return 0
}

func focusField(t *testing.T, m Model, symbol string) Model {
	t.Helper()
	want := fieldIndex(t, symbol)
	for m.Focused() != want {
		m = press(m, tea.KeyTab)
	}
	return m
}

func TestNew(t *testing.T) {
	m := New()
	if m.Focused() != 0 {
		t.Errorf("Focused() = %d, want 0", m.Focused())
	}
	if len(m.inputs) != len(eeformula.FormFields)+1 {
		t.Errorf("got %d inputs", len(m.inputs))
	}
	if m.Answer() != "" {
		t.Errorf("Answer() = %q before submit", m.Answer())
	}
	if m.Init() == nil {
		t.Error("Init() should start the cursor blink")
	}
}

func TestSubmit_Ohm(t *testing.T) {
	m := typeText(New(), "ohm")
	m = focusField(t, m, "I")
	m = typeText(m, "2")
	m = focusField(t, m, "R")
	m = typeText(m, "3")
	m = press(m, tea.KeyEnter)

	if got, want := m.Answer(), "Ohm's Law: V = I * R → 6"; got != want {
		t.Errorf("Answer() = %q, want %q", got, want)
	}
	if m.Name() != "ohm" {
		t.Errorf("Name() = %q", m.Name())
	}
	values := m.Values()
	if values["I"] != "2" || values["R"] != "3" || values["V"] != "" {
		t.Errorf("Values() = %v", values)
	}
}

func TestSubmit_Messages(t *testing.T) {
	m := press(New(), tea.KeyEnter)
	if m.Answer() != eeformula.PromptMessage {
		t.Errorf("empty name: %q", m.Answer())
	}

	m = typeText(New(), "xyz")
	m = press(m, tea.KeyEnter)
	if m.Answer() != eeformula.NotFoundMessage {
		t.Errorf("unknown name: %q", m.Answer())
	}
}

func TestFocus_Wraps(t *testing.T) {
	m := New()
	m = press(m, tea.KeyShiftTab)
	if m.Focused() != len(eeformula.FormFields) {
		t.Errorf("shift+tab from the first field: Focused() = %d", m.Focused())
	}
	m = press(m, tea.KeyTab)
	if m.Focused() != 0 {
		t.Errorf("tab from the last field: Focused() = %d", m.Focused())
	}
	m = press(m, tea.KeyDown)
	if m.Focused() != 1 {
		t.Errorf("down: Focused() = %d", m.Focused())
	}
	m = press(m, tea.KeyUp)
	if m.Focused() != 0 {
		t.Errorf("up: Focused() = %d", m.Focused())
	}
}

func TestClear(t *testing.T) {
	m := typeText(New(), "power")
	m = press(m, tea.KeyTab)
	m = typeText(m, "10")
	m = press(m, tea.KeyEnter)
	if m.Answer() == "" {
		t.Fatal("expected an answer before clearing")
	}

	m = press(m, tea.KeyCtrlL)
	if m.Answer() != "" || m.Name() != "" || m.Focused() != 0 {
		t.Errorf("after clear: answer %q, name %q, focus %d", m.Answer(), m.Name(), m.Focused())
	}
	for k, v := range m.Values() {
		if v != "" {
			t.Errorf("field %s not cleared: %q", k, v)
		}
	}
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := New().Update(tea.KeyMsg{Type: k})
		if cmd == nil {
			t.Fatalf("%v: expected a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.Quit", k)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m := press(New(), tea.KeyF1)
	if !m.help.ShowAll {
		t.Error("f1 should expand help")
	}
	m = press(m, tea.KeyF1)
	if m.help.ShowAll {
		t.Error("f1 again should collapse help")
	}
}

func TestWindowSize(t *testing.T) {
	next, _ := New().Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m := next.(Model)
	if m.width != 100 || m.help.Width != 100 {
		t.Errorf("width = %d, help width = %d", m.width, m.help.Width)
	}
}

func TestView(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	m := typeText(New(), "resonant")
	m = focusField(t, m, "C")
	m = typeText(m, "1e-6")
	m = focusField(t, m, "L")
	m = typeText(m, "1e-3")
	m = press(m, tea.KeyEnter)

	view := m.View()
	for _, want := range []string{
		eeformula.Title,
		eeformula.NameLabel,
		"Capacitance (C)",
		"= 1 µF",
		"= 1 mH",
		"Resonant Frequency (LC Circuit)",
		"5032.9",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestSIHint(t *testing.T) {
	tests := []struct {
		raw, unit, want string
	}{
		{"4.7e-3", "H", "4.7 mH"},
		{"1000", "Hz", "1 kHz"},
		{"", "V", ""},
		{"abc", "V", ""},
		{"0", "A", ""},
	}
	for _, tt := range tests {
		if got := siHint(tt.raw, tt.unit); got != tt.want {
			t.Errorf("siHint(%q, %q) = %q, want %q", tt.raw, tt.unit, got, tt.want)
		}
	}
}

func TestValidateNumber(t *testing.T) {
	for _, ok := range []string{"", "12", "-1.5e-3", "+4"} {
		if err := validateNumber(ok); err != nil {
			t.Errorf("validateNumber(%q) = %v", ok, err)
		}
	}
	if validateNumber("12a") == nil {
		t.Error("letters should be rejected")
	}
}
