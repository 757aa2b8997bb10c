package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func fakeEnv(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestShouldUseColor(t *testing.T) {
	tty := func() bool { return true }
	pipe := func() bool { return false }

	tests := []struct {
		name  string
		env   map[string]string
		isTTY func() bool
		want  bool
	}{
		{"tty default", nil, tty, true},
		{"pipe default", nil, pipe, false},
		{"NO_COLOR empty value still disables", map[string]string{"NO_COLOR": ""}, tty, false},
		{"CLICOLOR=0", map[string]string{"CLICOLOR": "0"}, tty, false},
		{"CLICOLOR_FORCE on pipe", map[string]string{"CLICOLOR_FORCE": "1"}, pipe, true},
		{"NO_COLOR beats force", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, tty, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldUseColor(fakeEnv(tt.env), tt.isTTY); got != tt.want {
				t.Errorf("shouldUseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProfile_ExplicitModes(t *testing.T) {
	if got := Profile(ColorNever); got != termenv.Ascii {
		t.Errorf("never: got %v", got)
	}
	if got := Profile(ColorAlways); got != termenv.TrueColor {
		t.Errorf("always: got %v", got)
	}
}

func TestRenderAnswer_Plain(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	line := "Ohm's Law: V = I * R → 6"
	if got := RenderAnswer(line); got != line {
		t.Errorf("RenderAnswer() = %q, want %q", got, line)
	}
	for _, plain := range []string{"Please enter a formula name.", "Error solving formula: boom"} {
		if got := RenderAnswer(plain); got != plain {
			t.Errorf("RenderAnswer(%q) = %q", plain, got)
		}
	}
}

func TestRenderTable(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	got := RenderTable([][]string{
		{"#", "Name"},
		{"1", "Ohm's Law"},
		{"10", "Power"},
	})
	want := "#   Name\n1   Ohm's Law\n10  Power\n"
	if got != want {
		t.Errorf("RenderTable() =\n%q\nwant\n%q", got, want)
	}
	if RenderTable(nil) != "" {
		t.Error("empty table should render as empty string")
	}
}

func TestRenderIcons(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)
	if got := RenderPass("ok"); got != IconPass+" ok" {
		t.Errorf("RenderPass() = %q", got)
	}
	if got := RenderFail("bad"); got != IconFail+" bad" {
		t.Errorf("RenderFail() = %q", got)
	}
	if got := RenderWarn("hmm"); got != IconWarn+" hmm" {
		t.Errorf("RenderWarn() = %q", got)
	}
}
