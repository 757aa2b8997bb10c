package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/ui"
)

// Styles for the form
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorAccent)

	labelStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(ui.ColorFail)

	answerBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorAccent).
			Padding(0, 1)
)

func (m Model) renderView() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(eeformula.Title))
	b.WriteString("\n\n")

	m.renderField(&b, 0, eeformula.NameLabel, "")
	for i, f := range eeformula.FormFields {
		m.renderField(&b, i+1, fmt.Sprintf("%s (%s)", f.Label, f.Symbol), f.Unit)
	}

	if m.answer != "" {
		b.WriteString("\n")
		line := ui.RenderAnswer(m.answer)
		if strings.HasPrefix(m.answer, "Error solving formula:") {
			line = errorStyle.Render(m.answer)
		}
		b.WriteString(answerBox.Render(line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) renderField(b *strings.Builder, i int, label, unit string) {
	if i == m.focus {
		b.WriteString(focusedLabelStyle.Render(label))
	} else {
		b.WriteString(labelStyle.Render(label))
	}
	b.WriteString("\n")
	b.WriteString(m.inputs[i].View())
	if hint := siHint(m.inputs[i].Value(), unit); unit != "" && hint != "" {
		b.WriteString("  ")
		b.WriteString(hintStyle.Render("= " + hint))
	}
	b.WriteString("\n")
}
