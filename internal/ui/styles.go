// Package ui provides terminal styling for eeformula CLI output.
// Colors are semantic (pass, fail, accent, muted) and adapt to light and
// dark backgrounds; everything degrades to plain text when color is off.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	if !ShouldUseColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Configure applies the color mode to lipgloss. Call it once after flags
// and config are read.
func Configure(mode ColorMode) {
	lipgloss.SetColorProfile(Profile(mode))
}

// Ayu palette, adaptive light/dark.
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300",
		Dark:  "#c2d94c",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49",
		Dark:  "#ffb454",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171",
		Dark:  "#f07178",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
)

// Core styles.
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	BoldStyle   = lipgloss.NewStyle().Bold(true)

	// CategoryStyle is used for section headers.
	CategoryStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// EquationStyle renders equations in listings.
	EquationStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{
		Light: "#5c6166",
		Dark:  "#bfbdb6",
	})
)

// Status icons.
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
)

// RenderPass formats a success line with its icon.
func RenderPass(msg string) string { return PassStyle.Render(IconPass) + " " + msg }

// RenderWarn formats a warning line with its icon.
func RenderWarn(msg string) string { return WarnStyle.Render(IconWarn) + " " + msg }

// RenderFail formats a failure line with its icon.
func RenderFail(msg string) string { return FailStyle.Render(IconFail) + " " + msg }

// RenderAnswer styles a result line "<name>: <equation> → <value>": the
// name bold, the equation muted and the value in the accent color. Lines
// without an arrow are returned unchanged.
func RenderAnswer(line string) string {
	head, value, ok := strings.Cut(line, " → ")
	if !ok {
		return line
	}
	name, eq, ok := strings.Cut(head, ": ")
	if !ok {
		return line
	}
	return fmt.Sprintf("%s: %s → %s", BoldStyle.Render(name), EquationStyle.Render(eq), AccentStyle.Render(value))
}

// RenderTable lays out rows in left-aligned columns separated by two
// spaces. The first row is the header.
func RenderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	var sb strings.Builder
	for r, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			text := cell
			if r == 0 {
				text = CategoryStyle.Render(cell)
			}
			sb.WriteString(text)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
