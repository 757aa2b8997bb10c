package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorMode is the configured color behavior: auto, always or never.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// IsTerminal returns true if stdout is connected to a terminal (TTY).
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ShouldUseColor determines if ANSI color codes should be used in auto mode.
// Respects NO_COLOR (https://no-color.org/), CLICOLOR, and CLICOLOR_FORCE conventions.
func ShouldUseColor() bool {
	return shouldUseColor(os.LookupEnv, IsTerminal)
}

func shouldUseColor(lookup func(string) (string, bool), isTTY func() bool) bool {
	// NO_COLOR takes precedence - any value disables color
	if _, exists := lookup("NO_COLOR"); exists {
		return false
	}
	if v, _ := lookup("CLICOLOR"); v == "0" {
		return false
	}
	// CLICOLOR_FORCE enables color even in non-TTY
	if _, exists := lookup("CLICOLOR_FORCE"); exists {
		return true
	}
	return isTTY()
}

// Profile picks the termenv profile for mode.
func Profile(mode ColorMode) termenv.Profile {
	switch mode {
	case ColorNever:
		return termenv.Ascii
	case ColorAlways:
		return termenv.TrueColor
	}
	if !ShouldUseColor() {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
