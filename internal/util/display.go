package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Terminal color sequences
const (
	ColorReset   = "\033[0m"
	ColorBlue    = "\033[34m"
	ColorCyan    = "\033[36m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorRed     = "\033[31m"
	ColorMagenta = "\033[35m"
	ColorBold    = "\033[1m"
)

var colorEnabled = IsTerminal(os.Stdout)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// SetColorEnabled forces colored output on or off
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// Colorize wraps text in the given sequences when color output is enabled
func Colorize(text string, codes ...string) string {
	if !colorEnabled || len(codes) == 0 {
		return text
	}
	return strings.Join(codes, "") + text + ColorReset
}

// GetDisplayWidth calculates the display width of a string, accounting for wide runes
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight pads text with spaces up to the given display width
func PadRight(text string, width int) string {
	return runewidth.FillRight(text, width)
}

// Truncate shortens text to the given display width with an ellipsis
func Truncate(text string, width int) string {
	return runewidth.Truncate(text, width, "…")
}

// FormatHeaderTitle formats main header titles (Magenta + Bold)
func FormatHeaderTitle(title string) string {
	return Colorize(title, ColorBold, ColorMagenta)
}

// FormatDiagnosticTitle formats diagnostic titles (Yellow + Bold)
func FormatDiagnosticTitle(title string) string {
	return Colorize(title, ColorBold, ColorYellow)
}

// FormatDataTitle formats data section titles (Green + Bold)
func FormatDataTitle(title string) string {
	return Colorize(title, ColorBold, ColorGreen)
}

// FormatSectionSeparator creates a visual separator line
func FormatSectionSeparator() string {
	return Colorize(strings.Repeat("─", 60), ColorBold, ColorCyan)
}

// FormatBar renders a horizontal bar of the given percentage
func FormatBar(percentage float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percentage / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return fmt.Sprintf("%s%s", strings.Repeat("█", filled), strings.Repeat("░", width-filled))
}
