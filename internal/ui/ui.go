// Package ui holds the terminal styles shared by the listing renderer and
// the CLI status output.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	Dir    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	Link   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	Broken = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Strikethrough(true)
	Size   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	Count  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Branch = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	Warn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	Err    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// HasColor reports whether stdout should be styled at all.
func HasColor() bool {
	return termenv.EnvColorProfile() != termenv.Ascii
}

// HumanSize formats a byte count with binary units. Negative values are
// the unknown sentinel and render as a dash.
func HumanSize(n int64) string {
	if n < 0 {
		return "-"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// HumanCount formats a file count; the suppressed/unknown sentinel renders
// as a dash.
func HumanCount(n int64) string {
	if n < 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
