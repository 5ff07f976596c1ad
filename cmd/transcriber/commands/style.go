package commands

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Status line styles
var (
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

// PrintInfo prints an informational status line to stderr
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(os.Stderr, infoStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintWarn prints a warning status line to stderr
func PrintWarn(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintOK prints a success status line to stderr
func PrintOK(format string, args ...any) {
	fmt.Fprintln(os.Stderr, okStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintFail prints a failure status line to stderr
func PrintFail(format string, args ...any) {
	fmt.Fprintln(os.Stderr, failStyle.Render(fmt.Sprintf(format, args...)))
}

// printVerbose prints dimmed detail lines when --verbose is set
func printVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintln(os.Stderr, dimStyle.Render(fmt.Sprintf(format, args...)))
	}
}

// formatDuration formats duration in seconds to human readable format
func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	if seconds < 3600 {
		mins := int(seconds / 60)
		secs := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(seconds / 3600)
	mins := (int(seconds) % 3600) / 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}
