package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"} // Green
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"} // Red
	ColorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"} // Magenta
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"} // Cyan
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"} // Gray
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"} // Yellow

	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleInfo    lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleTitle   lipgloss.Style
	StyleBold    lipgloss.Style
	StylePanel   lipgloss.Style

	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
)

func init() {
	SetTheme("auto")
}

// SetTheme applies "auto", "dark" or "light".
func SetTheme(theme string) {
	switch theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleTitle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Underline(true)
	StyleBold = lipgloss.NewStyle().Bold(true)
	StylePanel = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted).Padding(0, 1)
}

func FormatSuccess(msg string) string { return StyleSuccess.Render(IconSuccess + " " + msg) }
func FormatError(msg string) string   { return StyleError.Render(IconError + " " + msg) }
func FormatInfo(msg string) string    { return StyleInfo.Render(IconInfo + " " + msg) }
func FormatWarning(msg string) string { return StyleWarning.Render(IconWarning + " " + msg) }
func FormatTitle(title string) string { return StyleTitle.Render(title) }
func FormatMuted(text string) string  { return StyleMuted.Render(text) }
func FormatBold(text string) string   { return StyleBold.Render(text) }

// FormatLogLine colors a job log line by its leading marker.
func FormatLogLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✓"):
		return StyleSuccess.Render(line)
	case strings.HasPrefix(line, "✗"):
		return StyleError.Render(line)
	case strings.HasPrefix(line, "⚠"):
		return StyleWarning.Render(line)
	default:
		return StyleInfo.Render(line)
	}
}

// ProgressBar renders a fixed-width bar for 0..100.
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return fmt.Sprintf("[%s%s] %3d%%",
		StyleSuccess.Render(strings.Repeat("█", filled)),
		StyleMuted.Render(strings.Repeat("░", width-filled)),
		percent)
}

// Panel draws lines inside a rounded box.
func Panel(lines []string) string {
	return StylePanel.Render(strings.Join(lines, "\n"))
}
