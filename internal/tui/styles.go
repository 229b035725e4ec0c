// Package tui provides terminal output components for qaforge.
//
// All colors use AdaptiveColor for light/dark terminal support. Status
// displays carry icon, color and text together so they stay readable
// without color.
//
// Call CheckNoColor() before rendering to respect the NO_COLOR environment
// variable. Colors are also disabled when TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mrz1836/qaforge/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for headings and informational text.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for successful scenarios and steps.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for partial scenarios and warnings.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed scenarios and steps.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for skipped steps and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}

	// StyleBold applies bold formatting to text.
	StyleBold = lipgloss.NewStyle().Bold(true)

	// StyleDim applies dim formatting to text.
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// OutputStyles holds common output styles.
type OutputStyles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
}

// NewOutputStyles creates common output styles.
func NewOutputStyles() *OutputStyles {
	return &OutputStyles{
		Success: lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true),
		Error:   lipgloss.NewStyle().Foreground(ColorError).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(ColorWarning),
		Info:    lipgloss.NewStyle().Foreground(ColorPrimary),
		Dim:     lipgloss.NewStyle().Foreground(ColorMuted),
	}
}

// CheckNoColor switches lipgloss to plain ASCII when colors are unwanted.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns false if NO_COLOR is set (any value, including
// empty) or TERM=dumb. See https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// ScenarioStatusIcon returns the icon for a scenario status.
func ScenarioStatusIcon(status constants.ScenarioStatus) string {
	switch status {
	case constants.ScenarioStatusSuccess:
		return "✓"
	case constants.ScenarioStatusPartial:
		return "⚠"
	case constants.ScenarioStatusFailed:
		return "✗"
	default:
		return "?"
	}
}

// StepStatusIcon returns the icon for a step status.
func StepStatusIcon(status constants.StepStatus) string {
	switch status {
	case constants.StepStatusSuccess:
		return "✓"
	case constants.StepStatusFailed:
		return "✗"
	case constants.StepStatusSkipped:
		return "○"
	default:
		return "?"
	}
}

// ScenarioStatusColor returns the color of a scenario status.
func ScenarioStatusColor(status constants.ScenarioStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.ScenarioStatusSuccess:
		return ColorSuccess
	case constants.ScenarioStatusPartial:
		return ColorWarning
	case constants.ScenarioStatusFailed:
		return ColorError
	default:
		return ColorMuted
	}
}

// StepStatusColor returns the color of a step status.
func StepStatusColor(status constants.StepStatus) lipgloss.AdaptiveColor {
	switch status {
	case constants.StepStatusSuccess:
		return ColorSuccess
	case constants.StepStatusFailed:
		return ColorError
	default:
		return ColorMuted
	}
}

// FormatScenarioStatus renders icon and text in the status color.
func FormatScenarioStatus(status constants.ScenarioStatus) string {
	return lipgloss.NewStyle().
		Foreground(ScenarioStatusColor(status)).
		Render(ScenarioStatusIcon(status) + " " + status.String())
}

// FormatStepStatus renders icon and step name in the status color.
func FormatStepStatus(status constants.StepStatus, step string) string {
	return lipgloss.NewStyle().
		Foreground(StepStatusColor(status)).
		Render(StepStatusIcon(status) + " " + step)
}
