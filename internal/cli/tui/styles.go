package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the TUI
type Styles struct {
	// Header styling
	Title   lipgloss.Style
	Timer   lipgloss.Style
	Feature lipgloss.Style
	Meta    lipgloss.Style

	// Layer styling
	LayerQueued    lipgloss.Style
	LayerActive    lipgloss.Style
	LayerPassed    lipgloss.Style
	LayerFailed    lipgloss.Style
	LayerEscalated lipgloss.Style
	LayerName      lipgloss.Style

	// Score bar colors
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	// Phase icons and text
	PhaseIcon lipgloss.Style
	PhaseText lipgloss.Style
	Reason    lipgloss.Style

	// Escalation panel
	EscalationPanel lipgloss.Style
	EscalationTitle lipgloss.Style
	InputError      lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Event log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Feature: lipgloss.NewStyle().Bold(true),
		Meta:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		LayerQueued:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		LayerActive:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		LayerPassed:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		LayerFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		LayerEscalated: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		LayerName:      lipgloss.NewStyle().Bold(true),

		ProgressFilled: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		PhaseIcon: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		PhaseText: lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		Reason:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),

		EscalationPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1),
		EscalationTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		InputError:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconQueued    = "○"
	IconActive    = "●"
	IconPassed    = "✓"
	IconFailed    = "✗"
	IconSkipped   = "→"
	IconEscalated = "‼"
	IconAgent     = "🤖"
	IconJudge     = "⚖️"
	IconFix       = "🔧"
)
