package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the dashboard styles.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Muted       lipgloss.Style
	Error       lipgloss.Style
	Panel       lipgloss.Style
	ActivePanel lipgloss.Style
	Slider      lipgloss.Style
	ActiveRow   lipgloss.Style
	BarFull     lipgloss.Style
	BarEmpty    lipgloss.Style
	Shape       lipgloss.Style
}

// DefaultTheme is the stock palette.
var DefaultTheme = Theme{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7c3aed")),
	Subtitle:    lipgloss.NewStyle().Bold(true),
	Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
	Error:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
	Panel:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#404040")).Padding(0, 1),
	ActivePanel: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7c3aed")).Padding(0, 1),
	Slider:      lipgloss.NewStyle(),
	ActiveRow:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#a78bfa")),
	BarFull:     lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	BarEmpty:    lipgloss.NewStyle().Foreground(lipgloss.Color("#404040")),
	Shape:       lipgloss.NewStyle().Italic(true),
}
