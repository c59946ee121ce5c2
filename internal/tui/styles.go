package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults used before the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 32
	borderPadding = 2
)

// Colors shared by the dashboard views.
//
//nolint:gochecknoglobals // Read-only style palette.
var (
	ColorPrimary = lipgloss.Color("#36A2EB")
	ColorOK      = lipgloss.Color("#4BC0C0")
	ColorWarn    = lipgloss.Color("#FFCE56")
	ColorError   = lipgloss.Color("#FF6384")
	ColorSubtle  = lipgloss.Color("241")
	ColorText    = lipgloss.Color("252")
)

// Styles shared by the dashboard views.
//
//nolint:gochecknoglobals // Read-only style palette.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorSubtle)
	ValueStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorText)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle).Italic(true)
	InfoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(ColorPrimary)

	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorOK).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorWarn)

	TrendUpStyle   = lipgloss.NewStyle().Foreground(ColorOK)
	TrendDownStyle = lipgloss.NewStyle().Foreground(ColorError)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorSubtle).
			Padding(0, 1)
)
