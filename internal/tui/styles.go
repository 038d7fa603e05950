package tui

import "github.com/charmbracelet/lipgloss"

// Gruvbox-ish palette
var (
	ColorBg       = lipgloss.Color("#282828")
	ColorFg       = lipgloss.Color("#EBDBB2")
	ColorFgMuted  = lipgloss.Color("#928374")
	ColorRed      = lipgloss.Color("#FB4934")
	ColorGreen    = lipgloss.Color("#B8BB26")
	ColorYellow   = lipgloss.Color("#FABD2F")
	ColorBlue     = lipgloss.Color("#83A598")
	ColorPurple   = lipgloss.Color("#D3869B")
	ColorAqua     = lipgloss.Color("#8EC07C")
	ColorBorder   = lipgloss.Color("#504945")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true).
			PaddingLeft(1)

	HeaderMetaStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1)

	EditorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	EditorFocusedStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorBlue)

	PromptStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	PromptTitleStyle = lipgloss.NewStyle().
				Foreground(ColorPurple).
				Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	StatusBusyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	StatusDirtyStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	DiagnosticsStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(ColorAqua).
				PaddingLeft(1)

	ConfirmStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorYellow).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2)

	HelpTitleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFg)
)
