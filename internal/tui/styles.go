package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#4ECDC4")
	Secondary = lipgloss.Color("#6C757D")
	Surface   = lipgloss.Color("#16213e")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#FFE66D")
	Good      = lipgloss.Color("#95E1A3")
	Bad       = lipgloss.Color("#FF6B6B")
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	SidebarStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	CourseListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	FilterItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	FilterItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	CourseItemStyle = lipgloss.NewStyle().
			Padding(0, 1)

	CourseItemSelectedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(Surface).
				Bold(true)

	SuggestionStyle = lipgloss.NewStyle().
			Foreground(Highlight)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(Border)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Bad)

	RatingStyle = lipgloss.NewStyle().
			Foreground(Highlight)

	FreeStyle = lipgloss.NewStyle().
			Foreground(Good)
)
