package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal colours and styles for the portal screens
var (
	accentColor  = lipgloss.Color("#7D56F4")
	passColor    = lipgloss.Color("#10b981")
	failColor    = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#6b7280")
	scheduleTint = lipgloss.Color("#06b6d4")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accentColor).
			Padding(0, 1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1).
			MarginBottom(1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#a5b4fc"))

	badgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	emptyStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b")).
			Bold(true)

	codeStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(scheduleTint)

	passingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(passColor)

	failingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(failColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(failColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(passColor).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cbd5e1"))

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3b82f6"))
)
