package ui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPink   = lipgloss.Color("205")
	ColorRed    = lipgloss.Color("196")
	ColorOrange = lipgloss.Color("214")
	ColorGreen  = lipgloss.Color("2")
	ColorGray   = lipgloss.Color("8")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorPink)
	dimStyle   = lipgloss.NewStyle().Faint(true)
	infoStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorOrange)
	errStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	helpStyle  = lipgloss.NewStyle().Faint(true).PaddingLeft(2)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			MarginRight(1).
			Foreground(ColorGray)

	activeButtonStyle = buttonStyle.
				Foreground(lipgloss.Color("0")).
				Background(ColorPink).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPink).
			Padding(1, 3).
			Width(64)
)
