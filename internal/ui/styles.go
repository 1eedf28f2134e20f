package ui

import "github.com/charmbracelet/lipgloss"

// Matrix color palette
var (
	ColorMatrixGreen = lipgloss.Color("#00FF41")
	ColorGreen       = lipgloss.Color("#00CC33")
	ColorMidGreen    = lipgloss.Color("#008F11")
	ColorDimGreen    = lipgloss.Color("#004A0A")
	ColorError       = lipgloss.Color("#FF3300")
	ColorWarning     = lipgloss.Color("#FFAA00")
)

// Pre-built styles
var (
	StyleMenuBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleMenuKey = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleMenuLabel = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#002200")).
			Foreground(ColorGreen).
			Padding(0, 1)

	StyleStateConnected = lipgloss.NewStyle().
				Foreground(ColorMatrixGreen).
				Bold(true)

	StyleStateAdvertising = lipgloss.NewStyle().
				Foreground(ColorWarning).
				Bold(true)

	StylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorMidGreen)

	StylePanelTitle = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true).
			Padding(0, 1)

	StyleReadout = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen).
			Bold(true)

	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleValue = lipgloss.NewStyle().
			Foreground(ColorGreen)

	StyleBarFill = lipgloss.NewStyle().
			Foreground(ColorMatrixGreen)

	StyleBarEmpty = lipgloss.NewStyle().
			Foreground(ColorDimGreen)

	StyleEvent = lipgloss.NewStyle().
			Foreground(ColorMidGreen)

	StyleEventWarn = lipgloss.NewStyle().
			Foreground(ColorWarning)

	StyleEventError = lipgloss.NewStyle().
			Foreground(ColorError)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorDimGreen)
)
