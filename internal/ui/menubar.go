package ui

import (
	"fmt"

	"ble-rangefinder.klederson.com/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// RenderMenuBar renders the top menu bar.
func RenderMenuBar(width int, deviceName string, demo bool) string {
	title := fmt.Sprintf(" %s v%s ", config.AppName, config.AppVersion)

	menu := "  " + StyleMenuKey.Render("[Q]") + StyleMenuLabel.Render("uit")

	mode := ""
	if demo {
		mode = StyleStateAdvertising.Render("DEMO") + "  "
	}
	deviceInfo := StyleMenuLabel.Render(fmt.Sprintf("Device: %s", deviceName))

	left := StyleMenuKey.Render(title) + menu
	right := mode + deviceInfo + " "

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	padding := ""
	for i := 0; i < gap; i++ {
		padding += " "
	}

	return StyleMenuBar.Width(width).Render(left + padding + right)
}
