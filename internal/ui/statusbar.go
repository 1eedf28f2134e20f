package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, state string, mm uint16, battery uint8, subscribed bool) string {
	st := StyleStateAdvertising.Render("[" + state + "]")
	if state == "CONNECTED" {
		st = StyleStateConnected.Render("[" + state + "]")
	}

	notify := "notify: off"
	if subscribed {
		notify = "notify: on"
	}
	info := fmt.Sprintf(" Range: %dmm  Battery: %d%%  %s", mm, battery, notify)

	content := st + StyleStatusBar.Foreground(ColorGreen).Render(info)

	gap := width - lipgloss.Width(content)
	if gap < 0 {
		gap = 0
	}
	padding := ""
	for i := 0; i < gap; i++ {
		padding += " "
	}

	return StyleStatusBar.Width(width).Render(content + padding)
}
