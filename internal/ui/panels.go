package ui

import (
	"fmt"
	"strings"

	"ble-rangefinder.klederson.com/internal/rangesvc"
	"github.com/charmbracelet/lipgloss"
)

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// RenderRangePanel renders the live distance readout: the current value, a
// bar scaled to the configured clamp window and a short history trend.
func RenderRangePanel(width int, mm uint16, cfg rangesvc.Settings, history []uint16) string {
	inner := width - 4
	if inner < 16 {
		inner = 16
	}

	readout := StyleReadout.Render(fmt.Sprintf("%5d mm", mm))
	window := StyleLabel.Render(fmt.Sprintf("window [%d-%d]mm", cfg.MinRangeMM, cfg.MaxRangeMM))

	lines := []string{
		readout + "  " + window,
		renderBar(inner, mm, cfg),
		renderSpark(inner, history, cfg),
	}

	body := strings.Join(lines, "\n")
	return StylePanelBorder.Width(width - 2).Render(
		StylePanelTitle.Render("RANGE") + "\n" + body)
}

func renderBar(width int, mm uint16, cfg rangesvc.Settings) string {
	span := int(cfg.MaxRangeMM) - int(cfg.MinRangeMM)
	if span <= 0 {
		span = 1
	}
	pos := int(mm) - int(cfg.MinRangeMM)
	if pos < 0 {
		pos = 0
	}
	fill := pos * width / span
	if fill > width {
		fill = width
	}
	return StyleBarFill.Render(strings.Repeat("█", fill)) +
		StyleBarEmpty.Render(strings.Repeat("░", width-fill))
}

func renderSpark(width int, history []uint16, cfg rangesvc.Settings) string {
	if len(history) == 0 {
		return StyleBarEmpty.Render(strings.Repeat("·", width))
	}
	if len(history) > width {
		history = history[len(history)-width:]
	}
	span := int(cfg.MaxRangeMM) - int(cfg.MinRangeMM)
	if span <= 0 {
		span = 1
	}
	var b strings.Builder
	for _, v := range history {
		pos := int(v) - int(cfg.MinRangeMM)
		if pos < 0 {
			pos = 0
		}
		idx := pos * (len(sparkLevels) - 1) / span
		if idx >= len(sparkLevels) {
			idx = len(sparkLevels) - 1
		}
		b.WriteRune(sparkLevels[idx])
	}
	pad := width - len(history)
	return StyleBarEmpty.Render(strings.Repeat("·", pad)) + StyleBarFill.Render(b.String())
}

// RenderLinkPanel renders connection and subscription state.
func RenderLinkPanel(width int, state string, remote string, subscribed bool, battery uint8) string {
	st := StyleStateAdvertising.Render(state)
	if state == "CONNECTED" {
		st = StyleStateConnected.Render(state)
	}
	if remote == "" {
		remote = "-"
	}
	sub := "no"
	if subscribed {
		sub = "yes"
	}

	rows := []string{
		StyleLabel.Render("Link:    ") + st,
		StyleLabel.Render("Central: ") + StyleValue.Render(remote),
		StyleLabel.Render("Notify:  ") + StyleValue.Render(sub),
		StyleLabel.Render("Battery: ") + StyleValue.Render(fmt.Sprintf("%d%%", battery)),
	}
	return StylePanelBorder.Width(width - 2).Render(
		StylePanelTitle.Render("LINK") + "\n" + strings.Join(rows, "\n"))
}

// RenderConfigPanel renders the active sampling configuration.
func RenderConfigPanel(width int, cfg rangesvc.Settings) string {
	rows := []string{
		StyleLabel.Render("Sample:  ") + StyleValue.Render(fmt.Sprintf("%d ms", cfg.SampleIntervalMS)),
		StyleLabel.Render("Notify:  ") + StyleValue.Render(fmt.Sprintf("%d ms", cfg.NotifyIntervalMS)),
		StyleLabel.Render("Min:     ") + StyleValue.Render(fmt.Sprintf("%d mm", cfg.MinRangeMM)),
		StyleLabel.Render("Max:     ") + StyleValue.Render(fmt.Sprintf("%d mm", cfg.MaxRangeMM)),
	}
	return StylePanelBorder.Width(width - 2).Render(
		StylePanelTitle.Render("CONFIG") + "\n" + strings.Join(rows, "\n"))
}

// RenderEventPanel renders the recent event lines, newest last.
func RenderEventPanel(width, height int, events []string) string {
	if len(events) > height {
		events = events[len(events)-height:]
	}
	lines := make([]string, 0, height)
	for _, e := range events {
		if lipgloss.Width(e) > width-4 {
			e = e[:width-4]
		}
		lines = append(lines, StyleEvent.Render(e))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return StylePanelBorder.Width(width - 2).Render(
		StylePanelTitle.Render("EVENTS") + "\n" + strings.Join(lines, "\n"))
}
