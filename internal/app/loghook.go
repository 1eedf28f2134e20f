package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

// LogHook forwards info-and-above log entries into the TUI event pane.
// Install it after the tea program exists and before it runs.
type LogHook struct {
	p *tea.Program
}

// NewLogHook creates a hook sending event lines to p.
func NewLogHook(p *tea.Program) *LogHook {
	return &LogHook{p: p}
}

func (h *LogHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.InfoLevel,
		logrus.WarnLevel,
		logrus.ErrorLevel,
		logrus.FatalLevel,
		logrus.PanicLevel,
	}
}

func (h *LogHook) Fire(e *logrus.Entry) error {
	component, _ := e.Data["component"].(string)
	line := e.Message
	if component != "" {
		line = fmt.Sprintf("%s: %s", component, e.Message)
	}
	h.p.Send(EventMsg{Line: fmt.Sprintf("%s %s", e.Time.Format("15:04:05"), line)})
	return nil
}
