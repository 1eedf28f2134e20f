package app

import (
	"time"

	"ble-rangefinder.klederson.com/internal/battery"
	"ble-rangefinder.klederson.com/internal/config"
	"ble-rangefinder.klederson.com/internal/peripheral"
	"ble-rangefinder.klederson.com/internal/rangesvc"
	"ble-rangefinder.klederson.com/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Sources are the runtime components the monitor snapshots on every tick.
// The TUI is presentation only; all state lives in these.
type Sources struct {
	Service *rangesvc.Service
	Battery *battery.Monitor
	Links   *peripheral.Manager
}

// shared holds state shared between the Bubble Tea model copies. Because
// Bubble Tea uses value receivers, pointer fields ensure all copies see the
// same underlying data.
type shared struct {
	history *RangeRing
}

// Model is the root Bubble Tea model for the rangefinder monitor.
type Model struct {
	width  int
	height int

	deviceName string
	demo       bool
	sources    Sources

	shared *shared

	// Cached snapshot
	rangeMM    uint16
	batteryPct uint8
	state      peripheral.State
	remote     string
	subscribed bool
	cfg        rangesvc.Settings

	events []string
}

// New creates a monitor model over the given runtime components.
func New(deviceName string, demo bool, sources Sources) Model {
	return Model{
		deviceName: deviceName,
		demo:       demo,
		sources:    sources,
		shared:     &shared{history: NewRangeRing(120)},
		cfg:        sources.Service.Config(),
	}
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil

	case TickMsg:
		m.rangeMM = m.sources.Service.RangeMM()
		m.subscribed = m.sources.Service.Subscribed()
		m.cfg = m.sources.Service.Config()
		if m.sources.Battery != nil {
			m.batteryPct = m.sources.Battery.Level()
		}
		if m.sources.Links != nil {
			m.state = m.sources.Links.State()
			m.remote = m.sources.Links.Remote()
		}
		m.shared.history.Push(m.rangeMM)
		return m, tickCmd()

	case EventMsg:
		m.events = append(m.events, msg.Line)
		if len(m.events) > config.EventLogLines*4 {
			m.events = m.events[len(m.events)-config.EventLogLines*2:]
		}
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing monitor..."
	}

	menuBar := ui.RenderMenuBar(m.width, m.deviceName, m.demo)
	statusBar := ui.RenderStatusBar(m.width, m.state.String(), m.rangeMM, m.batteryPct, m.subscribed)

	sideW := m.width / 3
	if sideW < 24 {
		sideW = 24
	}
	mainW := m.width - sideW

	rangePanel := ui.RenderRangePanel(mainW, m.rangeMM, m.cfg, m.shared.history.Values())
	eventPanel := ui.RenderEventPanel(mainW, config.EventLogLines, m.events)
	linkPanel := ui.RenderLinkPanel(sideW, m.state.String(), m.remote, m.subscribed, m.batteryPct)
	cfgPanel := ui.RenderConfigPanel(sideW, m.cfg)

	left := lipgloss.JoinVertical(lipgloss.Left, rangePanel, eventPanel)
	right := lipgloss.JoinVertical(lipgloss.Left, linkPanel, cfgPanel)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(lipgloss.Left, menuBar, body, statusBar)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(config.TargetFPS), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
