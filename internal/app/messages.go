package app

import "time"

// TickMsg triggers a snapshot refresh.
type TickMsg time.Time

// EventMsg carries one formatted log line into the event pane.
type EventMsg struct {
	Line string
}
