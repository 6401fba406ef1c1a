package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ren/shuttle/internal/engine"
)

// EngineEventMsg wraps an engine.Event for use as a tea.Msg.
type EngineEventMsg struct {
	Event engine.Event
}

// EventBridge adapts engine events to bubble tea messages. It implements
// engine.EventEmitter and provides a channel for TUI consumption.
type EventBridge struct {
	eventChan chan tea.Msg
	closed    bool
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, 100), // Buffer to prevent blocking engine
	}
}

// Emit implements engine.EventEmitter. Non-blocking: if the channel is
// full the event is dropped, the next snapshot carries the same state.
func (b *EventBridge) Emit(event engine.Event) {
	if b.closed {
		return
	}

	select {
	case b.eventChan <- EngineEventMsg{Event: event}:
	default:
		// Channel full, event dropped
	}
}

// ListenCmd returns a tea.Cmd that blocks until an event is received.
// Use this in Init() and after processing an event to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.eventChan
		if !ok {
			return nil // Channel closed
		}

		return msg
	}
}

// Close closes the event channel. Call this when done with the bridge.
func (b *EventBridge) Close() {
	if !b.closed {
		b.closed = true
		close(b.eventChan)
	}
}

// TickMsg is a message sent on each tick interval.
type TickMsg time.Time

// tickInterval drives spinner animation and periodic refresh.
const tickInterval = 100 * time.Millisecond

// TickCmd returns a command that sends tick messages at regular intervals.
func TickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
