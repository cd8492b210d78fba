package metrics

import "time"

// Sink records operational metrics for the reminder engine.
// All methods are fire-and-forget: implementations MUST NOT block or
// propagate errors; an unavailable backend degrades to a no-op.
type Sink interface {
	// TickStarted is called when an evaluation pass begins.
	TickStarted()
	// TickSkipped is called when a tick is dropped because the previous
	// pass is still running.
	TickSkipped()
	// TickCompleted is called after every evaluation pass.
	TickCompleted(duration time.Duration)
	// ReminderFired is called once per emitted reminder notification.
	ReminderFired(recurrence string)
	// DigestFired is called when a daily digest notification is emitted.
	DigestFired(eventCount int)
	// EventSkipped is called when a malformed event is excluded from a pass.
	EventSkipped()
	// StoreWriteFailed is called when a durable-store write fails.
	StoreWriteFailed(key string)
}

// Noop discards all metrics.
type Noop struct{}

func (Noop) TickStarted()                {}
func (Noop) TickSkipped()                {}
func (Noop) TickCompleted(time.Duration) {}
func (Noop) ReminderFired(string)        {}
func (Noop) DigestFired(int)             {}
func (Noop) EventSkipped()               {}
func (Noop) StoreWriteFailed(string)     {}

var _ Sink = Noop{}
