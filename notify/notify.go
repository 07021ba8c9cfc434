// Package notify delivers fire-and-forget progress
// events emitted by release steps. Events are a side
// channel: they never carry results and must never
// influence control flow in the step that emits them.
package notify

import "log/slog"

// Level classifies an event.
type Level string

// Event levels.
const (
	LevelInfo Level = "info"
	LevelWarn Level = "warn"
)

// Event is a single progress notification.
type Event struct {
	// Step is the pipeline step emitting the event
	// (e.g. "tag", "push").
	Step string
	// Level is the event severity.
	Level Level
	// Message is the human-readable description.
	Message string
	// Name identifies the event subject (tag name,
	// remote name).
	Name string
}

// Notifier receives events.
//
// Pattern: Strategy -- swap the notification backend
// without changing the release steps.
type Notifier interface {
	Notify(ev Event)
}

// Func adapts a plain function to the Notifier
// interface. A nil Func discards events.
type Func func(ev Event)

// Notify delegates to the wrapped function.
func (f Func) Notify(ev Event) {
	if f != nil {
		f(ev)
	}
}

// Nop returns a Notifier that discards all events.
func Nop() Notifier {
	return Func(nil)
}

// Slog forwards events to a structured logger.
type Slog struct {
	// Logger is the destination logger; nil means
	// slog.Default().
	Logger *slog.Logger
}

// Notify logs the event at its level with step and
// subject attributes.
func (s Slog) Notify(ev Event) {
	lg := s.Logger
	if lg == nil {
		lg = slog.Default()
	}

	attrs := []any{
		"step", ev.Step,
		"name", ev.Name,
	}

	switch ev.Level {
	case LevelWarn:
		lg.Warn(ev.Message, attrs...)
	default:
		lg.Info(ev.Message, attrs...)
	}
}
