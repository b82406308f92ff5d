package scheduler

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// LoopHooks observes event lifecycle.
// OnScheduled and OnCancelled are called on the caller's goroutine,
// OnDispatched and OnDispatchError on the loop goroutine.
// Implementations must not block for long; the loop waits for them.
type LoopHooks interface {
	OnScheduled(ev Event)
	OnCancelled(ev Event)
	OnDispatched(fired Fired)
	// OnDispatchError receives a *DispatchError.
	// There is no caller to return it to; the loop continues after this returns.
	OnDispatchError(err error)
}

// MultiHooks calls each of its hooks in order.
type MultiHooks []LoopHooks

func (m MultiHooks) OnScheduled(ev Event) {
	for _, h := range m {
		h.OnScheduled(ev)
	}
}
func (m MultiHooks) OnCancelled(ev Event) {
	for _, h := range m {
		h.OnCancelled(ev)
	}
}
func (m MultiHooks) OnDispatched(fired Fired) {
	for _, h := range m {
		h.OnDispatched(fired)
	}
}
func (m MultiHooks) OnDispatchError(err error) {
	for _, h := range m {
		h.OnDispatchError(err)
	}
}

type Logger interface {
	Info(v any, logValues ...string)
	Error(e error, logValues ...string)
}

// StdLogger adapts *log.Logger to Logger.
// logValues are written as space separated key=value pairs.
type StdLogger struct {
	l *log.Logger
}

func NewStdLogger(l *log.Logger) *StdLogger {
	if l == nil {
		l = log.Default()
	}
	return &StdLogger{l: l}
}

func (s *StdLogger) Info(v any, logValues ...string) {
	s.l.Printf("level=info value=%v%s", v, formatLogValues(logValues))
}

func (s *StdLogger) Error(e error, logValues ...string) {
	s.l.Printf("level=error err=%q%s", e, formatLogValues(logValues))
}

func formatLogValues(logValues []string) string {
	var b strings.Builder
	for i := 0; i < len(logValues); i += 2 {
		b.WriteByte(' ')
		b.WriteString(logValues[i])
		b.WriteByte('=')
		if i+1 < len(logValues) {
			b.WriteString(logValues[i+1])
		}
	}
	return b.String()
}

// LogHooks logs dispatch errors through Logger.
// If Verbose is set, it also logs scheduling, cancellation and dispatch.
type LogHooks struct {
	Logger  Logger
	Verbose bool
}

func NewLogHooks(logger Logger) *LogHooks {
	return &LogHooks{Logger: logger}
}

func eventLogValues(ev Event) []string {
	return []string{
		"event_id", ev.Id(),
		"fire_at", ev.FireAt().Format(time.RFC3339Nano),
		"payload_kind", ev.Payload().Kind().String(),
	}
}

func (h *LogHooks) OnScheduled(ev Event) {
	if h.Verbose {
		h.Logger.Info("scheduled", eventLogValues(ev)...)
	}
}

func (h *LogHooks) OnCancelled(ev Event) {
	if h.Verbose {
		h.Logger.Info("cancelled", eventLogValues(ev)...)
	}
}

func (h *LogHooks) OnDispatched(fired Fired) {
	if h.Verbose {
		h.Logger.Info(
			"dispatched",
			append(eventLogValues(fired.Event), "delay", fired.Delay().String())...,
		)
	}
}

func (h *LogHooks) OnDispatchError(err error) {
	values := []string{}
	if dispatchErr, ok := err.(*DispatchError); ok {
		values = append(values,
			"event_id", dispatchErr.Handle.Id(),
			"fire_at", dispatchErr.Handle.FireAt().Format(time.RFC3339Nano),
			"kind", string(dispatchErr.Kind),
		)
	}
	h.Logger.Error(fmt.Errorf("dispatch failed: %w", err), values...)
}
