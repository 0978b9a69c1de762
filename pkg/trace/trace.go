// Package trace provides structured logging sinks for device tick traces.
package trace

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
)

// NewLogger builds the logger used by the command-line tools: console
// output with timestamps and the tool name attached to every event.
func NewLogger(out io.Writer, app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("app", app).Logger()
}

// Sink emits one structured log event per device tick. It implements
// device.Tracer.
type Sink struct {
	log zerolog.Logger
	// ShiftsOnly suppresses ticks that neither capture, shift nor update,
	// which keeps long idle stretches out of the log.
	ShiftsOnly bool
}

// NewSink wraps a logger as a tick sink.
func NewSink(log zerolog.Logger) *Sink {
	return &Sink{log: log}
}

// Trace logs a single tick record at debug level.
func (s *Sink) Trace(t device.Trace) {
	if s.ShiftsOnly && t.Phase == device.PhaseNone {
		return
	}
	ev := s.log.Debug().
		Uint64("tick", t.Tick).
		Stringer("state", t.State).
		Str("phase", t.Phase.String()).
		Bool("tms", t.TMS).
		Bool("tdi", t.TDI).
		Bool("tdo", t.TDO)
	if t.Register != "" {
		ev = ev.Str("register", t.Register)
	}
	if t.Unreliable {
		ev = ev.Bool("unreliable", true)
	}
	ev.Msg("tick")
}
