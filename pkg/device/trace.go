package device

import "github.com/OpenTraceLab/OpenTraceDFT/pkg/tap"

// Phase labels what a tick did to the active register.
type Phase uint8

const (
	PhaseNone Phase = iota
	PhaseCapture
	PhaseShift
	PhaseUpdate
)

var phaseNames = [...]string{"none", "capture", "shift", "update"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// Trace is the per-tick observation record: enough for external tooling to
// reconstruct a waveform-equivalent view without the device depending on any
// particular logging mechanism.
type Trace struct {
	Tick     uint64
	State    tap.State
	Register string
	Phase    Phase
	TMS      bool
	TDI      bool
	TDO      bool
	// Unreliable marks captures whose preceding scan had a shift-count
	// mismatch, so the captured value set cannot be trusted.
	Unreliable bool
}

// Tracer receives one record per tick. Implementations must not mutate the
// device from within Trace.
type Tracer interface {
	Trace(Trace)
}

// TracerFunc adapts a plain function to the Tracer interface.
type TracerFunc func(Trace)

func (f TracerFunc) Trace(t Trace) { f(t) }
