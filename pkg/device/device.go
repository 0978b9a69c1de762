// Package device composes the TAP controller, instruction decode, and the
// full register set (bypass, IDCODE, boundary chain, 1500 wrapper, 1687
// network) into one addressable test-access device driven tick by tick.
package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/boundary"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/tap"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/wrapper"
)

// Config describes one device instance.
type Config struct {
	// IDCode is the 32-bit identification word captured by the IDCODE
	// register.
	IDCode uint32
	// Core sits behind the 1500 wrapper. Defaults to the placeholder ALU.
	Core scan.Instrument
	// CoreInputWidth and CoreOutputWidth size the wrapper data register and
	// with it the functional pin banks. Default to the ALU width.
	CoreInputWidth  int
	CoreOutputWidth int
	// Topology wires the 1687 instrument network. Already structured; the
	// device never parses description files.
	Topology sibnet.Topology
	// Tracer receives one record per tick. Optional.
	Tracer Tracer
}

// Device is the top-level router. All register state is owned here and
// mutated exclusively through capture/shift/update driven by Tick; the model
// is single-writer and not safe for concurrent use.
type Device struct {
	sm       *tap.StateMachine
	bypass   *scan.Bypass
	id       *idRegister
	boundary *boundary.Chain
	wrapper  *wrapper.Register
	network  *sibnet.Network

	opcode    Opcode // committed instruction
	instrName string
	selector  Selector
	irShift   []bool // staged IR contents; committed only on Update-IR

	tick       uint64
	drShifts   int
	drExpected int
	// pendingMismatch carries a length mismatch forward to the next capture,
	// where the captured set gets flagged unreliable.
	pendingMismatch bool
	unreliable      bool
	lastShifts      int
	lastExpected    int
	lastAligned     bool

	tracer Tracer
}

// New builds a device from the configuration. The TAP starts in
// Test-Logic-Reset with IDCODE committed.
func New(cfg Config) (*Device, error) {
	core := cfg.Core
	inWidth, outWidth := cfg.CoreInputWidth, cfg.CoreOutputWidth
	if core == nil {
		core = wrapper.NewALU()
		if inWidth == 0 {
			inWidth = wrapper.ALUWidth
		}
		if outWidth == 0 {
			outWidth = wrapper.ALUWidth
		}
	}

	wrap, err := wrapper.New(core, inWidth, outWidth)
	if err != nil {
		return nil, err
	}
	bound, err := boundary.New(inWidth, outWidth)
	if err != nil {
		return nil, err
	}
	net, err := sibnet.New(cfg.Topology)
	if err != nil {
		return nil, err
	}

	d := &Device{
		sm:          tap.NewStateMachine(),
		bypass:      scan.NewBypass(),
		id:          newIDRegister(cfg.IDCode),
		boundary:    bound,
		wrapper:     wrap,
		network:     net,
		lastAligned: true,
		tracer:      cfg.Tracer,
	}
	d.resetLogic()
	return d, nil
}

// State reports the current TAP state.
func (d *Device) State() tap.State { return d.sm.State() }

// Instruction reports the committed opcode.
func (d *Device) Instruction() Opcode { return d.opcode }

// InstructionName reports the decoded name of the committed opcode.
func (d *Device) InstructionName() string { return d.instrName }

// ActiveSelector reports which register the committed instruction selects.
func (d *Device) ActiveSelector() Selector { return d.selector }

// ActiveLength reports the current effective length of the selected data
// register. For the instrument network this changes across updates, so scan
// clients must re-read it per scan.
func (d *Device) ActiveLength() int { return d.active().Length() }

// Network exposes the instrument network for observability and instrument
// binding. Register contents still change only through scan operations.
func (d *Device) Network() *sibnet.Network { return d.network }

// Wrapper exposes the core wrapper for observability.
func (d *Device) Wrapper() *wrapper.Register { return d.wrapper }

// SetInputs presents live levels on the functional input pins.
func (d *Device) SetInputs(levels []bool) {
	d.wrapper.SetInputs(levels)
	d.boundary.SetInputs(levels)
	d.syncFunctional()
}

// OutputPins reports the levels on the functional output pins: the boundary
// chain's committed drivers while BSCAN owns the pins, the wrapper-exposed
// levels otherwise. With no test instruction committed this is observably
// identical to a device without test logic.
func (d *Device) OutputPins() []bool {
	if d.opcode == OpBoundary {
		return d.boundary.DrivenOutputs()
	}
	return d.wrapper.Outputs()
}

// Health reports the scan-alignment status surfaced by the length-mismatch
// protocol hazard.
type Health struct {
	// LastShiftCount and LastExpected describe the most recently completed
	// DR scan.
	LastShiftCount  int
	LastExpected    int
	LastScanAligned bool
	// UnreliableCapture is set while the currently captured value set
	// follows a misaligned scan.
	UnreliableCapture bool
}

// Err folds the health into the error taxonomy.
func (h Health) Err() error {
	if !h.LastScanAligned {
		return fmt.Errorf("device: scan of %d bits against length %d: %w",
			h.LastShiftCount, h.LastExpected, scan.ErrLengthMismatch)
	}
	return nil
}

// Health reports the current scan-health snapshot.
func (d *Device) Health() Health {
	return Health{
		LastShiftCount:    d.lastShifts,
		LastExpected:      d.lastExpected,
		LastScanAligned:   d.lastAligned,
		UnreliableCapture: d.unreliable,
	}
}

// Reset models the asynchronous reset pin: the TAP jumps to Test-Logic-Reset
// immediately, any in-progress shift is discarded, and nothing is committed.
func (d *Device) Reset() {
	d.sm.ForceReset()
	d.resetLogic()
}

// resetLogic restores the Test-Logic-Reset register side: IDCODE committed,
// staged IR cleared, partial scans dropped.
func (d *Device) resetLogic() {
	d.commit(OpIDCode)
	d.irShift = make([]bool, OpcodeWidth)
	d.network.Abort()
	d.drShifts = 0
	d.drExpected = 0
	d.pendingMismatch = false
	d.unreliable = false
}

// commit decodes and installs an instruction. Unknown opcodes land on the
// bypass path, never on an undefined one.
func (d *Device) commit(op Opcode) {
	op &= 1<<OpcodeWidth - 1
	name, selector, wir := Decode(op)
	d.opcode = op
	d.instrName = name
	d.selector = selector
	d.wrapper.SetInstruction(wir)
	d.syncFunctional()
}

// syncFunctional propagates the wrapper-exposed levels to the boundary
// chain's observation cells.
func (d *Device) syncFunctional() {
	d.boundary.SetFunctionalOutputs(d.wrapper.Outputs())
}

// active returns the register the committed instruction puts on the scan
// path.
func (d *Device) active() scan.Register {
	switch d.selector {
	case SelectIDCode:
		return d.id
	case SelectBoundary:
		return d.boundary
	case SelectWrapper:
		return d.wrapper
	case SelectNetwork:
		return d.network
	default:
		return d.bypass
	}
}

// Tick advances the device by one protocol clock: the current state's Moore
// control vector picks at most one capture/shift/update action, TDO is
// produced, then the TAP advances on the TMS decision bit. Outside shifts
// TDO holds a defined idle low.
func (d *Device) Tick(tms, tdi bool) (tdo bool) {
	state := d.sm.State()
	c := tap.Signals(state)
	phase := PhaseNone

	switch {
	case c.CaptureIR:
		// Capture the committed opcode so IR scans are observable.
		copy(d.irShift, scan.UintToBools(uint64(d.opcode), OpcodeWidth))
		phase = PhaseCapture
	case c.ShiftIR:
		tdo = d.irShift[0]
		copy(d.irShift, d.irShift[1:])
		d.irShift[len(d.irShift)-1] = tdi
		phase = PhaseShift
	case c.UpdateIR:
		d.commit(Opcode(scan.BoolsToUint(d.irShift)))
		phase = PhaseUpdate
	case c.CaptureDR:
		d.syncFunctional()
		r := d.active()
		d.unreliable = d.pendingMismatch
		d.pendingMismatch = false
		d.drExpected = r.Length()
		d.drShifts = 0
		r.Capture()
		phase = PhaseCapture
	case c.ShiftDR:
		tdo = d.active().Shift(tdi)
		d.drShifts++
		phase = PhaseShift
	case c.UpdateDR:
		d.active().Update()
		d.lastShifts = d.drShifts
		d.lastExpected = d.drExpected
		d.lastAligned = d.drShifts == d.drExpected
		if !d.lastAligned {
			d.pendingMismatch = true
		}
		d.syncFunctional()
		phase = PhaseUpdate
	}

	if d.tracer != nil {
		reg := d.selector.String()
		if c.SelectIR {
			reg = "ir"
		}
		d.tracer.Trace(Trace{
			Tick:       d.tick,
			State:      state,
			Register:   reg,
			Phase:      phase,
			TMS:        tms,
			TDI:        tdi,
			TDO:        tdo,
			Unreliable: phase == PhaseCapture && c.CaptureDR && d.unreliable,
		})
	}
	d.tick++

	next := d.sm.Clock(tms)
	if next == tap.StateTestLogicReset && state != next {
		d.resetLogic()
	}
	return tdo
}
