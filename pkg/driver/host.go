// Package driver provides the host side of the test-access protocol: whole
// scan transactions against a device, built from TAP state sequences. The
// host owns the client responsibilities the protocol leaves open, most
// importantly knowing the instrument network's current length before every
// network scan.
package driver

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/tap"
)

// ErrUnknownSIB reports a SIB name absent from the host's topology model.
var ErrUnknownSIB = errors.New("driver: unknown sib")

// Host drives one device. It tracks the TAP state with its own shadow
// machine and mirrors the instrument network locally so it always knows the
// effective scan length before issuing a shift. Only one transaction may be
// in flight; Host is not safe for concurrent use.
type Host struct {
	dev *device.Device
	sm  *tap.StateMachine

	// model mirrors the device's network commit-for-commit. It is the
	// host-side knowledge of topology state the protocol demands.
	model *sibnet.Network
}

// New connects a host to a device and synchronizes both into a known state
// by applying the five-clock reset sequence.
func New(dev *device.Device, topology sibnet.Topology) (*Host, error) {
	model, err := sibnet.New(topology)
	if err != nil {
		return nil, fmt.Errorf("driver: building topology model: %w", err)
	}
	h := &Host{
		dev:   dev,
		sm:    tap.NewStateMachine(),
		model: model,
	}
	h.Reset()
	return h, nil
}

// Reset clocks five TMS=1 cycles, forcing device and shadow machine into
// Test-Logic-Reset, then parks in Run-Test/Idle.
func (h *Host) Reset() {
	for i := 0; i < 5; i++ {
		h.tick(true, false)
	}
	h.tick(false, false)
}

// State reports the host's view of the TAP state.
func (h *Host) State() tap.State { return h.sm.State() }

func (h *Host) tick(tms, tdi bool) bool {
	tdo := h.dev.Tick(tms, tdi)
	h.sm.Clock(tms)
	return tdo
}

// goTo walks the shadow machine to the target state and replays the TMS
// pattern against the device.
func (h *Host) goTo(target tap.State) error {
	seq, err := h.sm.GoTo(target)
	if err != nil {
		return err
	}
	for _, tms := range seq.TMS {
		h.dev.Tick(tms, false)
	}
	return nil
}

// scan shifts len(in) bits through the selected branch: capture on the way
// in, update on the way out, ending in Run-Test/Idle.
func (h *Host) scan(shiftState, updateState tap.State, in []bool) ([]bool, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("driver: empty scan vector")
	}
	if err := h.goTo(shiftState); err != nil {
		return nil, err
	}
	out := make([]bool, len(in))
	for i, bit := range in {
		last := i == len(in)-1
		out[i] = h.tick(last, bit) // exit toward Exit1 on the final bit
	}
	if err := h.goTo(updateState); err != nil {
		return nil, err
	}
	if err := h.goTo(tap.StateRunTestIdle); err != nil {
		return nil, err
	}
	return out, nil
}

// ScanIR commits an instruction opcode.
func (h *Host) ScanIR(op device.Opcode) error {
	bits := scan.UintToBools(uint64(op), device.OpcodeWidth)
	_, err := h.scan(tap.StateShiftIR, tap.StateUpdateIR, bits)
	return err
}

// ScanDR shifts a data vector through the currently selected register and
// returns the captured bits. The vector length is validated against the
// device's current effective length first, because a wrong count corrupts
// alignment for every following scan.
func (h *Host) ScanDR(in []bool) ([]bool, error) {
	if want := h.dev.ActiveLength(); len(in) != want {
		err := fmt.Errorf("driver: scan of %d bits against length %d: %w",
			len(in), want, scan.ErrLengthMismatch)
		if h.dev.ActiveSelector() == device.SelectNetwork {
			// A wrong count on the network path almost always means the
			// caller sized the vector from a pre-update length.
			err = fmt.Errorf("%w: %w", sibnet.ErrStaleTopology, err)
		}
		return nil, err
	}
	return h.ScanDRRaw(in)
}

// ScanDRRaw shifts without the length check. Exists for tests and for
// callers that deliberately exercise the misalignment hazard.
func (h *Host) ScanDRRaw(in []bool) ([]bool, error) {
	return h.scan(tap.StateShiftDR, tap.StateUpdateDR, in)
}

// ReadIDCode selects the IDCODE register and scans out the identification
// word.
func (h *Host) ReadIDCode() (uint32, error) {
	if err := h.ScanIR(device.OpIDCode); err != nil {
		return 0, err
	}
	out, err := h.ScanDR(make([]bool, 32))
	if err != nil {
		return 0, err
	}
	return uint32(scan.BoolsToUint(out)), nil
}

// NetworkLength reports the host's view of the network's effective length.
// It is re-derived from the mirrored model, which tracks every committed
// update, so it is never stale across updates the host itself issued.
func (h *Host) NetworkLength() int {
	return h.model.EffectiveLength()
}

// SIBStates reports the host's view of all SIB control bits.
func (h *Host) SIBStates() map[string]bool {
	return h.model.SIBStates()
}

// scanNetwork runs one network scan with the given vector and mirrors the
// commit into the host model so the next length derivation stays accurate.
func (h *Host) scanNetwork(in []bool) ([]bool, error) {
	if err := h.ScanIR(device.OpScanNet); err != nil {
		return nil, err
	}
	out, err := h.ScanDR(in)
	if err != nil {
		return nil, err
	}
	h.model.Capture()
	for _, bit := range in {
		h.model.Shift(bit)
	}
	h.model.Update()
	return out, nil
}

// CaptureNetwork scans the network once, writing back the values the model
// predicts so the committed state is unchanged, and returns the captured
// bits.
func (h *Host) CaptureNetwork() ([]bool, error) {
	return h.scanNetwork(h.modelImage())
}

// SetSIB opens or closes one SIB by scanning the full current path with just
// that control bit changed. The new length applies from the next scan on.
func (h *Host) SetSIB(name string, open bool) error {
	positions := h.model.ControlBitPositions()
	idx, ok := positions[name]
	if !ok {
		if _, exists := h.model.SIBStates()[name]; !exists {
			return fmt.Errorf("%w: %q", ErrUnknownSIB, name)
		}
		return fmt.Errorf("driver: sib %q sits inside a closed segment and is not on the scan path", name)
	}

	image := h.modelImage()
	image[idx] = open
	_, err := h.scanNetwork(image)
	return err
}

// modelImage predicts the bit vector a capture of the current committed
// state would produce.
func (h *Host) modelImage() []bool {
	h.model.Capture()
	n := h.model.EffectiveLength()
	out := make([]bool, n)
	for i := range out {
		out[i] = h.model.Shift(false)
	}
	// The probe scan disturbed only the staged buffer, never the committed
	// state; discard it.
	h.model.Abort()
	return out
}
