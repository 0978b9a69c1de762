// Package scan defines the generic scan-register protocol shared by every
// test data register in the stack: capture a live value, shift it serially,
// commit the shifted contents. Concrete registers (boundary chain, wrapper,
// instrument network) implement Register; leaf payloads implement Instrument.
package scan

import "errors"

// ErrLengthMismatch marks a scan whose shift count differed from the selected
// register's effective length. The protocol cannot resynchronize on its own;
// the caller must re-issue a correctly sized scan from a known state.
var ErrLengthMismatch = errors.New("scan: shift count does not match register length")

// Register is a shiftable, capturable, updatable bit vector. Length may be
// runtime-variable (the instrument network recomputes it after every update),
// so callers must read it per scan, not cache it across updates.
type Register interface {
	// Length reports the current effective number of shift positions.
	Length() int
	// Capture loads live values from the register's capture source into the
	// shift buffer. Always precedes shifting within one scan.
	Capture()
	// Shift clocks one bit in at the serial input end and returns the bit
	// falling out of the serial output end.
	Shift(in bool) (out bool)
	// Update commits the shift buffer to the register's update sink. Always
	// follows the final shift of the current scan.
	Update()
}

// Instrument is the minimal read/write capability a leaf payload exposes.
// Both the wrapper's core and the 1687 network's instruments satisfy it, so
// the two standards share one abstraction.
type Instrument interface {
	// Width reports the fixed number of bits the instrument occupies.
	Width() int
	// CaptureBits returns the instrument's current observable value.
	CaptureBits() []bool
	// ApplyUpdate commits a staged write. len(bits) == Width().
	ApplyUpdate(bits []bool)
}

// Bypass is the mandatory single-bit pass-through register. Capture loads a
// constant zero; update is a no-op because a bypass has no sink.
type Bypass struct {
	bit bool
}

// NewBypass returns a cleared bypass register.
func NewBypass() *Bypass {
	return &Bypass{}
}

func (b *Bypass) Length() int { return 1 }

func (b *Bypass) Capture() { b.bit = false }

func (b *Bypass) Shift(in bool) bool {
	out := b.bit
	b.bit = in
	return out
}

func (b *Bypass) Update() {}

// Latch is a fixed-width Instrument that simply holds its last committed
// value. It serves as the default leaf behind a SIB and as a stand-in
// instrument in tests.
type Latch struct {
	value []bool
}

// NewLatch creates a Latch of the given width, initialized to all zeros.
func NewLatch(width int) *Latch {
	return &Latch{value: make([]bool, width)}
}

func (l *Latch) Width() int { return len(l.value) }

func (l *Latch) CaptureBits() []bool {
	return append([]bool(nil), l.value...)
}

func (l *Latch) ApplyUpdate(bits []bool) {
	copy(l.value, bits)
}
