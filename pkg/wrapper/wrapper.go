// Package wrapper implements an IEEE 1500 style core wrapper: a wrapper data
// register (WDR) around a pluggable core, with instruction-dependent capture
// sources, update sinks and functional routing, plus a dedicated one-bit
// bypass path.
package wrapper

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
)

// Instruction is the committed wrapper instruction (WIR). Any value outside
// the defined set behaves as Default: pass-through with no side effects.
type Instruction uint8

const (
	// Default routes functional inputs to the core and exposes the core
	// output. Capture reloads the previous WDR value; update commits nothing.
	Default Instruction = iota
	// Extest drives the core from the WDR input-image and the outputs from
	// the WDR output-image.
	Extest
	// Intest drives the core from the WDR input-image while exposing the
	// internal core output.
	Intest
	// Sample observes pins and core output without disturbing the
	// functional path.
	Sample
	// Clamp holds the exposed outputs at the last committed output-image.
	Clamp
	// Bypass shifts through the wrapper's one-bit bypass register.
	Bypass
)

var instructionNames = map[Instruction]string{
	Default: "DEFAULT",
	Extest:  "EXTEST",
	Intest:  "INTEST",
	Sample:  "SAMPLE",
	Clamp:   "CLAMP",
	Bypass:  "BYPASS",
}

func (i Instruction) String() string {
	if name, ok := instructionNames[i]; ok {
		return name
	}
	return fmt.Sprintf("Instruction(%d)", i)
}

// Register is the wrapper data register plus its bypass path. The shift
// buffer is the concatenation input-image ∥ output-image; the committed
// images live in separate staging cells written back on EXTEST/INTEST update.
//
// At most one of Capture/Shift/Update fires per tick because the TAP control
// vector strobes are mutually exclusive, so capture can never race an update
// within one cycle.
type Register struct {
	core     scan.Instrument
	inWidth  int
	outWidth int

	wir    Instruction
	shift  []bool // WDR shift shadow, inWidth+outWidth bits
	bypass bool   // dedicated one-bit bypass path

	inImage  []bool // committed input-image staging
	outImage []bool // committed output-image staging

	funcIn  []bool // live functional input levels
	coreOut []bool // current internal core output
}

// New builds a wrapper around core. The core must accept inWidth-bit updates
// and produce outWidth-bit capture values.
func New(core scan.Instrument, inWidth, outWidth int) (*Register, error) {
	if core == nil {
		return nil, fmt.Errorf("wrapper: core is nil")
	}
	if inWidth <= 0 || outWidth <= 0 {
		return nil, fmt.Errorf("wrapper: widths must be positive, got %d/%d", inWidth, outWidth)
	}
	r := &Register{
		core:     core,
		inWidth:  inWidth,
		outWidth: outWidth,
		shift:    make([]bool, inWidth+outWidth),
		inImage:  make([]bool, inWidth),
		outImage: make([]bool, outWidth),
		funcIn:   make([]bool, inWidth),
		coreOut:  make([]bool, outWidth),
	}
	r.evaluate()
	return r, nil
}

// InputWidth reports the width of the input-image half of the WDR.
func (r *Register) InputWidth() int { return r.inWidth }

// OutputWidth reports the width of the output-image half of the WDR.
func (r *Register) OutputWidth() int { return r.outWidth }

// Instruction reports the committed WIR value.
func (r *Register) Instruction() Instruction { return r.wir }

// SetInstruction commits a new WIR value. Staged shift contents are not
// touched; only the routing changes.
func (r *Register) SetInstruction(i Instruction) {
	r.wir = i
	r.evaluate()
}

// SetInputs records the live functional input levels.
func (r *Register) SetInputs(levels []bool) {
	copy(r.funcIn, levels)
	r.evaluate()
}

// Outputs returns the levels the wrapper exposes outward under the committed
// instruction: the WDR output-image for EXTEST, the held image for CLAMP,
// the internal core output otherwise.
func (r *Register) Outputs() []bool {
	switch r.wir {
	case Extest, Clamp:
		return append([]bool(nil), r.outImage...)
	default:
		return append([]bool(nil), r.coreOut...)
	}
}

// CoreOutputs returns the internal core output under the current routing.
func (r *Register) CoreOutputs() []bool {
	return append([]bool(nil), r.coreOut...)
}

// Images returns copies of the committed input- and output-image staging.
func (r *Register) Images() (in, out []bool) {
	return append([]bool(nil), r.inImage...), append([]bool(nil), r.outImage...)
}

// evaluate feeds the core under the committed routing and refreshes the
// internal core output.
func (r *Register) evaluate() {
	switch r.wir {
	case Extest, Intest:
		r.core.ApplyUpdate(append([]bool(nil), r.inImage...))
	default:
		r.core.ApplyUpdate(append([]bool(nil), r.funcIn...))
	}
	copy(r.coreOut, r.core.CaptureBits())
}

// Length reports the current shift-path length: one bit when WIR selects
// Bypass, the full WDR otherwise.
func (r *Register) Length() int {
	if r.wir == Bypass {
		return 1
	}
	return len(r.shift)
}

// Capture loads the shift buffer from the instruction's capture source.
func (r *Register) Capture() {
	switch r.wir {
	case Extest, Sample:
		// External input pins plus the internal core-output image.
		copy(r.shift, r.funcIn)
		copy(r.shift[r.inWidth:], r.coreOut)
	case Intest:
		// WDR-staged test inputs plus the internal core-output image.
		copy(r.shift, r.inImage)
		copy(r.shift[r.inWidth:], r.coreOut)
	case Clamp:
		// No capture defined.
	case Bypass:
		r.bypass = false
	default:
		// Previous WDR value.
		copy(r.shift, r.inImage)
		copy(r.shift[r.inWidth:], r.outImage)
	}
}

// Shift clocks one bit through the selected path.
func (r *Register) Shift(in bool) bool {
	if r.wir == Bypass {
		out := r.bypass
		r.bypass = in
		return out
	}
	out := r.shift[0]
	copy(r.shift, r.shift[1:])
	r.shift[len(r.shift)-1] = in
	return out
}

// Update commits per the instruction table: EXTEST and INTEST write both WDR
// image halves back into the capture staging cells; every other instruction
// leaves staging unchanged.
func (r *Register) Update() {
	switch r.wir {
	case Extest, Intest:
		copy(r.inImage, r.shift[:r.inWidth])
		copy(r.outImage, r.shift[r.inWidth:])
		r.evaluate()
	}
}
