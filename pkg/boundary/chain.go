// Package boundary implements the fixed-length boundary-scan chain: one cell
// per functional pin, capturing live pin levels and, once committed, driving
// the output pins in place of the functional logic.
package boundary

import "fmt"

// Chain is a linear scan register of per-pin boundary cells. The first
// inputCount cells observe input pins, the remaining cells sit on output
// pins. Cell order equals pin order, index 0 leaves the serial output first.
type Chain struct {
	in  []bool // live input pin levels
	out []bool // live functional output levels

	cells  []bool // shift buffer
	driven []bool // committed output-cell values
}

// New creates a chain over inputCount input pins and outputCount output pins.
func New(inputCount, outputCount int) (*Chain, error) {
	if inputCount <= 0 || outputCount <= 0 {
		return nil, fmt.Errorf("boundary: pin counts must be positive, got %d/%d", inputCount, outputCount)
	}
	return &Chain{
		in:     make([]bool, inputCount),
		out:    make([]bool, outputCount),
		cells:  make([]bool, inputCount+outputCount),
		driven: make([]bool, outputCount),
	}, nil
}

// Length reports the chain length, which equals the pin count.
func (c *Chain) Length() int { return len(c.cells) }

// SetInputs records the live levels presented on the input pins.
func (c *Chain) SetInputs(levels []bool) {
	copy(c.in, levels)
}

// SetFunctionalOutputs records the levels the functional logic is producing,
// so they are observable on the next capture.
func (c *Chain) SetFunctionalOutputs(levels []bool) {
	copy(c.out, levels)
}

// DrivenOutputs returns the committed output-cell values, the levels the
// chain drives onto the output pins when it owns them.
func (c *Chain) DrivenOutputs() []bool {
	return append([]bool(nil), c.driven...)
}

// Capture samples all live pin levels into the shift buffer.
func (c *Chain) Capture() {
	copy(c.cells, c.in)
	copy(c.cells[len(c.in):], c.out)
}

// Shift clocks one bit through the chain.
func (c *Chain) Shift(in bool) bool {
	out := c.cells[0]
	copy(c.cells, c.cells[1:])
	c.cells[len(c.cells)-1] = in
	return out
}

// Update commits the output-cell half of the shift buffer to the pin drivers.
// Input cells have no update sink.
func (c *Chain) Update() {
	copy(c.driven, c.cells[len(c.in):])
}
