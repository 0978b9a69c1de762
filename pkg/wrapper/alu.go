package wrapper

import "github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"

// ALU is the placeholder combinational core used behind the wrapper in tests
// and the demo tooling. It takes two 4-bit operands packed LSB-first into an
// 8-bit input image and produces an 8-bit output image:
//
//	out[3:0] sum (mod 16)
//	out[4]   carry
//	out[5]   operands equal
//	out[7:6] zero
//
// Any component satisfying scan.Instrument can stand in for it.
type ALU struct {
	in []bool
}

// ALUWidth is the input and output image width of the placeholder core.
const ALUWidth = 8

// NewALU returns a cleared placeholder core.
func NewALU() *ALU {
	return &ALU{in: make([]bool, ALUWidth)}
}

func (a *ALU) Width() int { return ALUWidth }

func (a *ALU) ApplyUpdate(bits []bool) {
	copy(a.in, bits)
}

func (a *ALU) CaptureBits() []bool {
	opA := scan.BoolsToUint(a.in[:4])
	opB := scan.BoolsToUint(a.in[4:])
	sum := opA + opB

	out := scan.UintToBools(sum&0xF, ALUWidth)
	out[4] = sum > 0xF
	out[5] = opA == opB
	return out
}

var _ scan.Instrument = (*ALU)(nil)
