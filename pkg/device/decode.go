package device

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/wrapper"
)

// Opcode is an instruction register value. Only the low OpcodeWidth bits are
// significant.
type Opcode uint8

// OpcodeWidth is the instruction register width in bits.
const OpcodeWidth = 4

// The public instruction table. Opcode 5 is unassigned and decodes as
// reserved.
const (
	OpBypass   Opcode = 0x0
	OpIDCode   Opcode = 0x1
	OpSample   Opcode = 0x2
	OpExtest   Opcode = 0x3
	OpIntest   Opcode = 0x4
	OpClamp    Opcode = 0x6
	OpBoundary Opcode = 0x7
	OpScanNet  Opcode = 0x8
)

// Selector identifies which concrete register the decoded instruction puts
// on the scan path.
type Selector uint8

const (
	SelectBypass Selector = iota
	SelectIDCode
	SelectBoundary
	SelectWrapper
	SelectNetwork
)

var selectorNames = map[Selector]string{
	SelectBypass:   "bypass",
	SelectIDCode:   "idcode",
	SelectBoundary: "boundary",
	SelectWrapper:  "wrapper",
	SelectNetwork:  "network",
}

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Selector(%d)", s)
}

// decodeEntry couples the scan-path selection with the wrapper routing the
// instruction implies.
type decodeEntry struct {
	name     string
	selector Selector
	wir      wrapper.Instruction
}

var decodeTable = map[Opcode]decodeEntry{
	OpBypass:   {name: "BYPASS", selector: SelectWrapper, wir: wrapper.Bypass},
	OpIDCode:   {name: "IDCODE", selector: SelectIDCode, wir: wrapper.Default},
	OpSample:   {name: "SAMPLE", selector: SelectWrapper, wir: wrapper.Sample},
	OpExtest:   {name: "EXTEST", selector: SelectWrapper, wir: wrapper.Extest},
	OpIntest:   {name: "INTEST", selector: SelectWrapper, wir: wrapper.Intest},
	OpClamp:    {name: "CLAMP", selector: SelectBypass, wir: wrapper.Clamp},
	OpBoundary: {name: "BSCAN", selector: SelectBoundary, wir: wrapper.Default},
	OpScanNet:  {name: "SCANNET", selector: SelectNetwork, wir: wrapper.Default},
}

// Decode maps an opcode to its register selection. Unknown or reserved
// opcodes resolve to the bypass path with default wrapper routing; decoding
// never fails.
func Decode(op Opcode) (name string, selector Selector, wir wrapper.Instruction) {
	entry, ok := decodeTable[op&(1<<OpcodeWidth-1)]
	if !ok {
		return "RESERVED", SelectBypass, wrapper.Default
	}
	return entry.name, entry.selector, entry.wir
}
