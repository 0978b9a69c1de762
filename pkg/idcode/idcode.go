// Package idcode handles the 32-bit device identification word captured by
// the IDCODE data register: version, part number, JEP106 manufacturer code
// and the mandatory trailing 1 bit.
package idcode

import "fmt"

// IDCode represents a parsed IEEE 1149.1 device identification word.
type IDCode struct {
	Raw              uint32 // full IDCODE
	Version          uint8  // [31:28]
	PartNumber       uint16 // [27:12]
	ManufacturerCode uint16 // [11:1] JEP106
	HasIDCode        bool   // bit 0 == 1
}

// Parse splits a raw 32-bit IDCODE into its component fields.
func Parse(raw uint32) IDCode {
	return IDCode{
		Raw:              raw,
		Version:          uint8((raw >> 28) & 0xF),
		PartNumber:       uint16((raw >> 12) & 0xFFFF),
		ManufacturerCode: uint16((raw >> 1) & 0x7FF),
		HasIDCode:        raw&0x1 == 0x1,
	}
}

// Compose builds the raw identification word a device captures into its
// IDCODE register. The trailing bit is always 1; a device without an IDCODE
// register presents a bypass 0 instead, which is a different path entirely.
func Compose(version uint8, part uint16, manufacturer uint16) uint32 {
	return uint32(version&0xF)<<28 |
		uint32(part)<<12 |
		uint32(manufacturer&0x7FF)<<1 |
		1
}

func (id IDCode) String() string {
	return fmt.Sprintf("0x%08X (mfg 0x%03X, part 0x%04X, ver %d)",
		id.Raw, id.ManufacturerCode, id.PartNumber, id.Version)
}
