package scan

// Bit-vector helpers. Registers work in []bool with index 0 at the serial
// output end; packed []byte buffers are LSB-first within each byte, matching
// the byte layout adapters shift on the wire.

// BoolsToBytes packs a bit vector into bytes, LSB-first.
func BoolsToBytes(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	buf := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			buf[i/8] |= 1 << (uint(i) % 8)
		}
	}
	return buf
}

// BytesToBools unpacks count bits from a packed buffer, LSB-first.
func BytesToBools(buf []byte, count int) []bool {
	if count == 0 {
		return nil
	}
	out := make([]bool, count)
	for i := 0; i < count; i++ {
		out[i] = buf[i/8]&(1<<(uint(i)%8)) != 0
	}
	return out
}

// UintToBools expands the low width bits of v, LSB-first.
func UintToBools(v uint64, width int) []bool {
	out := make([]bool, width)
	for i := 0; i < width; i++ {
		out[i] = v&(1<<uint(i)) != 0
	}
	return out
}

// BoolsToUint folds a bit vector back into an integer, LSB-first. Vectors
// longer than 64 bits are truncated.
func BoolsToUint(bits []bool) uint64 {
	var v uint64
	for i, bit := range bits {
		if i >= 64 {
			break
		}
		if bit {
			v |= 1 << uint(i)
		}
	}
	return v
}
