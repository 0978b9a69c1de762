package device

import "github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"

// idRegister is the 32-bit identification register. Capture reloads the
// configured word; there is no update sink.
type idRegister struct {
	word uint32
	bits []bool
}

func newIDRegister(word uint32) *idRegister {
	return &idRegister{
		word: word,
		bits: scan.UintToBools(uint64(word), 32),
	}
}

func (r *idRegister) Length() int { return 32 }

func (r *idRegister) Capture() {
	copy(r.bits, scan.UintToBools(uint64(r.word), 32))
}

func (r *idRegister) Shift(in bool) bool {
	out := r.bits[0]
	copy(r.bits, r.bits[1:])
	r.bits[len(r.bits)-1] = in
	return out
}

func (r *idRegister) Update() {}
