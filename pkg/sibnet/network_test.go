package sibnet

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
)

func twoSIBTopology() Topology {
	return Topology{
		Name: "demo",
		Nodes: []Node{
			SIB("sib0", Instrument("instr0", 4)),
			SIB("sib1", Instrument("instr1", 8)),
		},
	}
}

// scanOnce performs one full capture/shift/update pass and returns the bits
// that came out.
func scanOnce(n *Network, in []bool) []bool {
	n.Capture()
	out := make([]bool, len(in))
	for i, bit := range in {
		out[i] = n.Shift(bit)
	}
	n.Update()
	return out
}

func TestValidateRejectsBadTopologies(t *testing.T) {
	cases := []struct {
		name string
		topo Topology
	}{
		{"duplicate names", Topology{Nodes: []Node{Instrument("x", 4), Instrument("x", 4)}}},
		{"zero width instrument", Topology{Nodes: []Node{Instrument("x", 0)}}},
		{"sib with width", Topology{Nodes: []Node{{Name: "s", Kind: KindSIB, Width: 3}}}},
		{"instrument with segment", Topology{Nodes: []Node{{Name: "x", Kind: KindInstrument, Width: 2, Segment: []Node{Instrument("y", 1)}}}}},
		{"empty name", Topology{Nodes: []Node{Instrument("", 4)}}},
	}
	for _, tc := range cases {
		if _, err := New(tc.topo); err == nil {
			t.Fatalf("%s: New succeeded, want error", tc.name)
		}
	}
}

// The concrete scenario from the acceptance list: two closed SIBs gate a
// 4-bit and an 8-bit instrument. Opening SIB0 grows the path from 2 to 6 on
// the next scan; SIB1's instrument must never appear.
func TestOpeningSIBExtendsNextScan(t *testing.T) {
	n, err := New(twoSIBTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := n.EffectiveLength(); got != 2 {
		t.Fatalf("initial EffectiveLength() = %d, want 2", got)
	}

	// Scan 1: open sib0. Control bits come back as captured (both closed).
	out := scanOnce(n, []bool{true, false})
	if out[0] || out[1] {
		t.Fatalf("captured control bits = %v, want both closed", out)
	}

	if got := n.EffectiveLength(); got != 6 {
		t.Fatalf("EffectiveLength() after opening sib0 = %d, want 6", got)
	}

	// Scan 2: path is {sib0, instr0[0..3], sib1}. Keep sib0 open and write
	// a pattern into the instrument.
	in := []bool{true, true, false, true, true, false}
	out = scanOnce(n, in)
	if !out[0] {
		t.Fatalf("sib0 control bit captured closed, want open")
	}
	for i := 1; i <= 4; i++ {
		if out[i] {
			t.Fatalf("instr0 bit %d captured = true, want latched zero", i-1)
		}
	}
	if out[5] {
		t.Fatalf("sib1 control bit captured open, want closed")
	}

	// Scan 3: the instrument write landed; sib1 still contributes one bit.
	out = scanOnce(n, make([]bool, 6))
	want := []bool{true, true, false, true, true, false}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("scan 3 bit %d = %v, want %v", i, out[i], want[i])
		}
	}
}

// Closing a SIB whose downstream segment has length L shrinks the effective
// length by exactly L starting the next scan, and closing twice changes
// nothing further.
func TestClosingSIBIsIdempotent(t *testing.T) {
	n, err := New(twoSIBTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// Open both SIBs: 1+4 + 1+8 = 14.
	scanOnce(n, []bool{true, true})
	if got := n.EffectiveLength(); got != 14 {
		t.Fatalf("EffectiveLength() with both open = %d, want 14", got)
	}

	// Close sib1 (downstream length 8): 14 - 8 = 6.
	// Path order: sib0, instr0 x4, sib1, instr1 x8.
	in := make([]bool, 14)
	in[0] = true // keep sib0 open
	scanOnce(n, in)
	if got := n.EffectiveLength(); got != 6 {
		t.Fatalf("EffectiveLength() after closing sib1 = %d, want 6", got)
	}

	// Close sib1 again; already closed, so nothing changes.
	in = make([]bool, 6)
	in[0] = true
	scanOnce(n, in)
	if got := n.EffectiveLength(); got != 6 {
		t.Fatalf("EffectiveLength() after redundant close = %d, want 6", got)
	}
}

// A closed SIB's downstream contents are not shifted and not observable.
func TestClosedSegmentIsExcludedFromScan(t *testing.T) {
	n, err := New(twoSIBTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// Open sib1, write a pattern into instr1, then close sib1 again.
	scanOnce(n, []bool{false, true})
	in := make([]bool, 10) // sib0, sib1, instr1 x8
	in[1] = true
	copy(in[2:], []bool{true, false, true, true, false, true, true, true})
	scanOnce(n, in)

	in = make([]bool, 10)
	in[1] = false // close sib1, keep instrument contents
	copy(in[2:], []bool{true, false, true, true, false, true, true, true})
	scanOnce(n, in)

	if got := n.EffectiveLength(); got != 2 {
		t.Fatalf("EffectiveLength() = %d, want 2", got)
	}

	// The 2-bit scan must see only the two control bits.
	out := scanOnce(n, make([]bool, 2))
	if out[0] || out[1] {
		t.Fatalf("control bits = %v, want both closed", out)
	}

	// Re-opening reveals the preserved instrument contents.
	scanOnce(n, []bool{false, true})
	out = scanOnce(n, make([]bool, 10))
	want := []bool{true, false, true, true, false, true, true, true}
	for i, w := range want {
		if out[2+i] != w {
			t.Fatalf("instr1 bit %d = %v after reopen, want %v", i, out[2+i], w)
		}
	}
}

func TestNestedSegments(t *testing.T) {
	topo := Topology{
		Name: "nested",
		Nodes: []Node{
			SIB("outer",
				Instrument("a", 2),
				SIB("inner", Instrument("b", 3)),
			),
		},
	}
	n, err := New(topo)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if got := n.EffectiveLength(); got != 1 {
		t.Fatalf("closed length = %d, want 1", got)
	}

	// Open outer: outer + a(2) + inner = 4.
	scanOnce(n, []bool{true})
	if got := n.EffectiveLength(); got != 4 {
		t.Fatalf("outer open length = %d, want 4", got)
	}

	// Open inner as well: + b(3) = 7.
	scanOnce(n, []bool{true, false, false, true})
	if got := n.EffectiveLength(); got != 7 {
		t.Fatalf("both open length = %d, want 7", got)
	}

	// Closing outer hides the whole subtree, inner state included.
	scanOnce(n, make([]bool, 7))
	if got := n.EffectiveLength(); got != 1 {
		t.Fatalf("closed again length = %d, want 1", got)
	}
}

func TestBindReplacesLatch(t *testing.T) {
	n, err := New(twoSIBTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := n.Bind("instr0", scan.NewLatch(5)); err == nil {
		t.Fatalf("Bind with wrong width succeeded, want error")
	}
	if err := n.Bind("sib0", scan.NewLatch(1)); err == nil {
		t.Fatalf("Bind on a SIB succeeded, want error")
	}
	if err := n.Bind("nope", scan.NewLatch(4)); err == nil {
		t.Fatalf("Bind on unknown node succeeded, want error")
	}

	live := scan.NewLatch(4)
	live.ApplyUpdate([]bool{true, true, false, true})
	if err := n.Bind("instr0", live); err != nil {
		t.Fatalf("Bind returned error: %v", err)
	}

	scanOnce(n, []bool{true, false})
	out := scanOnce(n, make([]bool, 6))
	want := []bool{true, true, true, false, true, false}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("bit %d = %v, want %v", i, out[i], w)
		}
	}
}

func TestAbortDiscardsPartialScan(t *testing.T) {
	n, err := New(twoSIBTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	n.Capture()
	n.Shift(true)
	n.Abort()
	n.Update()

	if states := n.SIBStates(); states["sib0"] || states["sib1"] {
		t.Fatalf("aborted scan committed SIB state: %v", states)
	}
	if got := n.EffectiveLength(); got != 2 {
		t.Fatalf("EffectiveLength() after abort = %d, want 2", got)
	}
}
