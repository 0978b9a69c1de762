package driver

import (
	"errors"
	"testing"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/sibnet"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/tap"
)

const testIDCode = 0x06438041

func demoTopology() sibnet.Topology {
	return sibnet.Topology{
		Name: "demo",
		Nodes: []sibnet.Node{
			sibnet.SIB("sib0", sibnet.Instrument("instr0", 4)),
			sibnet.SIB("sib1", sibnet.Instrument("instr1", 8)),
		},
	}
}

func newTestHost(t *testing.T) (*Host, *device.Device) {
	t.Helper()
	dev, err := device.New(device.Config{
		IDCode:   testIDCode,
		Topology: demoTopology(),
	})
	if err != nil {
		t.Fatalf("device.New returned error: %v", err)
	}
	h, err := New(dev, demoTopology())
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return h, dev
}

func TestReadIDCode(t *testing.T) {
	h, _ := newTestHost(t)

	got, err := h.ReadIDCode()
	if err != nil {
		t.Fatalf("ReadIDCode returned error: %v", err)
	}
	if got != testIDCode {
		t.Fatalf("ReadIDCode() = %#08x, want %#08x", got, testIDCode)
	}
	if h.State() != tap.StateRunTestIdle {
		t.Fatalf("host parked in %s, want RunTestIdle", h.State())
	}
}

func TestScanDRValidatesLength(t *testing.T) {
	h, _ := newTestHost(t)

	if err := h.ScanIR(device.OpScanNet); err != nil {
		t.Fatalf("ScanIR returned error: %v", err)
	}
	_, err := h.ScanDR(make([]bool, 5))
	if !errors.Is(err, scan.ErrLengthMismatch) {
		t.Fatalf("ScanDR with wrong length = %v, want ErrLengthMismatch", err)
	}

	// The raw variant goes through and the device flags the hazard.
	if _, err := h.ScanDRRaw(make([]bool, 5)); err != nil {
		t.Fatalf("ScanDRRaw returned error: %v", err)
	}
}

func TestSetSIBTracksNetworkLength(t *testing.T) {
	h, dev := newTestHost(t)

	if got := h.NetworkLength(); got != 2 {
		t.Fatalf("NetworkLength() = %d, want 2", got)
	}

	if err := h.SetSIB("sib0", true); err != nil {
		t.Fatalf("SetSIB returned error: %v", err)
	}
	if got := h.NetworkLength(); got != 6 {
		t.Fatalf("NetworkLength() after open = %d, want 6", got)
	}
	// Host model and device agree.
	if got := dev.Network().EffectiveLength(); got != 6 {
		t.Fatalf("device length = %d, want 6", got)
	}
	if !h.SIBStates()["sib0"] || h.SIBStates()["sib1"] {
		t.Fatalf("SIBStates() = %v, want only sib0 open", h.SIBStates())
	}

	// Close it again; length shrinks by the downstream 4 bits.
	if err := h.SetSIB("sib0", false); err != nil {
		t.Fatalf("SetSIB close returned error: %v", err)
	}
	if got := h.NetworkLength(); got != 2 {
		t.Fatalf("NetworkLength() after close = %d, want 2", got)
	}
}

func TestSetSIBErrors(t *testing.T) {
	h, _ := newTestHost(t)

	if err := h.SetSIB("nope", true); !errors.Is(err, ErrUnknownSIB) {
		t.Fatalf("SetSIB(nope) = %v, want ErrUnknownSIB", err)
	}

	// A SIB nested in a closed segment is off the scan path.
	nested := sibnet.Topology{
		Name: "nested",
		Nodes: []sibnet.Node{
			sibnet.SIB("outer", sibnet.SIB("inner", sibnet.Instrument("a", 2))),
		},
	}
	dev, err := device.New(device.Config{IDCode: testIDCode, Topology: nested})
	if err != nil {
		t.Fatalf("device.New returned error: %v", err)
	}
	hn, err := New(dev, nested)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := hn.SetSIB("inner", true); err == nil {
		t.Fatalf("SetSIB on unreachable sib succeeded, want error")
	}
	if err := hn.SetSIB("outer", true); err != nil {
		t.Fatalf("SetSIB(outer) returned error: %v", err)
	}
	if err := hn.SetSIB("inner", true); err != nil {
		t.Fatalf("SetSIB(inner) after opening outer returned error: %v", err)
	}
	if got := hn.NetworkLength(); got != 4 {
		t.Fatalf("NetworkLength() = %d, want 4", got)
	}
}

func TestCaptureNetworkPreservesState(t *testing.T) {
	h, dev := newTestHost(t)

	if err := h.SetSIB("sib1", true); err != nil {
		t.Fatalf("SetSIB returned error: %v", err)
	}

	out, err := h.CaptureNetwork()
	if err != nil {
		t.Fatalf("CaptureNetwork returned error: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("captured %d bits, want 10", len(out))
	}
	if out[0] || !out[1] {
		t.Fatalf("control bits = %v/%v, want sib0 closed, sib1 open", out[0], out[1])
	}

	// The write-back left committed state untouched.
	if got := dev.Network().EffectiveLength(); got != 10 {
		t.Fatalf("device length after capture = %d, want 10", got)
	}
	if states := dev.Network().SIBStates(); states["sib0"] || !states["sib1"] {
		t.Fatalf("device SIB states changed: %v", states)
	}
}

// After the host issues an update it re-derives the length instead of
// trusting the value read before the update.
func TestStaleLengthRecovery(t *testing.T) {
	h, _ := newTestHost(t)

	before := h.NetworkLength()
	if err := h.SetSIB("sib1", true); err != nil {
		t.Fatalf("SetSIB returned error: %v", err)
	}
	after := h.NetworkLength()
	if before != 2 || after != 10 {
		t.Fatalf("lengths = %d -> %d, want 2 -> 10", before, after)
	}

	// A scan sized by the stale length is rejected up front.
	if err := h.ScanIR(device.OpScanNet); err != nil {
		t.Fatalf("ScanIR returned error: %v", err)
	}
	_, err := h.ScanDR(make([]bool, before))
	if !errors.Is(err, scan.ErrLengthMismatch) {
		t.Fatalf("stale-length scan = %v, want ErrLengthMismatch", err)
	}
	if !errors.Is(err, sibnet.ErrStaleTopology) {
		t.Fatalf("stale-length scan = %v, want ErrStaleTopology", err)
	}
	// The correctly re-derived length goes through.
	if _, err := h.ScanDR(h.modelImage()); err != nil {
		t.Fatalf("re-derived scan returned error: %v", err)
	}
}
