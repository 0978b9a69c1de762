package boundary

import "testing"

func TestNewRejectsBadPinCounts(t *testing.T) {
	if _, err := New(0, 4); err == nil {
		t.Fatalf("New(0, 4) succeeded, want error")
	}
	if _, err := New(4, -1); err == nil {
		t.Fatalf("New(4, -1) succeeded, want error")
	}
}

func TestCaptureShiftObservesPins(t *testing.T) {
	c, err := New(3, 2)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if c.Length() != 5 {
		t.Fatalf("Length() = %d, want 5", c.Length())
	}

	c.SetInputs([]bool{true, false, true})
	c.SetFunctionalOutputs([]bool{false, true})
	c.Capture()

	want := []bool{true, false, true, false, true}
	for i, w := range want {
		if got := c.Shift(false); got != w {
			t.Fatalf("shifted bit %d = %v, want %v", i, got, w)
		}
	}
}

func TestUpdateCommitsOnlyOutputCells(t *testing.T) {
	c, err := New(2, 3)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	// Shift a full vector in: input cells {1,0}, output cells {1,1,0}.
	for _, bit := range []bool{true, false, true, true, false} {
		c.Shift(bit)
	}
	c.Update()

	got := c.DrivenOutputs()
	want := []bool{true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("driven output %d = %v, want %v", i, got[i], want[i])
		}
	}

	// Committed drivers must survive a later capture of different pin levels.
	c.SetInputs([]bool{false, false})
	c.SetFunctionalOutputs([]bool{false, false, true})
	c.Capture()
	got = c.DrivenOutputs()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("driven output %d changed on capture: %v, want %v", i, got[i], want[i])
		}
	}
}
