package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/OpenTraceLab/OpenTraceDFT/pkg/device"
	"github.com/OpenTraceLab/OpenTraceDFT/pkg/tap"
)

func TestSinkEmitsTickEvents(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	sink := NewSink(log)

	sink.Trace(device.Trace{
		Tick:     7,
		State:    tap.StateShiftDR,
		Register: "IDCODE",
		Phase:    device.PhaseShift,
		TDI:      true,
		TDO:      true,
	})

	out := buf.String()
	for _, want := range []string{`"tick":7`, `"phase":"shift"`, `"register":"IDCODE"`, `"tdi":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("event missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "unreliable") {
		t.Errorf("unreliable should be omitted when false: %s", out)
	}
}

func TestSinkShiftsOnlyFiltersIdleTicks(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(zerolog.New(&buf))
	sink.ShiftsOnly = true

	sink.Trace(device.Trace{Tick: 1, State: tap.StateRunTestIdle, Phase: device.PhaseNone})
	if buf.Len() != 0 {
		t.Fatalf("idle tick should be suppressed, got %s", buf.String())
	}
	sink.Trace(device.Trace{Tick: 2, State: tap.StateCaptureDR, Phase: device.PhaseCapture})
	if buf.Len() == 0 {
		t.Fatal("capture tick should be logged")
	}
}

func TestSinkMarksUnreliableCaptures(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSink(zerolog.New(&buf))

	sink.Trace(device.Trace{
		Tick:       3,
		State:      tap.StateCaptureDR,
		Phase:      device.PhaseCapture,
		Unreliable: true,
	})
	if !strings.Contains(buf.String(), `"unreliable":true`) {
		t.Errorf("unreliable flag not logged: %s", buf.String())
	}
}
