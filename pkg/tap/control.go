package tap

// Control is the Moore-machine output vector of the TAP controller. Every
// field is a pure function of the current state; TMS never feeds into it.
// At most one of Capture/Shift/Update is asserted per branch per state.
type Control struct {
	SelectIR bool
	SelectDR bool

	CaptureIR bool
	ShiftIR   bool
	UpdateIR  bool

	CaptureDR bool
	ShiftDR   bool
	UpdateDR  bool
}

// Signals returns the control vector for a state. The capture, shift and
// update strobes are mutually exclusive by construction, so register logic
// downstream never has to arbitrate between phases within one tick.
func Signals(s State) Control {
	var c Control

	switch s {
	case StateSelectDRScan, StateCaptureDR, StateShiftDR, StateExit1DR,
		StatePauseDR, StateExit2DR, StateUpdateDR:
		c.SelectDR = true
	case StateSelectIRScan, StateCaptureIR, StateShiftIR, StateExit1IR,
		StatePauseIR, StateExit2IR, StateUpdateIR:
		c.SelectIR = true
	}

	switch s {
	case StateCaptureDR:
		c.CaptureDR = true
	case StateShiftDR:
		c.ShiftDR = true
	case StateUpdateDR:
		c.UpdateDR = true
	case StateCaptureIR:
		c.CaptureIR = true
	case StateShiftIR:
		c.ShiftIR = true
	case StateUpdateIR:
		c.UpdateIR = true
	}

	return c
}
