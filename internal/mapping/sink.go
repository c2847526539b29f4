package mapping

// VirtualSink is the output side of the Virtual Device Sink (spec.md §4.5):
// it drives virtual joystick slots. Axis values are in [-1, 1]; each POV
// setter's unit is given on the setter.
type VirtualSink interface {
	Acquire(slot int) error
	Release(slot int)
	Reset(slot int)

	SetAxis(slot, axis int, value float64)
	SetButton(slot, button int, pressed bool)
	// SetContinuousPov writes a raw angle in degrees, or -1 for centered.
	SetContinuousPov(slot, pov int, degrees int)
	// SetDiscretePov writes a quadrant direction: 0=N, 1=E, 2=S, 3=W, -1=neutral.
	SetDiscretePov(slot, pov int, direction int)
}

// KeySink is the output side of the Keystroke Sink (spec.md §4.6).
type KeySink interface {
	KeyDown(key string, modifiers []string)
	KeyUp(key string, modifiers []string)
}
