package mapping

import (
	"fmt"
	"sync"
	"time"

	"github.com/mazzeestudio/asteriq/internal/curve"
	"github.com/mazzeestudio/asteriq/internal/poller"
)

// Engine is the Mapping Engine (spec.md §4.3): it holds the active profile
// and a cache of the latest sample per device, and on every new sample
// re-evaluates every mapping and drives the configured sinks.
//
// The per-sample algorithm is modeled on backend/internal/gamepad/mapping.go's
// MapToXbox360 -- a flat, ordered pass over named fields with no per-input
// dispatch table -- generalized from one fixed Xbox-360 target shape to the
// profile's mapping lists, and from a stateless pass to one carrying the
// button/axis-to-button/button-to-axis runtime state spec.md §4.4.2 and
// §4.3 describe.
type Engine struct {
	mu      sync.Mutex
	profile Profile
	cache   map[string]poller.Sample

	virtual VirtualSink
	keys    KeySink

	now func() time.Time
}

// New constructs an Engine with no profile loaded. Call LoadProfile before
// OnSample.
func New(virtual VirtualSink, keys KeySink) *Engine {
	return &Engine{
		cache:   make(map[string]poller.Sample),
		virtual: virtual,
		keys:    keys,
		now:     time.Now,
	}
}

// LoadProfile validates p, installs it as the active profile, and resets
// all runtime state (toggle latches, hold timers, hysteresis latches,
// smoothing state), per spec.md §4.3's load_profile contract.
func (e *Engine) LoadProfile(p Profile) error {
	if err := Validate(p); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range p.ButtonMappings {
		p.ButtonMappings[i].toggleLatch = false
		p.ButtonMappings[i].pulseActive = false
		p.ButtonMappings[i].wasHeld = false
	}
	for i := range p.AxisToButtonMappings {
		p.AxisToButtonMappings[i].activated = false
	}
	for i := range p.ButtonToAxisMappings {
		p.ButtonToAxisMappings[i].current = 0
		p.ButtonToAxisMappings[i].hasRun = false
		p.ButtonToAxisMappings[i].transitionFrom = 0
		p.ButtonToAxisMappings[i].transitionStart = time.Time{}
	}
	for i := range p.Layers {
		p.Layers[i].active = false
	}

	e.profile = p
	return nil
}

// Start acquires every virtual slot referenced by the active profile's
// mappings, per spec.md §4.3's start contract. initialStates, if non-nil,
// seeds the device cache so the first process() call writes synchronized
// starting values instead of leaving axes at their zero default.
func (e *Engine) Start(initialStates map[string]poller.Sample) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for device, s := range initialStates {
		e.cache[device] = s.Clone()
	}

	if e.virtual == nil {
		return nil
	}
	for slot := range outputSlots(e.profile) {
		if err := e.virtual.Acquire(slot); err != nil {
			return fmt.Errorf("mapping: acquire slot %d: %w", slot, err)
		}
	}
	return nil
}

// Stop releases every virtual slot acquired by Start, resets their axes to
// neutral, releases any held keys, and clears the active profile and
// cached device state, per spec.md §4.3's stop contract.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.virtual != nil {
		for slot := range outputSlots(e.profile) {
			e.virtual.Reset(slot)
			e.virtual.Release(slot)
		}
	}
	if e.keys != nil {
		for _, m := range e.profile.ButtonMappings {
			if m.Output.Kind == OutputKey && m.wasHeld {
				e.keys.KeyUp(m.Output.Key, m.Output.Modifiers)
			}
		}
		if ra, ok := e.keys.(interface{ ReleaseAll() }); ok {
			ra.ReleaseAll()
		}
	}

	e.profile = Profile{}
	e.cache = make(map[string]poller.Sample)
}

// outputSlots collects the distinct virtual slots referenced by any
// mapping's output target.
func outputSlots(p Profile) map[int]bool {
	slots := make(map[int]bool)
	add := func(t OutputTarget) {
		switch t.Kind {
		case OutputVirtualAxis, OutputVirtualButton, OutputVirtualPov:
			slots[t.Slot] = true
		}
	}
	for _, m := range p.AxisMappings {
		add(m.Output)
	}
	for _, m := range p.ButtonMappings {
		add(m.Output)
	}
	for _, m := range p.HatMappings {
		add(m.Output)
	}
	for _, m := range p.AxisToButtonMappings {
		add(m.Output)
	}
	for _, m := range p.ButtonToAxisMappings {
		add(m.Output)
	}
	return slots
}

// OnSample folds a new poller Sample into the device cache and re-evaluates
// the full profile. It is the engine's sole entry point from the poll loop.
func (e *Engine) OnSample(s poller.Sample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cache[s.DeviceID] = s.Clone()
	e.process()
}

func (e *Engine) axisValue(src InputSource) (float64, bool) {
	s, ok := e.cache[src.DeviceID]
	if !ok || src.Kind != KindAxis || src.Index < 0 || src.Index >= len(s.Axes) {
		return 0, false
	}
	return s.Axes[src.Index], true
}

func (e *Engine) buttonValue(src InputSource) (bool, bool) {
	s, ok := e.cache[src.DeviceID]
	if !ok || src.Kind != KindButton || src.Index < 0 || src.Index >= len(s.Buttons) {
		return false, false
	}
	return s.Buttons[src.Index], true
}

func (e *Engine) hatValue(src InputSource) (int, bool) {
	s, ok := e.cache[src.DeviceID]
	if !ok || src.Kind != KindHat || src.Index < 0 || src.Index >= len(s.Hats) {
		return -1, false
	}
	return s.Hats[src.Index], true
}

// layerActive reports whether layerID is the empty base layer, or its
// activator button is currently held. Reads the .active flag process()
// refreshes from this sample's cache before evaluating any mapping, so a
// shift button pressed in the same sample as a shifted mapping's trigger
// is already visible (spec.md §4.3 step 1).
func (e *Engine) layerActive(layerID string) bool {
	if layerID == "" {
		return true
	}
	for i := range e.profile.Layers {
		if e.profile.Layers[i].ID == layerID {
			return e.profile.Layers[i].active
		}
	}
	return false
}

// process implements spec.md §4.3's per-sample evaluation order: shift
// layers, then axis, button, hat, axis-to-button, button-to-axis mappings.
// Caller must hold e.mu.
func (e *Engine) process() {
	for i := range e.profile.Layers {
		pressed, _ := e.buttonValue(e.profile.Layers[i].Activator)
		e.profile.Layers[i].active = pressed
	}

	for i := range e.profile.AxisMappings {
		e.processAxis(&e.profile.AxisMappings[i])
	}
	for i := range e.profile.ButtonMappings {
		e.processButton(&e.profile.ButtonMappings[i])
	}
	for i := range e.profile.HatMappings {
		e.processHat(&e.profile.HatMappings[i])
	}
	for i := range e.profile.AxisToButtonMappings {
		e.processAxisToButton(&e.profile.AxisToButtonMappings[i])
	}
	for i := range e.profile.ButtonToAxisMappings {
		e.processButtonToAxis(&e.profile.ButtonToAxisMappings[i])
	}
}

func (e *Engine) gatherAxes(inputs []InputSource) []float64 {
	vs := make([]float64, 0, len(inputs))
	for _, src := range inputs {
		if v, ok := e.axisValue(src); ok {
			vs = append(vs, v)
		}
	}
	return vs
}

func (e *Engine) gatherButtons(inputs []InputSource) []bool {
	vs := make([]bool, 0, len(inputs))
	for _, src := range inputs {
		if v, ok := e.buttonValue(src); ok {
			vs = append(vs, v)
		}
	}
	return vs
}

func (e *Engine) processAxis(m *AxisMapping) {
	if !m.Enabled || !e.layerActive(m.LayerID) {
		return
	}
	raw, ok := merge64(m.Merge, e.gatherAxes(m.Inputs))
	if !ok {
		return
	}
	if m.Invert {
		raw = -raw
	}
	v := curve.Apply(m.Curve, raw)
	e.emitAxis(m.Output, v)
}

// processButton implements the button mode state machine of spec.md
// §4.4.2: Normal mirrors the merged press state; Toggle flips a latch on
// each rising edge; Pulse fires a fixed-duration press on each rising edge,
// ignoring further edges until it completes; HoldToActivate only reports
// pressed once the button has been continuously held for HoldMs.
func (e *Engine) processButton(m *ButtonMapping) {
	if !m.Enabled || !e.layerActive(m.LayerID) {
		return
	}
	pressed := anyPressed(m.Merge, e.gatherButtons(m.Inputs))
	if m.Invert {
		pressed = !pressed
	}

	now := e.now()

	switch m.Mode {
	case Toggle:
		if pressed && !m.wasHeld {
			m.toggleLatch = !m.toggleLatch
		}
		m.wasHeld = pressed
		e.emitButton(m.Output, m.toggleLatch)

	case Pulse:
		if pressed && !m.wasHeld && !m.pulseActive {
			m.pulseActive = true
			m.pulseStart = now
		}
		if m.pulseActive && now.Sub(m.pulseStart) >= time.Duration(m.PulseMs)*time.Millisecond {
			m.pulseActive = false
		}
		m.wasHeld = pressed
		e.emitButton(m.Output, m.pulseActive)

	case HoldToActivate:
		if pressed && !m.wasHeld {
			m.holdStart = now
		}
		held := pressed && now.Sub(m.holdStart) >= time.Duration(m.HoldMs)*time.Millisecond
		m.wasHeld = pressed
		e.emitButton(m.Output, held)

	default: // Normal
		m.wasHeld = pressed
		e.emitButton(m.Output, pressed)
	}
}

// processHat maps a physical hat's degree reading onto a virtual POV, per
// spec.md §3's HatMapping.Continuous flag: continuous writes the raw angle,
// discrete quantizes to one of N/E/S/W via quadrantOf.
func (e *Engine) processHat(m *HatMapping) {
	if !m.Enabled || !e.layerActive(m.LayerID) || len(m.Inputs) == 0 {
		return
	}
	deg, ok := e.hatValue(m.Inputs[0])
	if !ok {
		return
	}

	if e.virtual == nil || m.Output.Kind != OutputVirtualPov {
		return
	}

	if m.Continuous {
		e.virtual.SetContinuousPov(m.Output.Slot, m.Output.Pov, deg)
		return
	}
	e.virtual.SetDiscretePov(m.Output.Slot, m.Output.Pov, quadrantOf(deg))
}

// quadrantOf implements spec.md §4.3's quadrant encoding: N = [315,360) ∪
// [0,45); E = [45,135); S = [135,225); W = [225,315); neutral (-1) when
// deg < 0. Returns 0=N, 1=E, 2=S, 3=W, -1=neutral.
func quadrantOf(deg int) int {
	switch {
	case deg < 0:
		return -1
	case deg >= 315 || deg < 45:
		return 0
	case deg < 135:
		return 1
	case deg < 225:
		return 2
	default:
		return 3
	}
}

// processAxisToButton implements spec.md §4.4.3's hysteresis: the button
// activates once the axis crosses Threshold in the configured direction,
// and deactivates only once it has retreated past Threshold by Hysteresis,
// preventing chatter from noise sitting near the threshold.
func (e *Engine) processAxisToButton(m *AxisToButtonMapping) {
	if !m.Enabled || !e.layerActive(m.LayerID) {
		return
	}
	v, ok := merge64(m.Merge, e.gatherAxes(m.Inputs))
	if !ok {
		return
	}
	if m.Invert {
		v = -v
	}

	onThresh := m.Threshold
	offThresh := m.Threshold
	if m.ActivateAbove {
		offThresh -= m.Hysteresis
	} else {
		offThresh += m.Hysteresis
	}

	switch {
	case !m.activated && crosses(v, onThresh, m.ActivateAbove):
		m.activated = true
	case m.activated && !crosses(v, offThresh, m.ActivateAbove):
		m.activated = false
	}

	e.emitButton(m.Output, m.activated)
}

func crosses(v, threshold float64, above bool) bool {
	if above {
		return v >= threshold
	}
	return v <= threshold
}

// processButtonToAxis implements spec.md §4.4.4's temporal smoothing as a
// linear time-lerp: on each pressed/released edge it records the value the
// ramp is leaving from and the instant it left, then every sample computes
// current = start + (target-start)*clamp(elapsed/window, 0, 1), reaching
// target exactly at SmoothingMs after the edge rather than asymptotically
// approaching it.
func (e *Engine) processButtonToAxis(m *ButtonToAxisMapping) {
	if !m.Enabled || !e.layerActive(m.LayerID) {
		return
	}
	pressed := anyPressed(m.Merge, e.gatherButtons(m.Inputs))
	if m.Invert {
		pressed = !pressed
	}

	target := m.ReleasedValue
	if pressed {
		target = m.PressedValue
	}

	now := e.now()
	if !m.hasRun {
		m.current = target
		m.target = target
		m.transitionFrom = target
		m.transitionStart = now
		m.hasRun = true
	} else if target != m.target {
		m.target = target
		m.transitionFrom = m.current
		m.transitionStart = now
	}

	if m.SmoothingMs <= 0 {
		m.current = target
	} else {
		elapsed := now.Sub(m.transitionStart)
		step := float64(elapsed) / float64(time.Duration(m.SmoothingMs)*time.Millisecond)
		if step > 1 {
			step = 1
		}
		if step < 0 {
			step = 0
		}
		m.current = m.transitionFrom + (target-m.transitionFrom)*step
	}

	e.emitAxis(m.Output, m.current)
}

func (e *Engine) emitAxis(t OutputTarget, v float64) {
	switch t.Kind {
	case OutputVirtualAxis:
		if e.virtual != nil {
			e.virtual.SetAxis(t.Slot, t.Axis, v)
		}
	case OutputKey:
		e.emitKeyFromLevel(t, v > 0)
	}
}

func (e *Engine) emitButton(t OutputTarget, pressed bool) {
	switch t.Kind {
	case OutputVirtualButton:
		if e.virtual != nil {
			e.virtual.SetButton(t.Slot, t.Button, pressed)
		}
	case OutputKey:
		e.emitKeyFromLevel(t, pressed)
	}
}

func (e *Engine) emitKeyFromLevel(t OutputTarget, pressed bool) {
	if e.keys == nil {
		return
	}
	if pressed {
		e.keys.KeyDown(t.Key, t.Modifiers)
	} else {
		e.keys.KeyUp(t.Key, t.Modifiers)
	}
}

func merge64(op MergeOp, vs []float64) (float64, bool) {
	return Merge(op, vs)
}

// anyPressed reduces a set of boolean inputs the same way Merge reduces
// floats: Min/Sum/Average collapse to AND (all must be pressed), Max
// collapses to OR (any pressed) -- matching spec.md §4.3's merge operator
// semantics applied to a boolean domain.
func anyPressed(op MergeOp, vs []bool) bool {
	if len(vs) == 0 {
		return false
	}
	if op == MergeMax {
		for _, v := range vs {
			if v {
				return true
			}
		}
		return false
	}
	for _, v := range vs {
		if !v {
			return false
		}
	}
	return true
}
