// Package detect implements the Input-Detection Service (spec.md §4.7): a
// short-lived listener used by the UI to ask "what did the user just
// press?" It subscribes to internal/poller's event stream, establishes a
// per-axis baseline over a warmup-then-sample window so already-held
// buttons and already-deflected axes don't self-trigger, then reports the
// first qualifying button edge, axis deflection, or off-center hat.
//
// The capture/baseline/timeout shape is grounded on
// other_examples/dcd2330d_serty2005-clipQueue__platform-windows-input_listener.go.go's
// StartCapture/WaitForCapture(timeout)/captureChan, adapted from a raw
// Windows hook source to internal/poller's Sample stream, and extended
// with the statistical baseline spec.md §4.7 requires.
package detect

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/mazzeestudio/asteriq/internal/mapping"
	"github.com/mazzeestudio/asteriq/internal/poller"
)

// Filter selects which input classes a detection call considers.
type Filter int

const (
	FilterButtons Filter = iota
	FilterAxes
	FilterHats
)

const (
	warmupSamples      = 3
	baselineSamples    = 15
	axisDeflectionFrac = 0.70
	confirmingSamples  = 3
	// highVarianceStdDev marks an axis as "high-variance": the baseline
	// uses its instantaneous value rather than the mean, per spec.md §4.7.
	highVarianceStdDev = 0.05
)

// DetectedInput is the result of a successful wait_for_input call.
type DetectedInput struct {
	Source mapping.InputSource
	Value  float64 // axis value or hat degrees at the moment of detection; unused for buttons
}

// ErrDetectionBusy is returned when a detection is already in flight.
var ErrDetectionBusy = errors.New("detect: a detection is already in flight")

type axisBaseline struct {
	mean         float64
	sumSq        float64 // sum of squares over the baseline window, for stddev
	last         float64 // most recent raw value seen during the baseline window
	highVariance bool
	confirming   int // consecutive samples past threshold, reset on drop-out
}

// Service is the Input-Detection Service. New returns an independent
// instance; each instance admits one in-flight detection at a time.
type Service struct {
	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
}

func New() *Service { return &Service{} }

// WaitForInput blocks until a qualifying input is detected, timeout
// elapses (returns nil, nil), or ctx is canceled (returns nil, nil per
// spec.md §4.7's "cancellation is immediate ... returns null"). Only one
// call may be in flight at a time; a second concurrent call returns
// ErrDetectionBusy immediately.
func (s *Service) WaitForInput(ctx context.Context, events <-chan poller.Event, timeout time.Duration, filter Filter) (*DetectedInput, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrDetectionBusy
	}
	s.busy = true
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}()

	baselineButtons := make(map[string][]bool)
	baselineHats := make(map[string][]int)
	baselineAxes := make(map[string][]axisBaseline)
	samplesSeen := make(map[string]int)

	for {
		select {
		case <-callCtx.Done():
			return nil, nil
		case ev, ok := <-events:
			if !ok {
				return nil, nil
			}
			if ev.Kind != poller.EventInputReceived {
				continue
			}

			device := ev.Sample.DeviceID
			n := samplesSeen[device]
			samplesSeen[device] = n + 1

			if n < warmupSamples {
				continue // discard warmup samples
			}
			if n < warmupSamples+baselineSamples {
				accumulateBaseline(ev.Sample, baselineButtons, baselineHats, baselineAxes)
				continue
			}
			if n == warmupSamples+baselineSamples {
				finalizeBaseline(device, baselineAxes)
			}

			if found := evaluate(device, ev.Sample, filter, baselineButtons, baselineHats, baselineAxes); found != nil {
				return found, nil
			}
		}
	}
}

// Cancel unblocks any in-flight WaitForInput call, which then returns
// (nil, nil).
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func accumulateBaseline(s poller.Sample, buttons map[string][]bool, hats map[string][]int, axes map[string][]axisBaseline) {
	device := s.DeviceID
	if _, ok := buttons[device]; !ok {
		buttons[device] = append([]bool(nil), s.Buttons...)
		hats[device] = append([]int(nil), s.Hats...)
		axes[device] = make([]axisBaseline, len(s.Axes))
	}
	bl := axes[device]
	for i, v := range s.Axes {
		if i >= len(bl) {
			break
		}
		bl[i].mean += v / float64(baselineSamples)
		bl[i].sumSq += v * v / float64(baselineSamples)
		bl[i].last = v
	}
}

// finalizeBaseline computes each axis's baseline standard deviation from
// the accumulated mean and sum-of-squares, and flags axes whose stddev
// exceeds highVarianceStdDev. A flagged axis's "last" raw sample becomes
// its reference point in evaluate instead of its mean, per spec.md §4.7's
// "high-variance axes use instantaneous value instead of mean."
func finalizeBaseline(device string, axes map[string][]axisBaseline) {
	bl := axes[device]
	for i := range bl {
		variance := bl[i].sumSq - bl[i].mean*bl[i].mean
		if variance < 0 {
			variance = 0
		}
		stddev := math.Sqrt(variance)
		bl[i].highVariance = stddev > highVarianceStdDev
	}
}

func evaluate(device string, s poller.Sample, filter Filter,
	baseButtons map[string][]bool, baseHats map[string][]int, baseAxes map[string][]axisBaseline) *DetectedInput {

	switch filter {
	case FilterButtons:
		base := baseButtons[device]
		for i, pressed := range s.Buttons {
			wasHeld := i < len(base) && base[i]
			if pressed && !wasHeld {
				return &DetectedInput{Source: mapping.InputSource{DeviceID: device, Kind: mapping.KindButton, Index: i}, Value: 1}
			}
		}

	case FilterHats:
		base := baseHats[device]
		for i, deg := range s.Hats {
			baseDeg := -1
			if i < len(base) {
				baseDeg = base[i]
			}
			if deg >= 0 && deg != baseDeg {
				return &DetectedInput{Source: mapping.InputSource{DeviceID: device, Kind: mapping.KindHat, Index: i}, Value: float64(deg)}
			}
		}

	case FilterAxes:
		bl := baseAxes[device]
		for i, v := range s.Axes {
			if i >= len(bl) {
				continue
			}
			reference := bl[i].mean
			if bl[i].highVariance {
				reference = bl[i].last
			}
			deflection := v - reference
			if abs(deflection) >= axisDeflectionFrac {
				bl[i].confirming++
				if bl[i].confirming >= confirmingSamples {
					return &DetectedInput{Source: mapping.InputSource{DeviceID: device, Kind: mapping.KindAxis, Index: i}, Value: v}
				}
			} else {
				bl[i].confirming = 0
			}
		}
	}
	return nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
