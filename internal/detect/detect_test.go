package detect

import (
	"context"
	"testing"
	"time"

	"github.com/mazzeestudio/asteriq/internal/mapping"
	"github.com/mazzeestudio/asteriq/internal/poller"
)

func send(ch chan poller.Event, s poller.Sample) {
	ch <- poller.Event{Kind: poller.EventInputReceived, Sample: s}
}

func TestWaitForInputDetectsButtonPressEdge(t *testing.T) {
	svc := New()
	events := make(chan poller.Event, 64)

	go func() {
		// warmup (3) + baseline (15), button never pressed.
		for i := 0; i < warmupSamples+baselineSamples; i++ {
			send(events, poller.Sample{DeviceID: "d", Buttons: []bool{false}})
		}
		send(events, poller.Sample{DeviceID: "d", Buttons: []bool{true}})
	}()

	got, err := svc.WaitForInput(context.Background(), events, 2*time.Second, FilterButtons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a detection, got nil")
	}
	want := mapping.InputSource{DeviceID: "d", Kind: mapping.KindButton, Index: 0}
	if got.Source != want {
		t.Fatalf("got %+v, want source %+v", got, want)
	}
}

func TestWaitForInputIgnoresAlreadyHeldButton(t *testing.T) {
	svc := New()
	events := make(chan poller.Event, 64)

	go func() {
		for i := 0; i < warmupSamples+baselineSamples+5; i++ {
			send(events, poller.Sample{DeviceID: "d", Buttons: []bool{true}}) // held throughout baseline and after
		}
	}()

	got, err := svc.WaitForInput(context.Background(), events, 150*time.Millisecond, FilterButtons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no detection for an already-held button, got %+v", got)
	}
}

func TestWaitForInputBusy(t *testing.T) {
	svc := New()
	events := make(chan poller.Event)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		svc.WaitForInput(ctx, events, time.Second, FilterButtons)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond) // let the first call claim busy

	if _, err := svc.WaitForInput(context.Background(), events, time.Second, FilterButtons); err != ErrDetectionBusy {
		t.Fatalf("expected ErrDetectionBusy, got %v", err)
	}

	cancel()
	<-done
}

func TestWaitForInputCancelReturnsNil(t *testing.T) {
	svc := New()
	events := make(chan poller.Event)

	resultCh := make(chan *DetectedInput, 1)
	go func() {
		got, _ := svc.WaitForInput(context.Background(), events, 5*time.Second, FilterButtons)
		resultCh <- got
	}()

	time.Sleep(20 * time.Millisecond)
	svc.Cancel()

	select {
	case got := <-resultCh:
		if got != nil {
			t.Fatalf("expected nil after cancel, got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("cancel did not unblock WaitForInput")
	}
}

func TestWaitForInputAxisDeflection(t *testing.T) {
	svc := New()
	events := make(chan poller.Event, 64)

	go func() {
		for i := 0; i < warmupSamples+baselineSamples; i++ {
			send(events, poller.Sample{DeviceID: "d", Axes: []float64{0}})
		}
		for i := 0; i < confirmingSamples; i++ {
			send(events, poller.Sample{DeviceID: "d", Axes: []float64{0.9}})
		}
	}()

	got, err := svc.WaitForInput(context.Background(), events, 2*time.Second, FilterAxes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatalf("expected a detection, got nil")
	}
	if got.Source.Kind != mapping.KindAxis || got.Source.Index != 0 {
		t.Fatalf("got %+v, want axis 0", got)
	}
}

// TestWaitForInputHighVarianceAxisUsesInstantaneousBaseline builds a
// baseline that oscillates between -0.9 and 0.9 (mean near zero, stddev far
// past highVarianceStdDev), ending on -0.9. A mean-baselined axis would
// read any post-baseline sample near -0.9 as a ~0.84 deflection and falsely
// detect it; the instantaneous ("last observed") baseline spec.md §4.7
// requires for high-variance axes keeps the reference at -0.9, so holding
// the axis there must not trigger a detection.
func TestWaitForInputHighVarianceAxisUsesInstantaneousBaseline(t *testing.T) {
	svc := New()
	events := make(chan poller.Event, 64)

	go func() {
		for i := 0; i < warmupSamples; i++ {
			send(events, poller.Sample{DeviceID: "d", Axes: []float64{0}})
		}
		for i := 0; i < baselineSamples; i++ {
			v := 0.9
			if i%2 == 0 {
				v = -0.9
			}
			send(events, poller.Sample{DeviceID: "d", Axes: []float64{v}})
		}
		for i := 0; i < confirmingSamples+2; i++ {
			send(events, poller.Sample{DeviceID: "d", Axes: []float64{-0.9}})
		}
	}()

	got, err := svc.WaitForInput(context.Background(), events, 150*time.Millisecond, FilterAxes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no detection once the high-variance axis settles at its last baseline value, got %+v", got)
	}
}
