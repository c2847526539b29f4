package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mazzeestudio/asteriq/internal/registry"
)

type fakeBackend struct {
	mu         sync.Mutex
	candidates []registry.CandidatePath
	opened     map[string]bool
	samples    map[string]Sample
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{opened: make(map[string]bool), samples: make(map[string]Sample)}
}

func (b *fakeBackend) Init() error    { return nil }
func (b *fakeBackend) Shutdown()      {}
func (b *fakeBackend) Enumerate() ([]registry.CandidatePath, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]registry.CandidatePath(nil), b.candidates...), nil
}
func (b *fakeBackend) Open(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened[path] = true
	return nil
}
func (b *fakeBackend) Close(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.opened, path)
}
func (b *fakeBackend) Read(path string) (Sample, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.samples[path]
	return s, ok
}

func (b *fakeBackend) setCandidates(c []registry.CandidatePath) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.candidates = c
}

func (b *fakeBackend) setSample(path string, s Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples[path] = s
}

func waitForEvent(t *testing.T, events <-chan Event, kind EventKind) Event {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case e := <-events:
			if e.Kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %v", kind)
		}
	}
}

func TestPollerEmitsConnectThenInput(t *testing.T) {
	backend := newFakeBackend()
	reg := registry.New()
	p := New(backend, reg, 1000, false)

	backend.setCandidates([]registry.CandidatePath{{VendorProduct: "1234:5678", InstancePath: "path1", DisplayName: "Stick"}})
	backend.setSample("path1", Sample{Axes: []float64{0.5}, Buttons: []bool{true}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	connected := waitForEvent(t, p.Events(), EventDeviceConnected)
	if connected.Device == nil || connected.Device.InstancePath != "path1" {
		t.Fatalf("got %+v", connected.Device)
	}

	input := waitForEvent(t, p.Events(), EventInputReceived)
	if len(input.Sample.Axes) != 1 || input.Sample.Axes[0] != 0.5 {
		t.Fatalf("got %+v", input.Sample)
	}

	cancel()
	p.Stop()
}

func TestPollerSuppressesUnchangedSamplesWhenOnlyOnChange(t *testing.T) {
	backend := newFakeBackend()
	reg := registry.New()
	p := New(backend, reg, 2000, true)

	backend.setCandidates([]registry.CandidatePath{{VendorProduct: "a:b", InstancePath: "path1"}})
	backend.setSample("path1", Sample{Axes: []float64{0.1}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	waitForEvent(t, p.Events(), EventDeviceConnected)
	waitForEvent(t, p.Events(), EventInputReceived)

	// Unchanged sample: no further input_received events should arrive
	// within a short window.
	select {
	case e := <-p.Events():
		if e.Kind == EventInputReceived {
			t.Fatalf("expected no further input events for an unchanged sample, got %+v", e.Sample)
		}
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	p.Stop()
}

func TestPollerEmitsDisconnectWhenDeviceDisappears(t *testing.T) {
	backend := newFakeBackend()
	reg := registry.New()
	p := New(backend, reg, 1000, false)

	backend.setCandidates([]registry.CandidatePath{{VendorProduct: "a:b", InstancePath: "path1"}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	waitForEvent(t, p.Events(), EventDeviceConnected)

	backend.setCandidates(nil)
	disconnected := waitForEvent(t, p.Events(), EventDeviceDisconnected)
	if disconnected.Device == nil || disconnected.Device.InstancePath != "path1" {
		t.Fatalf("got %+v", disconnected.Device)
	}

	cancel()
	p.Stop()
}
