// Package poller implements the Input Poller (spec.md §4.2): a dedicated
// worker that drives physical devices at a fixed rate and emits
// change-filtered Samples.
//
// The run loop is backend/internal/gamepad/reader.go's Run loop
// (processEvents/pollState/sdl.DelayNS, generalized from a fixed ~60Hz
// delay to a configurable rate with measured-remainder sleeping), and the
// emitState/changes-channel fan-out is reader.go's emitState/changes
// channel, generalized from one fixed-shape GamepadState to the slice-based
// Sample.
package poller

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/mazzeestudio/asteriq/internal/registry"
)

const (
	DefaultRateHz   = 500
	changeBufferLen = 256
)

var defaultLogger = log.New(os.Stderr, "poller: ", log.LstdFlags)

// Event is one of the three notifications spec.md §4.2 describes:
// input_received, device_connected, device_disconnected.
type Event struct {
	Kind EventKind
	Sample
	Device *registry.PhysicalDevice
}

type EventKind int

const (
	EventInputReceived EventKind = iota
	EventDeviceConnected
	EventDeviceDisconnected
)

// Poller drives every opened device on one dedicated worker goroutine and
// publishes a single fan-out channel of Events.
type Poller struct {
	backend  Backend
	registry *registry.Registry
	rateHz   int
	onlyFireOnChange bool

	mu      sync.RWMutex
	last    map[string]Sample // instancePath -> last emitted sample, for get_device_state
	opened  map[string]bool

	events chan Event
	logger *log.Logger

	stopOnce sync.Once
	stopped  chan struct{}
}

// New constructs a Poller. rateHz of 0 uses DefaultRateHz.
func New(backend Backend, reg *registry.Registry, rateHz int, onlyFireOnChange bool) *Poller {
	if rateHz <= 0 {
		rateHz = DefaultRateHz
	}
	return &Poller{
		backend:          backend,
		registry:         reg,
		rateHz:           rateHz,
		onlyFireOnChange: onlyFireOnChange,
		last:             make(map[string]Sample),
		opened:           make(map[string]bool),
		events:           make(chan Event, changeBufferLen),
		logger:           defaultLogger,
		stopped:          make(chan struct{}),
	}
}

// Events returns the channel on which all poller notifications are sent.
func (p *Poller) Events() <-chan Event { return p.events }

// GetDeviceState returns a snapshot of the last emitted sample for a device,
// or false if none has been emitted yet.
func (p *Poller) GetDeviceState(instancePath string) (Sample, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.last[instancePath]
	return s.Clone(), ok
}

// Start runs the poll loop on a dedicated goroutine until ctx is canceled.
// It measures each tick's duration and sleeps for the
// remainder, rather than a fixed interval, per spec.md §4.2.
func (p *Poller) Start(ctx context.Context) {
	if err := p.backend.Init(); err != nil {
		p.logger.Printf("backend init failed: %v", err)
		return
	}
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer p.backend.Shutdown()
	defer close(p.stopped)

	interval := time.Second / time.Duration(p.rateHz)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		tickStart := time.Now()

		p.reconcileDevices()
		p.pollOpenDevices()

		elapsed := time.Since(tickStart)
		remaining := interval - elapsed
		if remaining > 0 {
			select {
			case <-time.After(remaining):
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop blocks until the poll loop has observed cancellation and exited. It
// is the caller's responsibility to have canceled the context passed to
// Start; Stop only waits.
func (p *Poller) Stop() {
	<-p.stopped
}

func (p *Poller) reconcileDevices() {
	candidates, err := p.backend.Enumerate()
	if err != nil {
		p.logger.Printf("enumerate failed: %v", err)
		return
	}
	devices := p.registry.Reconcile(candidates)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range devices {
		if d.Connected && !p.opened[d.InstancePath] {
			if err := p.backend.Open(d.InstancePath); err != nil {
				p.logger.Printf("open %s failed: %v", d.InstancePath, err)
				continue
			}
			p.opened[d.InstancePath] = true
			p.emit(Event{Kind: EventDeviceConnected, Device: d})
		} else if !d.Connected && p.opened[d.InstancePath] {
			p.backend.Close(d.InstancePath)
			delete(p.opened, d.InstancePath)
			p.emit(Event{Kind: EventDeviceDisconnected, Device: d})
		}
	}
}

func (p *Poller) pollOpenDevices() {
	p.mu.Lock()
	paths := make([]string, 0, len(p.opened))
	for path := range p.opened {
		paths = append(paths, path)
	}
	p.mu.Unlock()

	ids := make(map[string]string, len(paths))
	for _, d := range p.registry.Enumerate() {
		if d.Connected {
			ids[d.InstancePath] = d.ID.String()
		}
	}

	for _, path := range paths {
		sample, ok := p.backend.Read(path)
		if !ok {
			continue
		}
		sample.DeviceID = ids[path]
		if sample.DeviceID == "" {
			sample.DeviceID = path
		}
		sample.Timestamp = time.Now()

		p.mu.Lock()
		prev, hadPrev := p.last[path]
		suppress := p.onlyFireOnChange && hadPrev && !changed(prev, sample)
		p.last[path] = sample
		p.mu.Unlock()

		if !suppress {
			p.emit(Event{Kind: EventInputReceived, Sample: sample})
		}
	}
}

func (p *Poller) emit(e Event) {
	select {
	case p.events <- e:
	default:
		// Drop rather than block the poll loop (spec.md §5: the poller's
		// sleep-to-next-tick is the only suspension point; a full
		// subscriber channel must never stall sampling).
	}
}
