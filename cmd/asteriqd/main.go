//go:build windows

// Command asteriqd is Asteriq's background service: it enumerates HOTAS
// hardware, applies the active Mapping Profile, drives the acquired vJoy
// slots and synthesized keystrokes, and serves a status page over
// WebSocket. Its startup/shutdown orchestration -- signal handling, the
// Windows console-control-handler re-registration dance, tray-vs-console
// branching, the final multi-channel select -- is backend/main.go's,
// generalized from one gamepad.Reader+hub pair to the full poller,
// registry, mapping engine, and status hub.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mazzeestudio/asteriq/internal/backend/hidbackend"
	"github.com/mazzeestudio/asteriq/internal/backend/sdlbackend"
	"github.com/mazzeestudio/asteriq/internal/config"
	"github.com/mazzeestudio/asteriq/internal/console"
	"github.com/mazzeestudio/asteriq/internal/hide"
	"github.com/mazzeestudio/asteriq/internal/keystroke"
	"github.com/mazzeestudio/asteriq/internal/mapping"
	"github.com/mazzeestudio/asteriq/internal/poller"
	"github.com/mazzeestudio/asteriq/internal/profilestore"
	"github.com/mazzeestudio/asteriq/internal/registry"
	"github.com/mazzeestudio/asteriq/internal/statushub"
	"github.com/mazzeestudio/asteriq/internal/trayicon"
	"github.com/mazzeestudio/asteriq/internal/vjoy"
	"github.com/mazzeestudio/asteriq/internal/xlog"
)

var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	fs := pflag.NewFlagSet("asteriqd", pflag.ContinueOnError)
	config.Flags(fs)
	backendFlag := fs.String("backend", "sdl", "input backend: sdl or hid")
	rateFlag := fs.Int("rate-hz", poller.DefaultRateHz, "poll rate in Hz")
	addrFlag := fs.String("status-addr", "127.0.0.1:8733", "status hub listen address")
	hideCLIFlag := fs.String("hidhide-cli", "", "path to HidHideCLI.exe (empty disables device hiding)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("asteriqd: %v", err)
	}

	baseDir, err := configDir()
	if err != nil {
		log.Fatalf("asteriqd: %v", err)
	}

	cfg, err := config.New(baseDir, fs)
	if err != nil {
		log.Fatalf("asteriqd: %v", err)
	}
	settings := cfg.Get()

	store, err := profilestore.New(filepath.Join(baseDir, "Profiles"))
	if err != nil {
		log.Fatalf("asteriqd: %v", err)
	}

	reg := registry.New()

	var back poller.Backend
	if *backendFlag == "hid" {
		back = hidbackend.New()
	} else {
		back = sdlbackend.New()
	}
	p := poller.New(back, reg, *rateFlag, true)

	if err := vjoy.CheckDriver(); err != nil {
		log.Printf("asteriqd: vJoy driver check failed, virtual output disabled: %v", err)
	}

	var gate *hide.Gate
	if *hideCLIFlag != "" {
		gate = hide.New(*hideCLIFlag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vsink := vjoy.New(func(slot int) {
		reg.MarkBusy(slot, false)
		log.Printf("asteriqd: slot %d lost, flagged for reacquire", slot)
	}, xlog.New("vjoy"))
	ksink := keystroke.New()
	engine := mapping.New(vsink, ksink)

	if settings.AutoLoad && settings.LastUsedProfileID != "" {
		profile, err := store.Load(settings.LastUsedProfileID)
		if err != nil {
			log.Printf("asteriqd: load last-used profile %s: %v", settings.LastUsedProfileID, err)
		} else if err := engine.LoadProfile(profile); err != nil {
			log.Printf("asteriqd: profile %s failed validation: %v", profile.ID, err)
		}
	}
	if err := engine.Start(nil); err != nil {
		log.Printf("asteriqd: engine start: %v", err)
	}

	hub := statushub.NewHub(xlog.New("statushub"))
	go hub.Run()
	updates := make(chan statushub.Snapshot, 8)
	broadcaster := statushub.NewBroadcaster(hub, updates, xlog.New("statushub"))
	go broadcaster.Run()
	srv := statushub.New(hub, broadcaster, nil, *addrFlag, xlog.New("statushub"))

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	go publishStatus(ctx, reg, p, gate, updates)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, shutdownSignals...)

	windowsCtrlCh := make(chan struct{}, 1)
	registerWindowsHandler := console.SetupConsoleHandler(windowsCtrlCh)

	// p.Start blocks on backend.Init() before returning, so the handler
	// re-registration below always runs after SDL's own init has had a
	// chance to reset it (spec.md §9's Windows console-handler note).
	p.Start(ctx)
	registerWindowsHandler()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-ctx.Done():
				p.Stop()
				return
			case e, ok := <-p.Events():
				if !ok {
					return
				}
				switch e.Kind {
				case poller.EventInputReceived:
					engine.OnSample(e.Sample)
				case poller.EventDeviceConnected:
					if gate != nil {
						_ = gate.Hide(ctx, e.Device.InstancePath)
					}
				}
			}
		}
	}()

	shutdownRequested := make(chan struct{})
	consoleMode := console.IsRunningFromConsole()
	if runtime.GOOS == "windows" && !consoleMode {
		go func() {
			t := trayicon.New(func() {
				select {
				case <-shutdownRequested:
				default:
					close(shutdownRequested)
				}
			}, *addrFlag, xlog.New("tray"))
			t.Run(nil, initialSlotSummaries(reg))
		}()
	} else {
		log.Println("asteriqd: running in console mode, press Ctrl+C to exit")
	}

	log.Printf("asteriqd: status hub listening on http://%s", *addrFlag)

	select {
	case <-sigCh:
		log.Println("asteriqd: shutting down")
	case <-shutdownRequested:
		log.Println("asteriqd: shutdown requested from tray")
	case err := <-serverErrCh:
		log.Printf("asteriqd: status hub error: %v", err)
	case <-windowsCtrlCh:
		log.Println("asteriqd: Ctrl+C detected via console handler")
	}

	cancel()
	<-readerDone

	engine.Stop()
	ksink.ReleaseAll()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("asteriqd: status hub shutdown error: %v", err)
	}
	close(updates)

	log.Println("asteriqd: stopped")
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	full := filepath.Join(dir, "Asteriq")
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return full, nil
}

// publishStatus periodically assembles a Snapshot from the registry and
// hide gate and pushes it to the broadcaster, at the poller's own rate
// being unnecessary -- a slower, UI-appropriate cadence is sufficient.
func publishStatus(ctx context.Context, reg *registry.Registry, p *poller.Poller, gate *hide.Gate, updates chan<- statushub.Snapshot) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := buildSnapshot(ctx, reg, gate)
			select {
			case updates <- snap:
			default:
			}
		}
	}
}

func buildSnapshot(ctx context.Context, reg *registry.Registry, gate *hide.Gate) statushub.Snapshot {
	var hidden map[string]bool
	if gate != nil {
		if devs, err := gate.List(ctx); err == nil {
			hidden = make(map[string]bool, len(devs))
			for _, d := range devs {
				hidden[d.Path] = true
			}
		}
	}

	devices := reg.Enumerate()
	ds := make([]statushub.DeviceStatus, 0, len(devices))
	for _, d := range devices {
		ds = append(ds, statushub.DeviceStatus{
			DeviceID:  d.ID.String(),
			Name:      d.DisplayName,
			Connected: d.Connected,
			Hidden:    hidden[d.InstancePath],
		})
	}

	slots := reg.Slots()
	ss := make([]statushub.SlotStatus, 0, len(slots))
	for _, s := range slots {
		ss = append(ss, statushub.SlotStatus{Slot: s.ID, State: slotStateName(s.Acquisition)})
	}

	return statushub.Snapshot{Slots: ss, Devices: ds}
}

func slotStateName(a registry.SlotAcquisition) string {
	switch a {
	case registry.SlotOwn:
		return "acquired"
	case registry.SlotBusy:
		return "busy"
	case registry.SlotMissing:
		return "missing"
	default:
		return "free"
	}
}

func initialSlotSummaries(reg *registry.Registry) []trayicon.SlotSummary {
	slots := reg.Slots()
	out := make([]trayicon.SlotSummary, 0, len(slots))
	for _, s := range slots {
		out = append(out, trayicon.SlotSummary{Slot: s.ID, State: slotStateName(s.Acquisition)})
	}
	return out
}
