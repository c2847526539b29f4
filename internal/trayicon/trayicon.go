// Package trayicon adapts the teacher's internal/tray (fyne.io/systray,
// same Run/onReady/menu-click structure) to show virtual-slot acquisition
// status instead of a static tooltip, and to stop the mapping engine
// instead of an arbitrary shutdown callback.
package trayicon

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
)

// StopFunc is called once when "Exit" is clicked.
type StopFunc func()

// SlotSummary is one line of the tray menu's live slot status ("Slot 1:
// Acquired", "Slot 2: Missing").
type SlotSummary struct {
	Slot  int
	State string
}

// Tray manages the system tray icon and menu.
type Tray struct {
	stopFunc StopFunc
	uiAddr   string
	once     sync.Once
	stopping atomic.Bool

	mu        sync.Mutex
	menuOpen  *systray.MenuItem
	menuExit  *systray.MenuItem
	slotItems []*systray.MenuItem
	logger    *log.Logger
}

// New creates a Tray. uiAddr is the status hub's local HTTP address
// ("Open Status Page" opens it in the default browser).
func New(stopFn StopFunc, uiAddr string, logger *log.Logger) *Tray {
	if logger == nil {
		logger = log.Default()
	}
	return &Tray{stopFunc: stopFn, uiAddr: uiAddr, logger: logger}
}

// Run initializes and runs the tray icon. Blocks until Quit.
func (t *Tray) Run(iconData []byte, initialSlots []SlotSummary) {
	systray.Run(func() {
		t.onReady(iconData, initialSlots)
	}, t.onExit)
}

func (t *Tray) onReady(iconData []byte, initialSlots []SlotSummary) {
	if iconData != nil {
		systray.SetIcon(iconData)
	}
	systray.SetTitle("Asteriq")
	systray.SetTooltip("Asteriq HOTAS middleware")

	t.mu.Lock()
	for _, s := range initialSlots {
		item := systray.AddMenuItem(slotLabel(s), "")
		item.Disable()
		t.slotItems = append(t.slotItems, item)
	}
	systray.AddSeparator()
	t.menuOpen = systray.AddMenuItem("Open Status Page", "Open the status page in your browser")
	t.menuExit = systray.AddMenuItem("Exit", "Stop Asteriq")
	t.mu.Unlock()

	go t.handleMenuClicks()
	t.logger.Println("tray icon initialized")
}

// UpdateSlots refreshes the per-slot menu labels. Safe to call from any
// goroutine (e.g. the status hub's broadcaster loop).
func (t *Tray) UpdateSlots(slots []SlotSummary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range slots {
		if i >= len(t.slotItems) {
			break
		}
		t.slotItems[i].SetTitle(slotLabel(s))
	}
}

func slotLabel(s SlotSummary) string {
	return fmt.Sprintf("Slot %d: %s", s.Slot, strings.ToUpper(s.State[:1])+s.State[1:])
}

func (t *Tray) handleMenuClicks() {
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.stopping.Load() {
				t.openStatusPage()
			}
		case <-t.menuExit.ClickedCh:
			if t.stopping.CompareAndSwap(false, true) {
				t.once.Do(t.stopFunc)
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.stopping.Store(true)
	t.logger.Println("tray icon exiting")
}

func (t *Tray) openStatusPage() {
	if t.uiAddr == "" {
		return
	}
	url := "http://" + t.uiAddr

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		t.logger.Printf("open status page: %v", err)
	}
}
