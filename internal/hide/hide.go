// Package hide wraps the device-hiding driver CLI (spec.md §4.11, §6.5):
// an external, opaque executable invoked as a subprocess with flags,
// returning JSON on stdout for the query subcommands. Grounded on the
// subprocess-invocation idiom in the teacher's internal/tray
// (exec.Command + per-OS/per-mode argument switch), applied to a single
// fixed executable rather than the OS browser opener.
package hide

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
)

// ErrUnavailable is returned when the gate executable cannot be found or
// run; hiding features are then disabled while the rest of the system
// keeps working (spec.md §7's HidHideUnavailable).
var ErrUnavailable = fmt.Errorf("hide: device-hide CLI unavailable")

// Device is one entry from --dev-list/--dev-gaming/--dev-all's JSON output.
type Device struct {
	FriendlyName  string `json:"friendlyName"`
	Path          string `json:"path"`
	SymbolicLink  string `json:"symbolicLink"`
	VendorString  string `json:"vendorString"`
	ProductString string `json:"productString"`
	Usage         string `json:"usage"`
	Description   string `json:"description"`
	Present       bool   `json:"present"`
	GamingDevice  bool   `json:"gamingDevice"`
}

// Gate wraps invocations of the device-hiding CLI at execPath.
type Gate struct {
	execPath string
	run      func(ctx context.Context, args ...string) ([]byte, error)
}

// New returns a Gate for the CLI at execPath. An empty execPath is
// resolved via exec.LookPath at each call, matching how the pack's other
// subprocess call sites (tray's openBrowser) resolve their target lazily.
func New(execPath string) *Gate {
	g := &Gate{execPath: execPath}
	g.run = g.exec
	return g
}

func (g *Gate) exec(ctx context.Context, args ...string) ([]byte, error) {
	path := g.execPath
	if path == "" {
		resolved, err := exec.LookPath("HidHideCLI.exe")
		if err != nil {
			return nil, ErrUnavailable
		}
		path = resolved
	}

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hide: %s %v: %w (%s)", path, args, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Hide hides the device at devicePath from non-whitelisted applications.
func (g *Gate) Hide(ctx context.Context, devicePath string) error {
	_, err := g.run(ctx, "--dev-hide", devicePath)
	return err
}

// Unhide reverses Hide.
func (g *Gate) Unhide(ctx context.Context, devicePath string) error {
	_, err := g.run(ctx, "--dev-unhide", devicePath)
	return err
}

// List returns every known device.
func (g *Gate) List(ctx context.Context) ([]Device, error) {
	return g.queryDevices(ctx, "--dev-list")
}

// ListGaming returns only devices flagged as gaming devices.
func (g *Gate) ListGaming(ctx context.Context) ([]Device, error) {
	return g.queryDevices(ctx, "--dev-gaming")
}

// ListAll is an alias for the --dev-all subcommand (same shape as List,
// but including devices the driver would otherwise omit).
func (g *Gate) ListAll(ctx context.Context) ([]Device, error) {
	return g.queryDevices(ctx, "--dev-all")
}

func (g *Gate) queryDevices(ctx context.Context, flag string) ([]Device, error) {
	out, err := g.run(ctx, flag)
	if err != nil {
		return nil, err
	}
	var groups map[string][]Device
	if err := json.Unmarshal(out, &groups); err != nil {
		return nil, fmt.Errorf("hide: decode %s output: %w", flag, err)
	}
	var devices []Device
	for _, group := range groups {
		devices = append(devices, group...)
	}
	return devices, nil
}

// CloakOn enables cloaking.
func (g *Gate) CloakOn(ctx context.Context) error {
	_, err := g.run(ctx, "--cloak-on")
	return err
}

// CloakOff disables cloaking.
func (g *Gate) CloakOff(ctx context.Context) error {
	_, err := g.run(ctx, "--cloak-off")
	return err
}

// CloakStateNow reports whether cloaking is currently enabled.
func (g *Gate) CloakStateNow(ctx context.Context) (bool, error) {
	return g.queryBoolState(ctx, "--cloak-state")
}

// InverseOn enables inverse mode: the whitelist becomes the set of
// applications the hidden devices are BLOCKED from.
func (g *Gate) InverseOn(ctx context.Context) error {
	_, err := g.run(ctx, "--inv-on")
	return err
}

// InverseOff disables inverse mode.
func (g *Gate) InverseOff(ctx context.Context) error {
	_, err := g.run(ctx, "--inv-off")
	return err
}

// InverseStateNow reports whether inverse mode is currently enabled.
func (g *Gate) InverseStateNow(ctx context.Context) (bool, error) {
	return g.queryBoolState(ctx, "--inv-state")
}

func (g *Gate) queryBoolState(ctx context.Context, flag string) (bool, error) {
	out, err := g.run(ctx, flag)
	if err != nil {
		return false, err
	}
	var state struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(out, &state); err != nil {
		return false, fmt.Errorf("hide: decode %s output: %w", flag, err)
	}
	return state.Enabled, nil
}

// RegisterApp adds exePath to the whitelist of applications allowed to see
// hidden devices.
func (g *Gate) RegisterApp(ctx context.Context, exePath string) error {
	_, err := g.run(ctx, "--app-reg", exePath)
	return err
}

// UnregisterApp removes exePath from the whitelist.
func (g *Gate) UnregisterApp(ctx context.Context, exePath string) error {
	_, err := g.run(ctx, "--app-unreg", exePath)
	return err
}

// ListRegisteredApps returns the whitelist.
func (g *Gate) ListRegisteredApps(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "--app-list")
	if err != nil {
		return nil, err
	}
	var apps []string
	if err := json.Unmarshal(out, &apps); err != nil {
		return nil, fmt.Errorf("hide: decode --app-list output: %w", err)
	}
	return apps, nil
}
