// Package statushub broadcasts Asteriq's live status (slot acquisition,
// device connectivity, active profile, schema-change warnings) to
// connected UI clients over WebSocket. Adapted near-verbatim from the
// teacher's internal/hub + internal/server package pair
// (register/unregister/broadcast select loop, WritePump/ReadPump,
// full/delta envelope), repurposed from broadcasting gamepad.GamepadState
// to broadcasting Snapshot.
package statushub

import "time"

// SlotStatus is the per-virtual-slot state shown in the UI ("Acquired",
// "Busy (owned by PID …)", "Missing" -- spec.md §7).
type SlotStatus struct {
	Slot      int    `json:"slot"`
	State     string `json:"state"` // "acquired" | "busy" | "missing" | "free"
	OwnerPid  int    `json:"ownerPid,omitempty"`
	ProfileID string `json:"profileId,omitempty"`
}

// DeviceStatus is one physical device's connectivity as seen by the
// registry.
type DeviceStatus struct {
	DeviceID  string `json:"deviceId"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	Hidden    bool   `json:"hidden"`
}

// Snapshot is the full application status broadcast to clients.
type Snapshot struct {
	ActiveProfileID string         `json:"activeProfileId"`
	Slots           []SlotStatus   `json:"slots"`
	Devices         []DeviceStatus `json:"devices"`
	SchemaWarning   string         `json:"schemaWarning,omitempty"`
}

// WSMessage is sent from server to client.
type WSMessage struct {
	Type      string    `json:"type"` // "full" | "delta"
	Seq       int64     `json:"seq"`
	Timestamp int64     `json:"timestamp"`
	Data      *Snapshot `json:"data,omitempty"`
	Changes   *Snapshot `json:"changes,omitempty"`
}

func newFullMessage(seq int64, s Snapshot) WSMessage {
	return WSMessage{Type: "full", Seq: seq, Timestamp: time.Now().UnixMilli(), Data: &s}
}

func newDeltaMessage(seq int64, s Snapshot) WSMessage {
	return WSMessage{Type: "delta", Seq: seq, Timestamp: time.Now().UnixMilli(), Changes: &s}
}
