package poller

import "github.com/mazzeestudio/asteriq/internal/registry"

// Backend is one of the two interchangeable device-access layers described
// in spec.md §4.2: a high-level enumeration API (simple, limited to 6 axes
// + sliders) and a low-level descriptor-based API (needed for controls
// that double as axis-plus-button). The backend choice is a startup
// option and never changes the Sample format it produces.
type Backend interface {
	// Init acquires whatever process-wide handle the backend needs
	// (spec.md §9 "Global state": one per backend, lifecycle = process).
	Init() error
	// Shutdown releases the backend's process-wide handle. Safe to call
	// after Init failed.
	Shutdown()
	// Enumerate lists every currently visible device as a registry
	// candidate, for Registry.Reconcile.
	Enumerate() ([]registry.CandidatePath, error)
	// Open begins sampling a device by instance path; idempotent.
	Open(instancePath string) error
	// Close stops sampling a device by instance path; idempotent.
	Close(instancePath string)
	// Read returns the current raw sample for an opened device. ok is
	// false if the device is not open or has disappeared.
	Read(instancePath string) (Sample, bool)
}
