// Package xlog provides per-subsystem loggers. The pack carries no
// structured-logging dependency (zap/zerolog/logrus are absent from every
// kept go.mod), so this wraps stdlib log.Logger the same way the teacher's
// backend/tray/console code logs directly through log.Printf.
package xlog

import (
	"io"
	"log"
	"os"
)

var output io.Writer = os.Stderr

// SetOutput redirects every logger New creates after this call to w.
// Loggers already returned by New keep writing to whatever output was
// current when they were created.
func SetOutput(w io.Writer) {
	output = w
}

// New returns a logger prefixed with the subsystem name, matching the
// `[tray] ...`/`[console] ...` style the teacher's packages log under.
func New(subsystem string) *log.Logger {
	return log.New(output, "["+subsystem+"] ", log.LstdFlags)
}
