// Package attach implements the "busy" single-attacher semantics of spec
// §6: a device may have at most one attached client at a time; a second
// concurrent Attach fails with ErrBusy. This is adapted from the
// exclusive-create PID-file pattern used to guard single-instance daemons
// (os.O_CREATE|os.O_EXCL) — here there is no real character device to hold
// that lock on, so the exclusivity lives in an in-process atomic flag
// instead of a file, but the refusal semantics are the same.
package attach

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrBusy is returned by Attach when a client is already attached.
var ErrBusy = errors.New("attach: device already has an attached client")

// Gate guards exclusive attachment to one device.
type Gate struct {
	attached atomic.Bool
	busy     atomic.Bool
}

// New returns an unattached Gate.
func New() *Gate {
	return &Gate{}
}

// Attach marks the device attached, or returns ErrBusy if it already is.
func (g *Gate) Attach() error {
	if !g.attached.CompareAndSwap(false, true) {
		return errors.WithStack(ErrBusy)
	}
	return nil
}

// Release clears the attached flag so a future Attach can succeed.
func (g *Gate) Release() {
	g.attached.Store(false)
}

// Attached reports whether a client currently holds the device open.
func (g *Gate) Attached() bool {
	return g.attached.Load()
}

// Enter sets the per-request advisory busy flag spec §5 describes, and
// returns ErrBusy if the flag is already set: another request is in flight
// on a carrier sharing this Gate, or a carrier is calling Dispatch
// reentrantly. Callers must call Leave when done, even
// on error paths from the request itself.
func (g *Gate) Enter() error {
	if !g.busy.CompareAndSwap(false, true) {
		return errors.WithStack(ErrBusy)
	}
	return nil
}

// Leave clears the per-request busy flag set by Enter.
func (g *Gate) Leave() {
	g.busy.Store(false)
}
