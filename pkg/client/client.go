// Package client is the in-process convenience wrapper spec.md calls an
// external collaborator ("user-space convenience wrappers"): a thin,
// idiomatic Go method set over the four request kinds, for callers that
// link against buddyd directly instead of speaking to a carrier.
package client

import "buddyd/pkg/device"

// Device wraps a *device.Device with a small, conventional Go API.
type Device struct {
	d *device.Device
}

// New wraps dev.
func New(dev *device.Device) *Device {
	return &Device{d: dev}
}

// Alloc requests a block of at least size bytes and returns its reference.
func (c *Device) Alloc(size int) (int, error) {
	return c.d.Alloc(size)
}

// Free releases the block at ref.
func (c *Device) Free(ref int) error {
	return c.d.Free(ref)
}

// Write writes the zero-terminated contents of p at ref, per the WRITE
// request kind's existing semantics (spec §9's open question: preserved,
// not changed).
func (c *Device) Write(ref int, p []byte) (int, error) {
	return c.d.Write(ref, p)
}

// WriteN writes exactly len(p) bytes at ref regardless of embedded zero
// bytes. It does not go through the WRITE request kind's terminator rule;
// it is the escape hatch spec §9 allows for callers who need it.
func (c *Device) WriteN(ref int, p []byte) (int, error) {
	return c.d.WriteN(ref, p)
}

// Read returns size bytes from the block at ref.
func (c *Device) Read(ref, size int) ([]byte, error) {
	return c.d.Read(ref, size)
}
