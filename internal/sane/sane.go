// Package sane defines the interface scanbd's core requires of the
// scanner-access library: enumerate devices, open a device, list options,
// read an option's current value, detect an option's kind. The real
// library is an external collaborator out of scope for this repository.
// This package is the seam: callers throughout scanbd depend only on
// Library and Device, never on a concrete backend, so a real SANE binding
// can be dropped in behind these interfaces without touching any other
// package.
//
// Shaped like a poller.Poller interface / SNMPPoller split: interface the
// core depends on, concrete network client out of this package's
// concern, injectable fake for tests.
package sane

import (
	"context"

	"github.com/scanbd/scanbd/models"
)

// DeviceInfo identifies one enumerable device without opening it.
type DeviceInfo struct {
	// Name is the device identifier used in config filters and the
	// SCANBD_DEVICE environment variable, e.g. "genesys:libusb:001:042".
	Name string
}

// Library enumerates and opens devices. A real implementation wraps a SANE
// (or equivalent) C binding; this repository only depends on the interface.
type Library interface {
	// Enumerate lists currently attached devices. localOnly, when true,
	// restricts the result to directly attached (non-network) devices.
	Enumerate(ctx context.Context, localOnly bool) ([]DeviceInfo, error)

	// Open opens the named device exclusively. At most one open handle may
	// exist per device name at any time; a second Open of the same name
	// while the first is still open is an error.
	Open(ctx context.Context, name string) (Device, error)
}

// Device is an open handle on one scanner. The handle must be closed
// before any script fork and reopened only after the script exits; callers
// never hold a Device across a fork.
type Device interface {
	// Name returns the device's identifier, matching the DeviceInfo.Name it
	// was opened with.
	Name() string

	// Options returns the device's option list. The returned slice and the
	// OptionInfo values within it are immutable for the lifetime of this
	// open handle.
	Options(ctx context.Context) ([]models.OptionInfo, error)

	// ReadOption reads the current value of one option. A read failure is
	// never fatal to the caller's poll iteration.
	ReadOption(ctx context.Context, opt models.OptionInfo) (models.OptionValue, error)

	// Close releases the device handle.
	Close() error
}
