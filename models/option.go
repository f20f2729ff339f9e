// Package models defines the core data structures shared across every layer
// of scanbd. These types represent the canonical in-memory form of a device
// option's identity; the option-handling packages (sane, scanval, action,
// devworker) depend on this package and nothing here depends on any other
// internal package.
package models

// OptionInfo is the opaque identity of a device option, as returned by the
// scanner library (internal/sane). It is comparable for equality and
// immutable for the lifetime of an open device.
type OptionInfo struct {
	// Name is the option's identifier, e.g. "button", "scan-resolution".
	Name string

	// Index is the option's position in the device's option list. Two
	// OptionInfo values with the same Name but different Index are treated
	// as distinct options (a device may expose the same name twice across
	// option groups in degenerate backends); comparisons use the full
	// struct, not just Name.
	Index int
}
