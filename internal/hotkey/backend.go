// Package hotkey registers global key combinations and dispatches their
// key-down events. The OS binding lives in internal/hotkey/legacy; this
// package does not link it.
package hotkey

import "errors"

// ErrBackendNotAvailable is returned when a backend cannot be used on the current system.
var ErrBackendNotAvailable = errors.New("hotkey backend not available on this system")

// Backend abstracts the OS hotkey registration mechanism, so the listener
// can be exercised without a display server.
type Backend interface {
	// Register grabs the combination described by hotkeyStr (e.g. "ctrl+v").
	// The OS stops delivering the combination to the focused application
	// until it is unregistered.
	Register(hotkeyStr string) (RegisteredHotkey, error)

	// Unregister releases a previously registered combination.
	Unregister(hotkeyStr string) error

	// Name returns a human-readable name for this backend (for logging).
	Name() string

	// IsAvailable returns true if this backend can be used on the current system.
	IsAvailable() bool
}

// CanSuspend reports whether b releases a registration promptly. Backends
// report it through an optional CanSuspend method; those without one are
// assumed to.
func CanSuspend(b Backend) bool {
	if s, ok := b.(interface{ CanSuspend() bool }); ok {
		return s.CanSuspend()
	}
	return true
}

// RegisteredHotkey is a live registration.
type RegisteredHotkey interface {
	// Keydown receives one value per key press. It is closed after Close.
	Keydown() <-chan struct{}

	// Close releases the registration.
	Close() error
}
