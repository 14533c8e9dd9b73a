//go:build !windows && !linux

package window

import (
	"context"
	"regexp"
)

// NativeFinder stub for platforms without a native backend. macOS is served
// by the automation backend only.
type NativeFinder struct{}

// NewNativeFinder creates a finder that is never available.
func NewNativeFinder() *NativeFinder {
	return &NativeFinder{}
}

// Name returns the name of this backend.
func (f *NativeFinder) Name() string {
	return "native"
}

// Windows always fails on this platform.
func (f *NativeFinder) Windows(ctx context.Context, pattern *regexp.Regexp) ([]Window, error) {
	return nil, ErrBackendNotAvailable
}
