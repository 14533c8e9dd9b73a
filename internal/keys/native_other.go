//go:build !windows && !linux

package keys

import "context"

// NativeSender has no implementation on this OS; robotgo covers it.
type NativeSender struct{}

// NewNativeSender returns a sender that always reports ErrSenderNotAvailable.
func NewNativeSender() *NativeSender {
	return &NativeSender{}
}

// Name returns the sender name used in logs.
func (s *NativeSender) Name() string { return "native" }

// Send always fails with ErrSenderNotAvailable.
func (s *NativeSender) Send(context.Context, Combo) error {
	return ErrSenderNotAvailable
}
