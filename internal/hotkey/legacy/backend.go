// Package legacy implements hotkey.Backend on golang.design/x/hotkey.
//
// Importing it links the library, whose X11 initialisation needs a display.
// Code that only drives a hotkey.Backend should import internal/hotkey.
package legacy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.design/x/hotkey"

	hkapi "github.com/TanaroSch/clipforward/internal/hotkey"
)

// Backend wraps golang.design/x/hotkey.
// It supports Windows (RegisterHotKey), macOS and X11 (XGrabKey), not Wayland.
type Backend struct {
	mu             sync.Mutex
	registeredKeys map[string]*legacyHotkey
	displayServer  hkapi.DisplayServer
	log            logrus.FieldLogger
}

// NewBackend creates a new backend using golang.design/x/hotkey.
func NewBackend(log logrus.FieldLogger) *Backend {
	ds := hkapi.DetectDisplayServer()
	log.WithField("display_server", ds.String()).Debug("Legacy hotkey backend created")

	return &Backend{
		registeredKeys: make(map[string]*legacyHotkey),
		displayServer:  ds,
		log:            log,
	}
}

// Name returns the name of this backend.
func (b *Backend) Name() string {
	return "golang.design/x/hotkey"
}

// IsAvailable checks if this backend can be used on the current system.
func (b *Backend) IsAvailable() bool {
	return b.displayServer.Supported()
}

// CanSuspend reports whether Unregister returns promptly. On X11 the library
// only releases a grab after the next physical press of the combination.
func (b *Backend) CanSuspend() bool {
	return b.displayServer != hkapi.DisplayServerX11
}

// Register registers a hotkey using the legacy backend.
func (b *Backend) Register(hotkeyStr string) (hkapi.RegisteredHotkey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, exists := b.registeredKeys[hotkeyStr]; exists {
		return existing, nil
	}

	modifiers, key, err := parseHotkey(hotkeyStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hotkey '%s': %w", hotkeyStr, err)
	}

	wrapped := &legacyHotkey{
		hotkeyStr: hotkeyStr,
		keydownCh: make(chan struct{}),
		stopCh:    make(chan struct{}),
		log:       b.log,
	}
	for _, mods := range expandModifiers(modifiers) {
		hk := hotkey.New(mods, key)
		if err := hk.Register(); err != nil {
			// Lock-state variants are best effort; the plain combination is not.
			if len(wrapped.hotkeys) == 0 {
				return nil, fmt.Errorf("failed to register hotkey '%s': %w", hotkeyStr, err)
			}
			b.log.WithError(err).WithField("hotkey", hotkeyStr).Debug("Lock-state variant not registered")
			continue
		}
		wrapped.hotkeys = append(wrapped.hotkeys, hk)
	}

	wrapped.startEventConverter()

	b.registeredKeys[hotkeyStr] = wrapped
	b.log.WithField("hotkey", hotkeyStr).Debug("Registered hotkey")
	return wrapped, nil
}

// Unregister removes a single hotkey. The registration is forgotten before
// it is closed, so a slow Close does not hold up Register.
func (b *Backend) Unregister(hotkeyStr string) error {
	b.mu.Lock()
	hk, exists := b.registeredKeys[hotkeyStr]
	delete(b.registeredKeys, hotkeyStr)
	b.mu.Unlock()

	if !exists {
		return nil
	}
	if err := hk.Close(); err != nil {
		return err
	}
	b.log.WithField("hotkey", hotkeyStr).Debug("Unregistered hotkey")
	return nil
}

// legacyHotkey fans the key-down channels of every lock-state variant into
// one struct{} channel.
type legacyHotkey struct {
	hotkeys   []*hotkey.Hotkey
	hotkeyStr string
	keydownCh chan struct{}
	stopCh    chan struct{}
	closeOnce sync.Once
	log       logrus.FieldLogger
}

// Keydown returns the channel that receives keydown events.
func (lh *legacyHotkey) Keydown() <-chan struct{} {
	return lh.keydownCh
}

// startEventConverter forwards hotkey.Event values until Close.
func (lh *legacyHotkey) startEventConverter() {
	var wg sync.WaitGroup
	for _, hk := range lh.hotkeys {
		wg.Add(1)
		go func(events <-chan hotkey.Event) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					lh.log.WithField("hotkey", lh.hotkeyStr).Errorf("Recovered from panic in hotkey converter: %v", r)
				}
			}()

			for {
				select {
				case <-lh.stopCh:
					return
				case _, ok := <-events:
					if !ok {
						return
					}
					select {
					case lh.keydownCh <- struct{}{}:
					case <-lh.stopCh:
						return
					}
				}
			}
		}(hk.Keydown())
	}

	go func() {
		wg.Wait()
		close(lh.keydownCh)
	}()
}

// Close unregisters every variant and closes the Keydown channel.
func (lh *legacyHotkey) Close() error {
	var errs []error
	lh.closeOnce.Do(func() {
		close(lh.stopCh)
		for _, hk := range lh.hotkeys {
			if err := hk.Unregister(); err != nil {
				errs = append(errs, fmt.Errorf("failed to unregister hotkey '%s': %w", lh.hotkeyStr, err))
			}
		}
	})
	return errors.Join(errs...)
}

// SelectBackend returns the legacy backend when the display server supports
// global grabs.
func SelectBackend(log logrus.FieldLogger) (hkapi.Backend, error) {
	backend := NewBackend(log)
	if !backend.IsAvailable() {
		return nil, fmt.Errorf("%w: display server %s", hkapi.ErrBackendNotAvailable, backend.displayServer)
	}
	log.WithFields(logrus.Fields{
		"backend":        backend.Name(),
		"display_server": backend.displayServer.String(),
		"can_suspend":    backend.CanSuspend(),
	}).Info("Selected hotkey backend")
	return backend, nil
}
