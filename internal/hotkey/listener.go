package hotkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultRetryInterval is how often a lost registration is re-attempted.
	DefaultRetryInterval = time.Second

	// DefaultUnregisterTimeout bounds how long Suspend and shutdown wait for
	// the backend to release the combination.
	DefaultUnregisterTimeout = time.Second
)

var (
	// ErrUnregisterTimeout is returned by Suspend when the backend did not
	// release the combination in time. The release continues in the
	// background; the combination is grabbed again once it completes.
	ErrUnregisterTimeout = errors.New("hotkey unregister timed out")

	// ErrUnregisterPending is returned by Suspend while an earlier timed out
	// release has not completed.
	ErrUnregisterPending = errors.New("hotkey unregister still pending")
)

// Listener owns the registration of one combination and dispatches each
// key-down to onTrigger in its own goroutine. Dispatch never waits for a
// previous callback, so callbacks may overlap.
type Listener struct {
	backend           Backend
	hotkeyStr         string
	onTrigger         func(ctx context.Context)
	log               logrus.FieldLogger
	retryEvery        time.Duration
	unregisterTimeout time.Duration

	mu        sync.Mutex
	current   RegisteredHotkey
	changed   chan struct{}
	suspended bool
	releasing bool
	closed    bool

	inflight sync.WaitGroup
}

// NewListener creates a listener for hotkeyStr on backend.
func NewListener(backend Backend, hotkeyStr string, onTrigger func(ctx context.Context), log logrus.FieldLogger) *Listener {
	return &Listener{
		backend:           backend,
		hotkeyStr:         hotkeyStr,
		onTrigger:         onTrigger,
		log:               log.WithField("hotkey", hotkeyStr),
		retryEvery:        DefaultRetryInterval,
		unregisterTimeout: DefaultUnregisterTimeout,
		changed:           make(chan struct{}),
	}
}

// SetUnregisterTimeout changes how long a release may take. Call it before Run.
func (l *Listener) SetUnregisterTimeout(d time.Duration) {
	l.unregisterTimeout = d
}

// Register grabs the combination. It must succeed before Run is useful.
func (l *Listener) Register() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current != nil || l.suspended || l.releasing || l.closed {
		return nil
	}
	hk, err := l.backend.Register(l.hotkeyStr)
	if err != nil {
		return fmt.Errorf("failed to register hotkey '%s' on %s: %w", l.hotkeyStr, l.backend.Name(), err)
	}
	l.setCurrentLocked(hk)
	return nil
}

// Run dispatches key-down events until ctx is cancelled, then unregisters
// the combination and waits for in-flight callbacks to return. While the
// combination is neither registered, suspended nor being released,
// registration is retried every retry interval.
func (l *Listener) Run(ctx context.Context) {
	defer l.shutdown()

	for {
		l.mu.Lock()
		hk, changed := l.current, l.changed
		idle := hk == nil && !l.suspended && !l.releasing
		l.mu.Unlock()

		var keydown <-chan struct{}
		var retry <-chan time.Time
		if hk != nil {
			keydown = hk.Keydown()
		} else if idle {
			retry = time.After(l.retryEvery)
		}

		select {
		case <-ctx.Done():
			return
		case <-changed:
		case <-retry:
			if err := l.Register(); err != nil {
				l.log.WithError(err).Warn("Hotkey registration retry failed")
			} else {
				l.log.Info("Hotkey registered again")
			}
		case _, ok := <-keydown:
			if !ok {
				// Registration went away; wait for resume, a retry or shutdown.
				l.mu.Lock()
				if l.current == hk {
					l.setCurrentLocked(nil)
				}
				l.mu.Unlock()
				continue
			}
			l.dispatch(ctx)
		}
	}
}

func (l *Listener) dispatch(ctx context.Context) {
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				l.log.Errorf("Recovered from panic in hotkey callback: %v", r)
			}
		}()
		l.onTrigger(ctx)
	}()
}

// Suspend releases the combination so synthesized copies of it reach the
// focused application. The returned resume function grabs it again; if that
// fails, Run keeps retrying. When the backend does not release in time,
// Suspend fails with ErrUnregisterTimeout and the caller must not rely on
// the combination being free.
func (l *Listener) Suspend() (resume func() error, err error) {
	l.mu.Lock()
	if l.releasing {
		l.mu.Unlock()
		return nil, fmt.Errorf("failed to suspend hotkey '%s': %w", l.hotkeyStr, ErrUnregisterPending)
	}
	registered := l.current != nil
	l.suspended = true
	l.setCurrentLocked(nil)
	l.mu.Unlock()

	if registered {
		if err := l.unregister(); err != nil {
			l.mu.Lock()
			l.suspended = false
			l.wakeLocked()
			l.mu.Unlock()
			return nil, fmt.Errorf("failed to suspend hotkey '%s': %w", l.hotkeyStr, err)
		}
	}

	var once sync.Once
	return func() (err error) {
		once.Do(func() { err = l.resume() })
		return err
	}, nil
}

func (l *Listener) resume() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.suspended {
		return nil
	}
	l.suspended = false
	if l.closed || l.releasing {
		return nil
	}

	hk, err := l.backend.Register(l.hotkeyStr)
	if err != nil {
		// Wake Run so it schedules a retry.
		l.setCurrentLocked(nil)
		return fmt.Errorf("failed to resume hotkey '%s': %w", l.hotkeyStr, err)
	}
	l.setCurrentLocked(hk)
	return nil
}

// unregister asks the backend to release the combination and waits at most
// unregisterTimeout. A release that outlives the wait keeps the listener in
// the releasing state until it returns. l.mu must not be held.
func (l *Listener) unregister() error {
	done := make(chan error, 1)
	l.mu.Lock()
	l.releasing = true
	l.mu.Unlock()

	go func() {
		err := l.backend.Unregister(l.hotkeyStr)
		l.mu.Lock()
		l.releasing = false
		l.wakeLocked()
		l.mu.Unlock()
		done <- err
	}()

	timer := time.NewTimer(l.unregisterTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		l.log.WithField("timeout", l.unregisterTimeout).Warn("Hotkey release is taking too long; continuing without it")
		return ErrUnregisterTimeout
	}
}

// setCurrentLocked swaps the registration and wakes Run.
func (l *Listener) setCurrentLocked(hk RegisteredHotkey) {
	l.current = hk
	l.wakeLocked()
}

func (l *Listener) wakeLocked() {
	close(l.changed)
	l.changed = make(chan struct{})
}

func (l *Listener) shutdown() {
	l.mu.Lock()
	l.closed = true
	registered := l.current != nil
	l.current = nil
	l.mu.Unlock()

	if registered {
		if err := l.unregister(); err != nil {
			l.log.WithError(err).Warn("Failed to unregister hotkey on shutdown")
		}
	}

	l.inflight.Wait()
	l.log.Debug("Hotkey listener stopped")
}
