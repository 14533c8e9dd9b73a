// Package window finds top-level desktop windows by title and focuses them.
//
// Discovery goes through an ordered Chain of Finder backends. The automation
// backend (robotgo) is tried first and the native backend (Win32 or xdotool)
// second; the first backend that returns a match wins.
package window

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/TanaroSch/clipforward/internal/config"
)

var (
	// ErrNotFound is returned by Chain.Find when no backend yields a match.
	ErrNotFound = errors.New("no matching window")

	// ErrBackendNotAvailable is returned by a backend that cannot run on this system.
	ErrBackendNotAvailable = errors.New("window backend not available on this system")
)

// Window is an opaque reference to a visible top-level window.
type Window interface {
	// Title returns the window title captured at discovery time.
	Title() string

	// Backend names the Finder that produced this window.
	Backend() string

	// Focus brings the window to the foreground.
	Focus(ctx context.Context) error
}

// Finder lists visible top-level windows.
type Finder interface {
	// Name returns a short name for this backend (for logging).
	Name() string

	// Windows returns visible windows whose title matches pattern, in the
	// backend's enumeration order. A nil pattern returns every visible
	// window that has a title.
	Windows(ctx context.Context, pattern *regexp.Regexp) ([]Window, error)
}

// Chain tries its finders in order.
type Chain struct {
	finders []Finder
	log     logrus.FieldLogger
}

// NewChain creates a chain over finders, tried in the given order.
func NewChain(log logrus.FieldLogger, finders ...Finder) *Chain {
	return &Chain{finders: finders, log: log}
}

// NewFinders builds finders from backend names as written in the config.
func NewFinders(names []string) ([]Finder, error) {
	finders := make([]Finder, 0, len(names))
	for _, name := range names {
		switch name {
		case config.BackendAutomation:
			finders = append(finders, NewAutomationFinder())
		case config.BackendNative:
			finders = append(finders, NewNativeFinder())
		default:
			return nil, fmt.Errorf("unknown window backend %q", name)
		}
	}
	return finders, nil
}

// Names lists the backends in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, len(c.finders))
	for i, f := range c.finders {
		names[i] = f.Name()
	}
	return names
}

// Find returns the first window matching pattern from the first backend that
// yields any match. Backend failures are logged at debug level and the next
// backend is tried.
func (c *Chain) Find(ctx context.Context, pattern *regexp.Regexp) (Window, error) {
	if pattern == nil {
		return nil, errors.New("window title pattern is required")
	}

	for _, f := range c.finders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		windows, err := list(ctx, f, pattern)
		if err != nil {
			c.log.WithField("backend", f.Name()).WithError(err).Debug("Window lookup failed")
			continue
		}
		if len(windows) > 0 {
			return windows[0], nil
		}
		c.log.WithField("backend", f.Name()).Debug("No matching window")
	}
	return nil, ErrNotFound
}

// TitleSample returns up to n non-empty titles of visible windows, taken from
// the first backend that can list windows at all.
func (c *Chain) TitleSample(ctx context.Context, n int) []string {
	for _, f := range c.finders {
		windows, err := list(ctx, f, nil)
		if err != nil {
			c.log.WithField("backend", f.Name()).WithError(err).Debug("Listing titles failed")
			continue
		}

		titles := make([]string, 0, n)
		for _, w := range windows {
			if len(titles) >= n {
				break
			}
			if t := w.Title(); t != "" {
				titles = append(titles, t)
			}
		}
		return titles
	}
	return nil
}

// list calls f.Windows and turns a panic inside the backend into an error.
func list(ctx context.Context, f Finder, pattern *regexp.Regexp) (windows []Window, err error) {
	defer func() {
		if r := recover(); r != nil {
			windows, err = nil, fmt.Errorf("backend %s panicked: %v", f.Name(), r)
		}
	}()
	return f.Windows(ctx, pattern)
}
