//go:build linux

package window

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// NativeFinder enumerates X11 windows by shelling out to xdotool.
type NativeFinder struct {
	run func(ctx context.Context, args ...string) (string, error)
}

// NewNativeFinder returns the xdotool finder.
func NewNativeFinder() *NativeFinder {
	return &NativeFinder{run: runXdotool}
}

func runXdotool(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "xdotool", args...).Output()
	return string(out), err
}

// Name returns the name of this backend.
func (f *NativeFinder) Name() string {
	return "native"
}

// Windows lists visible, titled windows matching pattern.
func (f *NativeFinder) Windows(ctx context.Context, pattern *regexp.Regexp) ([]Window, error) {
	out, err := f.run(ctx, "search", "--onlyvisible", "--name", ".")
	if err != nil {
		// xdotool exits 1 when the search matched nothing.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && strings.TrimSpace(out) == "" {
			return nil, nil
		}
		return nil, fmt.Errorf("xdotool search failed (is it installed?): %w", err)
	}

	var windows []Window
	for _, id := range strings.Fields(out) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name, err := f.run(ctx, "getwindowname", id)
		if err != nil {
			// The window may have closed between search and lookup.
			continue
		}
		title := strings.TrimSpace(name)
		if title == "" {
			continue
		}
		if pattern != nil && !pattern.MatchString(title) {
			continue
		}
		windows = append(windows, &xWindow{finder: f, id: id, title: title})
	}
	return windows, nil
}

type xWindow struct {
	finder *NativeFinder
	id     string
	title  string
}

func (w *xWindow) Title() string   { return w.title }
func (w *xWindow) Backend() string { return w.finder.Name() }

func (w *xWindow) Focus(ctx context.Context) error {
	if _, err := w.finder.run(ctx, "windowactivate", "--sync", w.id); err != nil {
		return fmt.Errorf("xdotool windowactivate %s failed: %w", w.id, err)
	}
	return nil
}
