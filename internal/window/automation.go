package window

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-vgo/robotgo"
)

// AutomationFinder enumerates windows through github.com/go-vgo/robotgo.
// robotgo exposes one main window per process; a process whose window has a
// title is treated as visible.
type AutomationFinder struct {
	processes func() ([]robotgo.Nps, error)
	title     func(pid int) string
	activate  func(pid int) error
}

// NewAutomationFinder returns the robotgo-backed finder.
func NewAutomationFinder() *AutomationFinder {
	return &AutomationFinder{
		processes: robotgo.Process,
		title:     func(pid int) string { return robotgo.GetTitle(pid) },
		activate:  func(pid int) error { return robotgo.ActivePid(pid) },
	}
}

// Name returns the name of this backend.
func (f *AutomationFinder) Name() string {
	return "automation"
}

// Windows lists titled process windows matching pattern.
func (f *AutomationFinder) Windows(ctx context.Context, pattern *regexp.Regexp) ([]Window, error) {
	procs, err := f.processes()
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var out []Window
	seen := make(map[int]struct{}, len(procs))
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := seen[p.Pid]; dup {
			continue
		}
		seen[p.Pid] = struct{}{}

		title := f.title(p.Pid)
		if title == "" {
			continue
		}
		if pattern != nil && !pattern.MatchString(title) {
			continue
		}
		out = append(out, &automationWindow{finder: f, pid: p.Pid, process: p.Name, title: title})
	}
	return out, nil
}

type automationWindow struct {
	finder  *AutomationFinder
	pid     int
	process string
	title   string
}

func (w *automationWindow) Title() string   { return w.title }
func (w *automationWindow) Backend() string { return w.finder.Name() }

func (w *automationWindow) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := w.finder.activate(w.pid); err != nil {
		return fmt.Errorf("failed to activate pid %d (%s): %w", w.pid, w.process, err)
	}
	return nil
}
