//go:build linux

package keys

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var xdotoolModifiers = map[string]string{
	"ctrl":  "ctrl",
	"shift": "shift",
	"alt":   "alt",
	"cmd":   "super",
}

var xdotoolKeys = map[string]string{
	"enter":     "Return",
	"tab":       "Tab",
	"escape":    "Escape",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"insert":    "Insert",
	"left":      "Left",
	"up":        "Up",
	"right":     "Right",
	"down":      "Down",
}

// xdotoolKeysym renders c in xdotool's "ctrl+v" keysym syntax.
func xdotoolKeysym(c Combo) (string, error) {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		name, ok := xdotoolModifiers[m]
		if !ok {
			return "", fmt.Errorf("unsupported modifier for xdotool: %s", m)
		}
		parts = append(parts, name)
	}
	key := c.Key
	if name, ok := xdotoolKeys[key]; ok {
		key = name
	} else if strings.HasPrefix(key, "f") && len(key) > 1 {
		key = strings.ToUpper(key)
	}
	return strings.Join(append(parts, key), "+"), nil
}

// NativeSender synthesizes input by running `xdotool key`.
type NativeSender struct {
	run func(ctx context.Context, args ...string) error
}

// NewNativeSender returns the xdotool sender.
func NewNativeSender() *NativeSender {
	return &NativeSender{run: func(ctx context.Context, args ...string) error {
		out, err := exec.CommandContext(ctx, "xdotool", args...).CombinedOutput()
		if err != nil {
			return fmt.Errorf("xdotool %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
		}
		return nil
	}}
}

// Name returns the sender name used in logs.
func (s *NativeSender) Name() string { return "xdotool" }

// Send taps c into the focused window.
func (s *NativeSender) Send(ctx context.Context, c Combo) error {
	keysym, err := xdotoolKeysym(c)
	if err != nil {
		return err
	}
	return s.run(ctx, "key", "--clearmodifiers", keysym)
}
