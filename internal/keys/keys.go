// Package keys parses key combinations and synthesizes them as OS input.
package keys

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
)

// Combo is a key plus the modifiers held while it is tapped.
type Combo struct {
	Key       string
	Modifiers []string
}

// String renders the combination the way it is written in the config.
func (c Combo) String() string {
	if len(c.Modifiers) == 0 {
		return c.Key
	}
	return strings.Join(c.Modifiers, "+") + "+" + c.Key
}

var modifierAliases = map[string]string{
	"ctrl":    "ctrl",
	"control": "ctrl",
	"shift":   "shift",
	"alt":     "alt",
	"option":  "alt",
	"cmd":     "cmd",
	"command": "cmd",
	"super":   "cmd",
	"win":     "cmd",
}

var keyAliases = map[string]string{
	"return": "enter",
	"esc":    "escape",
	"del":    "delete",
	"ins":    "insert",
}

// Parse converts "ctrl+v" style strings into a Combo using robotgo key names.
func Parse(s string) (Combo, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	key := strings.TrimSpace(parts[len(parts)-1])
	if key == "" {
		return Combo{}, fmt.Errorf("missing key in combination %q", s)
	}
	if alias, ok := keyAliases[key]; ok {
		key = alias
	}
	if _, isMod := modifierAliases[key]; isMod {
		return Combo{}, fmt.Errorf("combination %q ends with a modifier", s)
	}

	c := Combo{Key: key}
	for _, part := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[strings.TrimSpace(part)]
		if !ok {
			return Combo{}, fmt.Errorf("unsupported modifier %q in combination %q", part, s)
		}
		c.Modifiers = append(c.Modifiers, mod)
	}
	return c, nil
}

// Sender taps key combinations into whichever window holds focus.
type Sender interface {
	Send(ctx context.Context, c Combo) error
}

// RobotSender synthesizes input with github.com/go-vgo/robotgo.
type RobotSender struct{}

// NewRobotSender returns a Sender backed by robotgo.
func NewRobotSender() *RobotSender {
	return &RobotSender{}
}

// Name returns the sender name used in logs.
func (s *RobotSender) Name() string { return "robotgo" }

// Send taps c. The context is only checked before the tap; robotgo calls
// cannot be interrupted.
func (s *RobotSender) Send(ctx context.Context, c Combo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mods := make([]any, len(c.Modifiers))
	for i, m := range c.Modifiers {
		mods[i] = m
	}
	if err := robotgo.KeyTap(c.Key, mods...); err != nil {
		return fmt.Errorf("failed to send %s: %w", c, err)
	}
	return nil
}
