package legacy

import (
	"fmt"

	"golang.design/x/hotkey"

	"github.com/TanaroSch/clipforward/internal/keys"
)

// parseHotkey converts a string hotkey combination (e.g., "ctrl+alt+v")
// into golang.design/x/hotkey modifiers and key.
func parseHotkey(hotkeyStr string) ([]hotkey.Modifier, hotkey.Key, error) {
	combo, err := keys.Parse(hotkeyStr)
	if err != nil {
		return nil, 0, err
	}

	key, ok := keyMap[combo.Key]
	if !ok {
		return nil, 0, fmt.Errorf("unsupported key: %s", combo.Key)
	}

	modifiers := make([]hotkey.Modifier, 0, len(combo.Modifiers))
	for _, name := range combo.Modifiers {
		mod, ok := modifierMap[name]
		if !ok {
			return nil, 0, fmt.Errorf("unsupported modifier on this OS: %s", name)
		}
		modifiers = append(modifiers, mod)
	}
	return modifiers, key, nil
}
