//go:build linux

package legacy

import "golang.design/x/hotkey"

// On X11 Alt is typically Mod1 and Super is Mod4.
var modifierMap = map[string]hotkey.Modifier{
	"ctrl":  hotkey.ModCtrl,
	"shift": hotkey.ModShift,
	"alt":   hotkey.Mod1,
	"cmd":   hotkey.Mod4,
}

// X11 lock masks that commonly interfere with XGrabKey.
// CapsLock is LockMask (1<<1) and NumLock is often Mod2.
const linuxCapsLockMask hotkey.Modifier = 1 << 1

// expandModifiers returns every lock-state variant that must be grabbed so
// the combination still fires with NumLock or CapsLock on.
func expandModifiers(modifiers []hotkey.Modifier) [][]hotkey.Modifier {
	base := append([]hotkey.Modifier(nil), modifiers...)
	withNum := append(append([]hotkey.Modifier(nil), modifiers...), hotkey.Mod2)
	withCaps := append(append([]hotkey.Modifier(nil), modifiers...), linuxCapsLockMask)
	withBoth := append(append([]hotkey.Modifier(nil), modifiers...), hotkey.Mod2, linuxCapsLockMask)

	return [][]hotkey.Modifier{base, withNum, withCaps, withBoth}
}
