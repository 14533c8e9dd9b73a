//go:build windows

package keys

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputKeyboard  = 1
	keyeventfKeyUp = 0x0002
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

// keybdInput mirrors KEYBDINPUT.
type keybdInput struct {
	vk    uint16
	scan  uint16
	flags uint32
	time  uint32
	extra uintptr
}

// keyboardInput mirrors INPUT; the padding covers the larger MOUSEINPUT
// member of the union.
type keyboardInput struct {
	typ uint32
	ki  keybdInput
	_   [8]byte
}

var modifierVK = map[string]uint16{
	"ctrl":  0x11,
	"shift": 0x10,
	"alt":   0x12,
	"cmd":   0x5B,
}

var keyVK = map[string]uint16{
	"enter":     0x0D,
	"tab":       0x09,
	"escape":    0x1B,
	"space":     0x20,
	"backspace": 0x08,
	"delete":    0x2E,
	"insert":    0x2D,
	"left":      0x25,
	"up":        0x26,
	"right":     0x27,
	"down":      0x28,
}

func virtualKey(key string) (uint16, bool) {
	if vk, ok := keyVK[key]; ok {
		return vk, true
	}
	if len(key) == 1 {
		ch := strings.ToUpper(key)[0]
		if ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9') {
			return uint16(ch), true
		}
	}
	var n int
	if _, err := fmt.Sscanf(key, "f%d", &n); err == nil && n >= 1 && n <= 12 {
		return uint16(0x70 + n - 1), true
	}
	return 0, false
}

// NativeSender synthesizes input with the Win32 SendInput call.
type NativeSender struct{}

// NewNativeSender returns the SendInput sender.
func NewNativeSender() *NativeSender {
	return &NativeSender{}
}

// Name returns the sender name used in logs.
func (s *NativeSender) Name() string { return "sendinput" }

// Send presses the modifiers, taps the key and releases in reverse order as
// one SendInput batch.
func (s *NativeSender) Send(ctx context.Context, c Combo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key, ok := virtualKey(c.Key)
	if !ok {
		return fmt.Errorf("unsupported key for SendInput: %s", c.Key)
	}
	vks := make([]uint16, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		vk, ok := modifierVK[m]
		if !ok {
			return fmt.Errorf("unsupported modifier for SendInput: %s", m)
		}
		vks = append(vks, vk)
	}
	vks = append(vks, key)

	inputs := make([]keyboardInput, 0, 2*len(vks))
	for _, vk := range vks {
		inputs = append(inputs, keyboardInput{typ: inputKeyboard, ki: keybdInput{vk: vk}})
	}
	for i := len(vks) - 1; i >= 0; i-- {
		inputs = append(inputs, keyboardInput{typ: inputKeyboard, ki: keybdInput{vk: vks[i], flags: keyeventfKeyUp}})
	}

	ret, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if int(ret) != len(inputs) {
		return fmt.Errorf("SendInput sent %d of %d events for %s: %w", ret, len(inputs), c, err)
	}
	return nil
}
