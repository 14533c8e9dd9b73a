//go:build windows

package window

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procIsIconic            = user32.NewProc("IsIconic")
)

const maxTitleLen = 512

// EnumWindows callbacks are a limited resource, so a single callback is
// created once and enumerations are serialized through enumMu.
var (
	enumMu    sync.Mutex
	enumVisit func(hwnd windows.HWND)

	enumCallback = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumVisit(hwnd)
		return 1 // continue enumeration
	})
)

// NativeFinder enumerates top-level windows with the Win32 API.
type NativeFinder struct{}

// NewNativeFinder returns the Win32 finder.
func NewNativeFinder() *NativeFinder {
	return &NativeFinder{}
}

// Name returns the name of this backend.
func (f *NativeFinder) Name() string {
	return "native"
}

// Windows lists visible, titled top-level windows matching pattern in
// Z-order.
func (f *NativeFinder) Windows(ctx context.Context, pattern *regexp.Regexp) ([]Window, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Window

	enumMu.Lock()
	enumVisit = func(hwnd windows.HWND) {
		if !windows.IsWindowVisible(hwnd) {
			return
		}
		title := windowText(hwnd)
		if title == "" {
			return
		}
		if pattern != nil && !pattern.MatchString(title) {
			return
		}
		out = append(out, &nativeWindow{hwnd: hwnd, title: title})
	}
	err := windows.EnumWindows(enumCallback, nil)
	enumVisit = nil
	enumMu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("EnumWindows: %w", err)
	}
	return out, nil
}

func windowText(hwnd windows.HWND) string {
	var buf [maxTitleLen]uint16
	n, err := windows.GetWindowText(hwnd, &buf[0], int32(len(buf)))
	if err != nil || n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}

type nativeWindow struct {
	hwnd  windows.HWND
	title string
}

func (w *nativeWindow) Title() string   { return w.title }
func (w *nativeWindow) Backend() string { return "native" }

// Focus restores a minimized window and asks for foreground activation.
func (w *nativeWindow) Focus(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !windows.IsWindowVisible(w.hwnd) {
		return fmt.Errorf("window 0x%X is no longer visible", uintptr(w.hwnd))
	}

	if iconic, _, _ := procIsIconic.Call(uintptr(w.hwnd)); iconic != 0 {
		windows.ShowWindow(w.hwnd, windows.SW_RESTORE)
	}

	r1, _, err := procSetForegroundWindow.Call(uintptr(w.hwnd))
	if r1 == 0 {
		if err != windows.ERROR_SUCCESS {
			return fmt.Errorf("SetForegroundWindow(0x%X): %w", uintptr(w.hwnd), err)
		}
		return fmt.Errorf("SetForegroundWindow(0x%X) refused", uintptr(w.hwnd))
	}
	return nil
}
