package hotkey

import (
	"os"
	"runtime"
)

// DisplayServer represents the type of display server in use
type DisplayServer int

const (
	DisplayServerUnknown DisplayServer = iota
	DisplayServerWindows
	DisplayServerX11
	DisplayServerWayland
	DisplayServerMacOS
)

func (ds DisplayServer) String() string {
	switch ds {
	case DisplayServerWindows:
		return "Windows"
	case DisplayServerX11:
		return "X11"
	case DisplayServerWayland:
		return "Wayland"
	case DisplayServerMacOS:
		return "macOS"
	default:
		return "Unknown"
	}
}

// DetectDisplayServer determines which display server is currently in use.
func DetectDisplayServer() DisplayServer {
	return detectDisplayServer(runtime.GOOS, os.Getenv)
}

func detectDisplayServer(goos string, getenv func(string) string) DisplayServer {
	switch goos {
	case "windows":
		return DisplayServerWindows
	case "darwin":
		return DisplayServerMacOS
	}

	// A session with both variables set runs XWayland; grabs only reach X
	// clients there, so Wayland wins.
	if getenv("WAYLAND_DISPLAY") != "" {
		return DisplayServerWayland
	}
	if getenv("DISPLAY") != "" {
		return DisplayServerX11
	}
	return DisplayServerUnknown
}

// Supported reports whether golang.design/x/hotkey can grab keys on ds.
func (ds DisplayServer) Supported() bool {
	switch ds {
	case DisplayServerWindows, DisplayServerX11, DisplayServerMacOS:
		return true
	default:
		return false
	}
}
