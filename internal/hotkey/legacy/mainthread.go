package legacy

import "golang.design/x/hotkey/mainthread"

// RunOnMainThread runs fn with the main OS thread available to the hotkey
// event loop, which macOS requires. Elsewhere fn simply runs.
func RunOnMainThread(fn func()) {
	mainthread.Init(fn)
}
