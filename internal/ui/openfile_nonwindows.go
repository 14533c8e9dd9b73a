//go:build !windows

package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenFileInDefaultApp hands filePath to the desktop's default handler.
func OpenFileInDefaultApp(filePath string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}

	cmd := exec.Command(name, filePath)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command (%s): %w", cmd.String(), err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
