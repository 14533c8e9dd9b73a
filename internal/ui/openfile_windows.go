//go:build windows

package ui

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// OpenFileInDefaultApp opens filePath with the "open" verb via ShellExecuteW.
func OpenFileInDefaultApp(filePath string) error {
	verb, err := windows.UTF16PtrFromString("open")
	if err != nil {
		return err
	}
	file, err := windows.UTF16PtrFromString(filePath)
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", filePath, err)
	}
	if err := windows.ShellExecute(0, verb, file, nil, nil, windows.SW_SHOWNORMAL); err != nil {
		return fmt.Errorf("ShellExecuteW failed for %s: %w", filePath, err)
	}
	return nil
}
