package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Reader returns the current clipboard text.
type Reader interface {
	ReadText() (string, error)
}

// SystemReader reads the OS clipboard through github.com/atotto/clipboard.
type SystemReader struct{}

// NewSystemReader creates a reader for the OS clipboard.
func NewSystemReader() *SystemReader {
	return &SystemReader{}
}

// ReadText returns the clipboard text. An empty clipboard yields "".
func (r *SystemReader) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}
