package json

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Writer writes deployment reports to disk, creating parent directories.
type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// WriteJSON writes data as indented JSON terminated by a newline.
func (w *Writer) WriteJSON(path string, data any) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON for '%s': %w", path, err)
	}

	return w.WriteBytes(path, append(content, '\n'))
}

func (w *Writer) WriteBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}

	return nil
}
