package json

import (
	"encoding/json"
	"fmt"
	"os"
)

// Reader reads JSON documents from disk.
type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadJSON reads path and unmarshals it into target.
func (r *Reader) ReadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read '%s': %w", path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	return nil
}
