package utils

import (
	"fmt"
	"os"
)

// CreateDir creates a directory and any missing parents.
func CreateDir(path string) error {
	if path == "" {
		return fmt.Errorf("directory path is empty")
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", path, err)
	}
	return nil
}
