package report

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile persists the report text, creating the directory if needed.
func WriteFile(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
