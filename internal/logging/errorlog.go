package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrorLogDir returns the directory where diagnostic error logs are written,
// creating it if necessary.
func ErrorLogDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	dir := filepath.Join(home, ".prosjekt", ".error_logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating error log directory: %w", err)
	}

	return dir, nil
}

// WriteErrorLog writes the captured output of a failed step to a uniquely
// named file under dir and returns the file path. The label names the step
// that failed, e.g. "poetry-install".
func WriteErrorLog(dir, label, content string) (string, error) {
	name := fmt.Sprintf("%s-error-%d.txt", label, time.Now().Unix())
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing error log %s: %w", path, err)
	}

	return path, nil
}
