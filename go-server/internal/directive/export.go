// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package directive

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile saves text as LLMs.txt inside dir and returns the file path.
// An empty dir means the current directory.
func WriteFile(dir, text string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(dir, Filename)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", Filename, err)
	}
	return path, nil
}
