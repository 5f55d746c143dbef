package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func outputFileName(semester string) string       { return semester + "_index_output.json" }
func verificationFileName(semester string) string { return semester + "_verification.json" }

// writeManifest writes v as indented JSON to dir/name and returns the path.
func writeManifest(dir, name string, v any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create manifest dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", fmt.Errorf("write manifest %s: %w", path, err)
	}
	return path, nil
}
