package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRun(t *testing.T) {
	// Non-existent path
	if exitCode := run([]string{"no-such-manifest.md"}, false, false, true); exitCode != 1 {
		t.Errorf("Expected exit code 1 for a missing file, got %d", exitCode)
	}

	tmpDir := t.TempDir()

	valid := "### Core (1 tool)\n- [read](./read.py) - Read a file\n"
	drifted := "### Core (5 tools)\n- [read](./read.py) - Read a file\n"
	malformed := "- [orphan](./orphan.py) - Tool before any category\n"

	validPath := filepath.Join(tmpDir, "valid.md")
	if err := os.WriteFile(validPath, []byte(valid), 0o644); err != nil {
		t.Fatalf("Failed to write valid manifest: %v", err)
	}
	driftedPath := filepath.Join(tmpDir, "drifted.md")
	if err := os.WriteFile(driftedPath, []byte(drifted), 0o644); err != nil {
		t.Fatalf("Failed to write drifted manifest: %v", err)
	}
	malformedPath := filepath.Join(tmpDir, "malformed.md")
	if err := os.WriteFile(malformedPath, []byte(malformed), 0o644); err != nil {
		t.Fatalf("Failed to write malformed manifest: %v", err)
	}

	if exitCode := run([]string{validPath}, false, false, true); exitCode != 0 {
		t.Errorf("Expected exit code 0 for a valid manifest, got %d", exitCode)
	}
	if exitCode := run([]string{malformedPath}, false, false, true); exitCode != 1 {
		t.Errorf("Expected exit code 1 for a malformed manifest, got %d", exitCode)
	}

	// Warnings pass by default, fail under -strict
	if exitCode := run([]string{driftedPath}, false, false, true); exitCode != 0 {
		t.Errorf("Expected exit code 0 for warnings without -strict, got %d", exitCode)
	}
	if exitCode := run([]string{driftedPath}, true, false, true); exitCode != 1 {
		t.Errorf("Expected exit code 1 for warnings with -strict, got %d", exitCode)
	}

	// JSON mode still reports the aggregate exit code
	if exitCode := run([]string{validPath, malformedPath}, false, true, true); exitCode != 1 {
		t.Errorf("Expected exit code 1 when any manifest fails, got %d", exitCode)
	}
}
