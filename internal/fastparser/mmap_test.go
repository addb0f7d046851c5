package fastparser

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMmapFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.psv")

	content := []byte("a|b|c\r\nd|e|f\r\ng|h|i")
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	data, cleanup, err := MmapFile(testFile)
	if err != nil {
		t.Fatalf("MmapFile() error = %v", err)
	}

	if string(data) != string(content) {
		t.Errorf("MmapFile() data = %q, want %q", string(data), string(content))
	}

	records, err := ParseRecords(data, Options{Delimiter: "|"})
	cleanup()
	if err != nil {
		t.Fatalf("ParseRecords() error = %v", err)
	}

	// Records must stay valid after the mapping is gone.
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if got := strings.Join(records[2].Fields, ","); got != "g,h,i" {
		t.Errorf("last record = %q, want %q", got, "g,h,i")
	}
}

func TestMmapFile_EmptyFile(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(testFile, []byte{}, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	data, cleanup, err := MmapFile(testFile)
	if err != nil {
		t.Fatalf("MmapFile() error = %v", err)
	}
	defer cleanup()

	if len(data) != 0 {
		t.Errorf("MmapFile() returned %d bytes for empty file, want 0", len(data))
	}
}

func TestMmapFile_NonexistentFile(t *testing.T) {
	_, _, err := MmapFile(filepath.Join(t.TempDir(), "missing.csv"))
	if err == nil {
		t.Error("MmapFile() should return error for nonexistent file")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("MmapFile() error = %v, want a not-exist error", err)
	}
}
