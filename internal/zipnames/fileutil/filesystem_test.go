package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	fs := NewOSFileSystem()
	path := filepath.Join(t.TempDir(), "manifest.bin")

	if fs.FileExists(path) {
		t.Fatal("FileExists() = true before write")
	}
	if err := fs.WriteFile(path, []byte("a.txt\x00"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if !fs.FileExists(path) {
		t.Fatal("FileExists() = false after write")
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a.txt\x00" {
		t.Errorf("content = %q, want %q", got, "a.txt\x00")
	}

	if err := fs.WriteFile(filepath.Join(t.TempDir(), "none", "x"), nil, 0644); err == nil {
		t.Error("WriteFile() into a missing directory should fail")
	}
}
