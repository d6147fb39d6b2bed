package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetSecureDBPath(t *testing.T) {
	ph := NewSecurePathHandler()

	got, err := ph.GetSecureDBPath("")
	if err != nil {
		t.Fatalf("default path should validate: %v", err)
	}
	homeDir, _ := os.UserHomeDir()
	if want := filepath.Join(homeDir, ".mailcal", "mailcal.db"); got != want {
		t.Errorf("GetSecureDBPath(\"\") = %q, want %q", got, want)
	}

	if _, err := ph.GetSecureDBPath("/etc/passwd"); err == nil {
		t.Error("expected paths outside the allowed roots to be rejected")
	}
	if _, err := ph.GetSecureDBPath("../../../etc/passwd"); err == nil {
		t.Error("expected traversal to be rejected")
	}
}

func TestGetExportPath(t *testing.T) {
	ph := NewPermissivePathHandler()
	target := filepath.Join(t.TempDir(), "nested", "inbox.mbox")

	got, err := ph.GetExportPath(target)
	if err != nil {
		t.Fatal(err)
	}
	if got != target {
		t.Errorf("GetExportPath = %q, want %q", got, target)
	}
	if info, err := os.Stat(filepath.Dir(target)); err != nil || !info.IsDir() {
		t.Errorf("parent directory should have been created: %v", err)
	}

	if _, err := ph.GetExportPath("/tmp/bad\x00.mbox"); err == nil {
		t.Error("expected null byte to be rejected")
	}
}
