package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestBackupWritesOwnerOnlyFile(t *testing.T) {
	home := t.TempDir()
	b, err := NewBackuper(home, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	warning, err := b.Backup(context.Background(), "update-node", "wf123", []byte(`{"name":"demo"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warning != "" {
		t.Fatalf("expected no warning, got %q", warning)
	}

	entries, err := os.ReadDir(filepath.Join(home, BackupDir))
	if err != nil {
		t.Fatalf("reading backup dir: %v", err)
	}
	var name string
	for _, e := range entries {
		if e.Name() == ".backup.lock" {
			continue
		}
		name = e.Name()
	}
	if name == "" {
		t.Fatal("expected a backup file")
	}
	if filepath.Ext(name) != ".json" {
		t.Fatalf("expected .json extension, got %q", name)
	}

	info, err := os.Stat(filepath.Join(home, BackupDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected mode 0600, got %s", perm)
	}

	dirInfo, err := os.Stat(filepath.Join(home, BackupDir))
	if err != nil {
		t.Fatal(err)
	}
	if perm := dirInfo.Mode().Perm(); perm != 0o700 {
		t.Fatalf("expected backup dir mode 0700, got %s", perm)
	}

	var decoded map[string]any
	contents, err := os.ReadFile(filepath.Join(home, BackupDir, name))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(contents, &decoded); err != nil {
		t.Fatalf("expected valid JSON backup: %v", err)
	}
	if decoded["name"] != "demo" {
		t.Fatalf("expected backup to preserve workflow content, got %v", decoded)
	}
}

func TestBackupFilenameEncodesOperationAndWorkflowID(t *testing.T) {
	home := t.TempDir()
	b, err := NewBackuper(home, false)
	if err != nil {
		t.Fatal(err)
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	restore := now
	now = func() time.Time { return fixed }
	defer func() { now = restore }()

	if _, err := b.Backup(context.Background(), "delete-workflow", "abc", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}

	wantName := fmt.Sprintf("delete-workflow-abc-%d.json", fixed.UnixNano())
	if _, err := os.Stat(filepath.Join(home, BackupDir, wantName)); err != nil {
		t.Fatalf("expected backup file %q: %v", wantName, err)
	}
}

func TestBackupNonStrictSurvivesUnwritableDir(t *testing.T) {
	home := t.TempDir()
	b, err := NewBackuper(home, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(home, BackupDir)); err != nil {
		t.Fatal(err)
	}

	warning, err := b.Backup(context.Background(), "op", "wf", []byte(`{}`))
	if err != nil {
		t.Fatalf("expected non-strict mode to swallow the write error, got %v", err)
	}
	if warning == "" {
		t.Fatal("expected a warning for the failed write")
	}
}

func TestBackupStrictModeReturnsError(t *testing.T) {
	home := t.TempDir()
	b, err := NewBackuper(home, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(home, BackupDir)); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Backup(context.Background(), "op", "wf", []byte(`{}`)); err == nil {
		t.Fatal("expected strict mode to surface the write error")
	}
}
