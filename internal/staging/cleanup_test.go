package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"papermill/internal/logging"
)

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldUploads(t *testing.T) {
	tmpDir := t.TempDir()

	oldFile := filepath.Join(tmpDir, "old.pdf")
	if err := os.WriteFile(oldFile, []byte("old"), 0o644); err != nil {
		t.Fatalf("create old file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentFile := filepath.Join(tmpDir, "recent.pdf")
	if err := os.WriteFile(recentFile, []byte("recent"), 0o644); err != nil {
		t.Fatalf("create recent file: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 {
		t.Fatalf("expected 1 removed, got %d", len(result.Removed))
	}
	if result.Removed[0] != oldFile {
		t.Errorf("expected %s to be removed, got %s", oldFile, result.Removed[0])
	}
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old upload should have been removed")
	}
	if _, err := os.Stat(recentFile); err != nil {
		t.Error("recent upload should still exist")
	}
}

func TestCleanStaleIgnoresDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldDir := filepath.Join(tmpDir, "olddir")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create dir: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals for directories, got %d", len(result.Removed))
	}
	if _, err := os.Stat(oldDir); err != nil {
		t.Error("directory should not have been removed")
	}
}
