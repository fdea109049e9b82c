package staging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"papermill/internal/staging"
	"papermill/internal/testsupport"
)

func newArea(t *testing.T) *staging.Area {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	area, err := staging.NewArea(cfg)
	if err != nil {
		t.Fatalf("NewArea failed: %v", err)
	}
	return area
}

func TestStageUploadWritesUUIDNamedFile(t *testing.T) {
	area := newArea(t)

	name, err := area.StageUpload(strings.NewReader("%PDF-1.4"), "pdf")
	if err != nil {
		t.Fatalf("StageUpload failed: %v", err)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Fatalf("expected .pdf suffix, got %q", name)
	}
	if len(strings.TrimSuffix(name, ".pdf")) != 36 {
		t.Fatalf("expected UUID base name, got %q", name)
	}

	data, err := os.ReadFile(area.InputPath(name))
	if err != nil {
		t.Fatalf("read staged upload: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected staged content: %q", data)
	}
}

func TestStageUploadNormalizesExtension(t *testing.T) {
	area := newArea(t)

	name, err := area.StageUpload(strings.NewReader("doc"), ".DOCX")
	if err != nil {
		t.Fatalf("StageUpload failed: %v", err)
	}
	if !strings.HasSuffix(name, ".docx") {
		t.Fatalf("expected normalized .docx suffix, got %q", name)
	}
}

func TestStageUploadRequiresExtension(t *testing.T) {
	area := newArea(t)
	if _, err := area.StageUpload(strings.NewReader("x"), "  "); err == nil {
		t.Fatal("expected error for empty extension")
	}
}

func TestReserveOutputNameSharesUUIDBase(t *testing.T) {
	name := staging.ReserveOutputName("a1b2c3.pdf", "docx")
	if name != "a1b2c3.docx" {
		t.Fatalf("unexpected output name: %q", name)
	}
}

func TestExistsAndOpenOutput(t *testing.T) {
	area := newArea(t)

	if area.Exists(area.OutputPath("missing.docx")) {
		t.Fatal("Exists must be false for missing artifact")
	}

	path := area.OutputPath("ready.docx")
	if err := os.WriteFile(path, []byte("artifact"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if !area.Exists(path) {
		t.Fatal("Exists must be true for written artifact")
	}

	f, err := area.OpenOutput("ready.docx")
	if err != nil {
		t.Fatalf("OpenOutput failed: %v", err)
	}
	defer f.Close()
}

func TestRemoveInputIgnoresMissing(t *testing.T) {
	area := newArea(t)

	name, err := area.StageUpload(strings.NewReader("x"), "pdf")
	if err != nil {
		t.Fatalf("StageUpload failed: %v", err)
	}
	if err := area.RemoveInput(name); err != nil {
		t.Fatalf("RemoveInput failed: %v", err)
	}
	if _, err := os.Stat(area.InputPath(name)); !os.IsNotExist(err) {
		t.Fatal("expected staged upload removed")
	}
	if err := area.RemoveInput(name); err != nil {
		t.Fatalf("RemoveInput on missing file: %v", err)
	}
}

func TestExistsRejectsDirectories(t *testing.T) {
	area := newArea(t)
	dir := filepath.Join(area.ConvertedDir(), "subdir")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if area.Exists(dir) {
		t.Fatal("Exists must be false for directories")
	}
}
