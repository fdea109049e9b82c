package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteArtifact places stub artifact content at the target path, creating
// parent directories as needed.
func WriteArtifact(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// DocxStub returns bytes that look like the start of a DOCX (ZIP) container,
// enough for attachment and size assertions without a real document.
func DocxStub() []byte {
	return append([]byte("PK\x03\x04"), []byte("papermill docx stub")...)
}
