package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"papermill/internal/config"
)

// Area manages the upload and converted directories for conversion jobs.
// Stored names are UUID-based so they never derive from client input beyond
// the file extension.
type Area struct {
	uploadDir    string
	convertedDir string
}

// NewArea builds a staging area from configuration, creating the directories.
func NewArea(cfg *config.Config) (*Area, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return &Area{
		uploadDir:    cfg.Paths.UploadDir,
		convertedDir: cfg.Paths.ConvertedDir,
	}, nil
}

// UploadDir returns the directory holding staged uploads.
func (a *Area) UploadDir() string {
	return a.uploadDir
}

// ConvertedDir returns the directory holding conversion artifacts.
func (a *Area) ConvertedDir() string {
	return a.convertedDir
}

// StageUpload streams the upload into the upload directory under a fresh
// UUID name with the given extension (lowercase, no leading dot). The file is
// synced before close so a crash cannot leave a half-written upload behind.
func (a *Area) StageUpload(r io.Reader, ext string) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		return "", errors.New("upload extension required")
	}
	name := uuid.NewString() + "." + ext
	path := filepath.Join(a.uploadDir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create staged upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write staged upload: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("sync staged upload: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staged upload: %w", err)
	}
	return name, nil
}

// ReserveOutputName derives the artifact name for a staged upload by swapping
// its extension for the target format. Sharing the UUID base means the name
// the converter derives from the input already matches the reserved one.
func ReserveOutputName(stagedName, targetFormat string) string {
	base := strings.TrimSuffix(stagedName, filepath.Ext(stagedName))
	return base + "." + strings.ToLower(strings.TrimSpace(targetFormat))
}

// InputPath resolves a staged upload name to its absolute path.
func (a *Area) InputPath(name string) string {
	return filepath.Join(a.uploadDir, name)
}

// OutputPath resolves an artifact name to its absolute path.
func (a *Area) OutputPath(name string) string {
	return filepath.Join(a.convertedDir, name)
}

// Exists reports whether the given path is an existing regular file.
func (a *Area) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// OpenOutput opens an artifact for reading.
func (a *Area) OpenOutput(name string) (*os.File, error) {
	return os.Open(filepath.Join(a.convertedDir, name))
}

// RemoveInput deletes a staged upload once it is no longer needed.
func (a *Area) RemoveInput(name string) error {
	err := os.Remove(filepath.Join(a.uploadDir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove staged upload: %w", err)
	}
	return nil
}
