package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"papermill/internal/logging"
)

// CleanStaleResult contains the outcome of a stale upload cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staged uploads older than maxAge. Inputs of finished
// jobs are normally removed by the executor; this reclaims space from uploads
// whose jobs never ran to completion.
func CleanStale(ctx context.Context, uploadDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	uploadDir = strings.TrimSpace(uploadDir)
	if uploadDir == "" {
		return result
	}

	entries, err := os.ReadDir(uploadDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: uploadDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filePath := filepath.Join(uploadDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: filePath, Error: err})
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filePath); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: filePath, Error: err})
				if logger != nil {
					logger.Warn("failed to remove stale upload",
						logging.String("path", filePath),
						logging.Error(err),
					)
				}
			} else {
				result.Removed = append(result.Removed, filePath)
				if logger != nil {
					logger.Info("removed stale upload",
						logging.String("path", filePath),
						logging.Duration("age", time.Since(info.ModTime())),
					)
				}
			}
		}
	}

	return result
}
