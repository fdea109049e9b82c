package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"papermill/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantUploads := filepath.Join(tempHome, ".local", "share", "papermill", "uploads")
	if cfg.Paths.UploadDir != wantUploads {
		t.Fatalf("unexpected upload dir: got %q want %q", cfg.Paths.UploadDir, wantUploads)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5001" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.Converter.Binary != "libreoffice" {
		t.Fatalf("unexpected converter binary: %q", cfg.Converter.Binary)
	}
	if cfg.Converter.TimeoutSeconds != 300 {
		t.Fatalf("unexpected converter timeout: %d", cfg.Converter.TimeoutSeconds)
	}
	if cfg.Dispatcher.Workers != 4 {
		t.Fatalf("unexpected worker count: %d", cfg.Dispatcher.Workers)
	}
	if cfg.Dispatcher.QueueCapacity != 64 {
		t.Fatalf("expected queue capacity workers*16, got %d", cfg.Dispatcher.QueueCapacity)
	}
	if cfg.Server.MaxUploadMiB != 100 {
		t.Fatalf("unexpected upload cap: %d", cfg.Server.MaxUploadMiB)
	}
	if cfg.MaxUploadBytes() != 100<<20 {
		t.Fatalf("unexpected upload cap bytes: %d", cfg.MaxUploadBytes())
	}
}

func TestLoadParsesExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "papermill.toml")
	content := strings.Join([]string{
		"[paths]",
		`upload_dir = "` + filepath.Join(dir, "in") + `"`,
		`converted_dir = "` + filepath.Join(dir, "out") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`api_bind = "127.0.0.1:0"`,
		"",
		"[converter]",
		`binary = "soffice"`,
		"timeout_seconds = 30",
		"",
		"[dispatcher]",
		"workers = 2",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected explicit config to resolve, got %q exists=%v", resolved, exists)
	}
	if cfg.Converter.Binary != "soffice" {
		t.Fatalf("unexpected binary: %q", cfg.Converter.Binary)
	}
	if cfg.Dispatcher.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Dispatcher.Workers)
	}
	if cfg.Dispatcher.QueueCapacity != 32 {
		t.Fatalf("expected derived queue capacity, got %d", cfg.Dispatcher.QueueCapacity)
	}
}

func TestValidateRejectsSharedStagingDirs(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.UploadDir = "/tmp/papermill-same"
	cfg.Paths.ConvertedDir = "/tmp/papermill-same"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when upload and converted dirs match")
	}
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Converter.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero converter timeout")
	}
}

func TestEnsureDirectoriesCreatesStaging(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.ConvertedDir = filepath.Join(base, "converted")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.UploadDir, cfg.Paths.ConvertedDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[converter]") {
		t.Fatal("expected sample to contain converter section")
	}
}
