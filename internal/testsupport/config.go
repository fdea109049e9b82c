package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"papermill/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.UploadDir = filepath.Join(base, "uploads")
	cfgVal.Paths.ConvertedDir = filepath.Join(base, "converted")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithConverterTimeout overrides the conversion timeout on the test config.
func WithConverterTimeout(seconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Converter.TimeoutSeconds = seconds
	}
}

// WithWorkers overrides the dispatcher worker count on the test config.
func WithWorkers(workers, queueCapacity int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dispatcher.Workers = workers
		b.cfg.Dispatcher.QueueCapacity = queueCapacity
	}
}

// WithStubbedConverter writes a stub executable that mimics LibreOffice's
// output naming and prepends its directory to PATH. The stub writes
// <base>.<format> into the --outdir argument.
func WithStubbedConverter(name string) ConfigOption {
	return func(b *configBuilder) {
		if name == "" {
			name = "libreoffice"
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte(`#!/bin/sh
# args: --headless --convert-to <fmt> --outdir <dir> <input>
fmt="$3"
outdir="$5"
input="$6"
base=$(basename "$input")
base="${base%.*}"
printf converted > "$outdir/$base.$fmt"
`)
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub %s: %v", name, err)
		}
		b.cfg.Converter.Binary = target

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.UploadDir)
}
