package soffice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"papermill/internal/services"
)

// Converter defines the behaviour required by the conversion executor.
type Converter interface {
	Convert(ctx context.Context, inputPath, targetFormat, outDir string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (stdout, stderr string, err error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps LibreOffice headless conversions.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a LibreOffice client.
func New(binary string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("libreoffice binary required")
	}
	client := &Client{
		binary:  binary,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		exec:    commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Timeout reports the configured conversion deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Convert runs a headless conversion and returns the produced file path.
// LibreOffice names the output after the input's base name, so callers that
// need a different artifact name must rename the result themselves.
func (c *Client) Convert(ctx context.Context, inputPath, targetFormat, outDir string) (string, error) {
	if inputPath == "" {
		return "", services.Wrap(services.ErrValidation, "soffice", "convert", "input path required", nil)
	}
	targetFormat = strings.TrimSpace(strings.ToLower(targetFormat))
	if targetFormat == "" {
		return "", services.Wrap(services.ErrValidation, "soffice", "convert", "target format required", nil)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"--headless", "--convert-to", targetFormat, "--outdir", outDir, inputPath}
	_, stderr, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		if runCtx.Err() != nil && ctx.Err() == nil {
			return "", services.Wrap(services.ErrTimeout, "soffice", "convert",
				fmt.Sprintf("conversion exceeded %s", c.timeout), runCtx.Err())
		}
		detail := strings.TrimSpace(stderr)
		if detail == "" {
			detail = err.Error()
		}
		return "", services.Wrap(services.ErrExternalTool, "", "", detail, nil)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	produced := filepath.Join(outDir, base+"."+targetFormat)
	if _, statErr := os.Stat(produced); statErr != nil {
		return "", services.Wrap(services.ErrExternalTool, "", "", "conversion produced no output file", nil)
	}
	return produced, nil
}

type commandExecutor struct{}

// Run starts the binary in its own process group so a deadline kills the
// whole LibreOffice tree, not just the launcher process.
func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
